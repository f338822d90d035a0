// model/neo4j/relationships.go
package obd_neo4j

// Relationship Types
const (
	// RelMemberOf links a user to a business; carries role, status and timestamps
	RelMemberOf = "MEMBER_OF"

	// RelOwns links the owning user to a business
	RelOwns = "OWNS"
)

// model/neo4j/nodes.go
package obd_neo4j

// Node Labels
const (
	// LabelBusiness represents a tenant business
	LabelBusiness = "Business"

	// LabelUser represents a principal
	LabelUser = "User"
)

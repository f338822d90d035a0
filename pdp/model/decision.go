package model

// Decision reasons. The set is closed.
const (
	ReasonAllowed          = "allowed"
	ReasonUnknownRule      = "unknown_rule"
	ReasonRoleNotPermitted = "role_not_permitted"
	ReasonUnknownRole      = "unknown_role"
)

type AccessDecision struct {
	Allowed bool          `json:"allowed"`
	Reason  string        `json:"reason"`
	Request AccessRequest `json:"request"`
}

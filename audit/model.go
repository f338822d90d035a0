// audit/model.go
package audit

import (
	"time"

	"github.com/google/uuid"

	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
)

// AuditLog is one stored access decision.
type AuditLog struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	BusinessID string    `json:"business_id,omitempty"`
	Role       string    `json:"role,omitempty"`
	App        string    `json:"app"`
	Action     string    `json:"action"`
	Allowed    bool      `json:"allowed"`
	Reason     string    `json:"reason,omitempty"`
	Code       string    `json:"code,omitempty"`
}

func FromDecision(e pdp_model.DecisionEvent) AuditLog {
	return AuditLog{
		ID:         uuid.NewString(),
		Timestamp:  e.At,
		RequestID:  e.RequestID,
		UserID:     e.UserID,
		BusinessID: e.BusinessID,
		Role:       string(e.Role),
		App:        string(e.App),
		Action:     string(e.Action),
		Allowed:    e.Allowed,
		Reason:     e.Reason,
		Code:       e.Code,
	}
}

// Query selects decisions of one business within [From, To].
type Query struct {
	BusinessID string
	From       time.Time
	To         time.Time
	UserID     string
	App        string
	Limit      int
	Offset     int
}

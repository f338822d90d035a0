package model

import (
	"time"

	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// EventAccessDecided is published on the event bus after every gate check.
const EventAccessDecided = "access.decided"

// ReasonPremiumRequired extends the matrix reasons when the plan gate denies.
const ReasonPremiumRequired = "premium_required"

// DecisionEvent describes one gate outcome. BusinessID and Role are empty
// when the tenant could not be resolved; Code then carries the resolver failure.
type DecisionEvent struct {
	RequestID  string          `json:"request_id,omitempty"`
	UserID     string          `json:"user_id,omitempty"`
	BusinessID string          `json:"business_id,omitempty"`
	Role       model.Role      `json:"role,omitempty"`
	App        model.AppKey    `json:"app"`
	Action     model.ActionKey `json:"action"`
	Allowed    bool            `json:"allowed"`
	Reason     string          `json:"reason,omitempty"`
	Code       string          `json:"code,omitempty"`
	At         time.Time       `json:"at"`
}

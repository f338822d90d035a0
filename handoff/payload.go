// handoff/payload.go
package handoff

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// MaxDataBytes bounds the tool-specific block of a payload.
const MaxDataBytes = 64 << 10

// Payload is a suggestion one tool leaves for another.
type Payload struct {
	ID         string          `json:"id"`
	SourceApp  model.AppKey    `json:"sourceApp"`
	BusinessID string          `json:"businessId"`
	CreatedAt  time.Time       `json:"createdAt"`
	ExpiresAt  time.Time       `json:"expiresAt"`
	Data       json.RawMessage `json:"data"`
}

// Draft is what a producer hands to Create; the store stamps the rest.
type Draft struct {
	SourceApp  model.AppKey
	BusinessID string
	Data       json.RawMessage
}

// Reason explains why a payload must not be applied.
type Reason string

const (
	ReasonMissingBusinessContext Reason = "missing_business_context"
	ReasonTenantMismatch         Reason = "tenant_mismatch"
	ReasonExpired                Reason = "expired"
	ReasonInvalidSource          Reason = "invalid_source"
	ReasonInvalidPayload         Reason = "invalid_payload"
)

// ValidateOptions describe the consumer's current state.
type ValidateOptions struct {
	BusinessID string
	// Now defaults to the wall clock when zero.
	Now time.Time
	// ExpectedSourceApp, when set, must equal the payload's SourceApp.
	ExpectedSourceApp model.AppKey
}

type ValidationResult struct {
	OK     bool   `json:"ok"`
	Reason Reason `json:"reason,omitempty"`
}

func valid() ValidationResult           { return ValidationResult{OK: true} }
func invalid(r Reason) ValidationResult { return ValidationResult{Reason: r} }

// expiredAt treats the expiry instant itself as expired.
func (p *Payload) expiredAt(now time.Time) bool { return !now.Before(p.ExpiresAt) }

// Validate checks, in order: payload shape, consumer business, expiry, source
// app, tenant match. The first failure is reported.
func Validate(p *Payload, opts ValidateOptions) ValidationResult {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	switch {
	case !wellFormed(p):
		return invalid(ReasonInvalidPayload)
	case opts.BusinessID == "":
		return invalid(ReasonMissingBusinessContext)
	case p.expiredAt(now):
		return invalid(ReasonExpired)
	case opts.ExpectedSourceApp != "" && p.SourceApp != opts.ExpectedSourceApp:
		return invalid(ReasonInvalidSource)
	case p.BusinessID != opts.BusinessID:
		return invalid(ReasonTenantMismatch)
	default:
		return valid()
	}
}

func wellFormed(p *Payload) bool {
	if p == nil || p.ID == "" || p.BusinessID == "" || !p.SourceApp.Valid() {
		return false
	}
	if p.CreatedAt.IsZero() || !p.ExpiresAt.After(p.CreatedAt) {
		return false
	}
	return structured(p.Data) && json.Valid(p.Data)
}

// structured reports whether data is a JSON object or array.
func structured(data json.RawMessage) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

var notices = map[Reason]string{
	ReasonMissingBusinessContext: "Select a business to use this suggestion.",
	ReasonTenantMismatch:         "This suggestion is for a different business.",
	ReasonExpired:                "This suggestion has expired.",
	ReasonInvalidSource:          "This suggestion came from a different tool.",
	ReasonInvalidPayload:         "This suggestion could not be used.",
}

// Notice is the user-facing copy for a reason. It never contains tenant data.
func Notice(r Reason) string {
	return notices[r]
}

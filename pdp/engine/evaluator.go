package engine

import (
	"github.com/acemetillidie0001/obd-premium-apps/model"
	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
)

// Evaluate explains a matrix lookup. Allowed always equals Can for the same inputs.
func Evaluate(request pdp_model.AccessRequest) pdp_model.AccessDecision {
	decision := pdp_model.AccessDecision{Request: request}

	switch {
	case !request.Role.Valid():
		decision.Reason = pdp_model.ReasonUnknownRole
	case !HasRule(request.App, request.Action):
		decision.Reason = pdp_model.ReasonUnknownRule
	case !Can(request.Role, request.App, request.Action):
		decision.Reason = pdp_model.ReasonRoleNotPermitted
	default:
		decision.Allowed = true
		decision.Reason = pdp_model.ReasonAllowed
	}
	return decision
}

// EvaluateFor is shorthand for Evaluate with a bare triple.
func EvaluateFor(role model.Role, app model.AppKey, action model.ActionKey) pdp_model.AccessDecision {
	return Evaluate(pdp_model.AccessRequest{Role: role, App: app, Action: action})
}

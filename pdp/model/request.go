package model

import (
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// AccessRequest asks whether role may perform Action on App.
type AccessRequest struct {
	Role   model.Role      `json:"role"`
	App    model.AppKey    `json:"app"`
	Action model.ActionKey `json:"action"`
}

// Requirement is an (app, action) pair enforced by some route.
type Requirement struct {
	App    model.AppKey    `json:"app"`
	Action model.ActionKey `json:"action"`
}

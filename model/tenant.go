package model

import "time"

// BusinessChoice is one entry of the business switcher.
type BusinessChoice struct {
	BusinessID string     `json:"businessId"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	Plan       Plan       `json:"plan"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	Active     bool       `json:"active"`
}

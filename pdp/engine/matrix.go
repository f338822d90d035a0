package engine

import (
	"sort"

	"github.com/acemetillidie0001/obd-premium-apps/model"
	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
)

type roleSet map[model.Role]struct{}

func roles(rs ...model.Role) roleSet {
	set := make(roleSet, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

var (
	allRoles   = roles(model.RoleOwner, model.RoleAdmin, model.RoleStaff)
	ownerAdmin = roles(model.RoleOwner, model.RoleAdmin)
	ownerOnly  = roles(model.RoleOwner)
)

// matrix is never written after init. A missing (app, action) entry denies.
var matrix = map[model.AppKey]map[model.ActionKey]roleSet{
	model.AppCRM: {
		model.ActionView:           allRoles,
		model.ActionEditDraft:      allRoles,
		model.ActionExport:         ownerAdmin,
		model.ActionDelete:         ownerAdmin,
		model.ActionManageSettings: ownerAdmin,
	},
	model.AppScheduler: {
		model.ActionView:           allRoles,
		model.ActionEditDraft:      allRoles,
		model.ActionPublish:        ownerAdmin,
		model.ActionManageSettings: ownerAdmin,
	},
	model.AppSocialAutoPoster: {
		model.ActionView:           allRoles,
		model.ActionEditDraft:      allRoles,
		model.ActionPublish:        ownerAdmin,
		model.ActionManageSettings: ownerAdmin,
	},
	model.AppReviewResponder: {
		model.ActionView:           allRoles,
		model.ActionEditDraft:      allRoles,
		model.ActionSendOnline:     ownerAdmin,
		model.ActionManageSettings: ownerAdmin,
	},
	model.AppReputationDashboard: {
		model.ActionView:   allRoles,
		model.ActionExport: ownerAdmin,
	},
	model.AppAIHelpDesk: {
		model.ActionView:           allRoles,
		model.ActionEditDraft:      allRoles,
		model.ActionPublish:        ownerAdmin,
		model.ActionManageSettings: ownerAdmin,
	},
	model.AppContentWriter: {
		model.ActionView:      allRoles,
		model.ActionEditDraft: allRoles,
		model.ActionExport:    allRoles,
		model.ActionPublish:   ownerAdmin,
	},
	model.AppImageStudio: {
		model.ActionView:      allRoles,
		model.ActionEditDraft: allRoles,
		model.ActionDelete:    ownerAdmin,
	},
	model.AppLocalSEO: {
		model.ActionView:           allRoles,
		model.ActionEditDraft:      ownerAdmin,
		model.ActionManageSettings: ownerAdmin,
	},
	model.AppTeamsUsers: {
		model.ActionView:           ownerAdmin,
		model.ActionManageTeam:     ownerAdmin,
		model.ActionViewAudit:      ownerAdmin,
		model.ActionManageSettings: ownerOnly,
	},
}

// routeRequirements lists every (app, action) pair the route layer gates.
var routeRequirements = []pdp_model.Requirement{
	{App: model.AppCRM, Action: model.ActionView},
	{App: model.AppCRM, Action: model.ActionEditDraft},
	{App: model.AppCRM, Action: model.ActionExport},
	{App: model.AppCRM, Action: model.ActionDelete},
	{App: model.AppCRM, Action: model.ActionManageSettings},
	{App: model.AppScheduler, Action: model.ActionView},
	{App: model.AppScheduler, Action: model.ActionEditDraft},
	{App: model.AppScheduler, Action: model.ActionPublish},
	{App: model.AppScheduler, Action: model.ActionManageSettings},
	{App: model.AppSocialAutoPoster, Action: model.ActionView},
	{App: model.AppSocialAutoPoster, Action: model.ActionEditDraft},
	{App: model.AppSocialAutoPoster, Action: model.ActionPublish},
	{App: model.AppSocialAutoPoster, Action: model.ActionManageSettings},
	{App: model.AppReviewResponder, Action: model.ActionView},
	{App: model.AppReviewResponder, Action: model.ActionEditDraft},
	{App: model.AppReviewResponder, Action: model.ActionSendOnline},
	{App: model.AppReviewResponder, Action: model.ActionManageSettings},
	{App: model.AppReputationDashboard, Action: model.ActionView},
	{App: model.AppReputationDashboard, Action: model.ActionExport},
	{App: model.AppAIHelpDesk, Action: model.ActionView},
	{App: model.AppAIHelpDesk, Action: model.ActionEditDraft},
	{App: model.AppAIHelpDesk, Action: model.ActionPublish},
	{App: model.AppAIHelpDesk, Action: model.ActionManageSettings},
	{App: model.AppContentWriter, Action: model.ActionView},
	{App: model.AppContentWriter, Action: model.ActionEditDraft},
	{App: model.AppContentWriter, Action: model.ActionExport},
	{App: model.AppContentWriter, Action: model.ActionPublish},
	{App: model.AppImageStudio, Action: model.ActionView},
	{App: model.AppImageStudio, Action: model.ActionEditDraft},
	{App: model.AppImageStudio, Action: model.ActionDelete},
	{App: model.AppLocalSEO, Action: model.ActionView},
	{App: model.AppLocalSEO, Action: model.ActionEditDraft},
	{App: model.AppLocalSEO, Action: model.ActionManageSettings},
	{App: model.AppTeamsUsers, Action: model.ActionView},
	{App: model.AppTeamsUsers, Action: model.ActionManageTeam},
	{App: model.AppTeamsUsers, Action: model.ActionViewAudit},
	{App: model.AppTeamsUsers, Action: model.ActionManageSettings},
}

// Can reports whether role may perform action on app. It is pure and total.
func Can(role model.Role, app model.AppKey, action model.ActionKey) bool {
	actions, ok := matrix[app]
	if !ok {
		return false
	}
	allowed, ok := actions[action]
	if !ok {
		return false
	}
	_, ok = allowed[role]
	return ok
}

// HasRule reports whether an explicit entry exists for (app, action).
func HasRule(app model.AppKey, action model.ActionKey) bool {
	_, ok := matrix[app][action]
	return ok
}

// Rule is one explicit matrix entry.
type Rule struct {
	App    model.AppKey    `json:"app"`
	Action model.ActionKey `json:"action"`
	Roles  []model.Role    `json:"roles"`
}

// Rules returns every explicit entry ordered by app then action. The returned
// slice is a copy.
func Rules() []Rule {
	rules := make([]Rule, 0, len(routeRequirements))
	for app, actions := range matrix {
		for action, set := range actions {
			rule := Rule{App: app, Action: action}
			for _, r := range model.Roles {
				if _, ok := set[r]; ok {
					rule.Roles = append(rule.Roles, r)
				}
			}
			rules = append(rules, rule)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].App != rules[j].App {
			return rules[i].App < rules[j].App
		}
		return rules[i].Action < rules[j].Action
	})
	return rules
}

// AllowedFor returns the (app, action) pairs role may perform.
func AllowedFor(role model.Role) []pdp_model.Requirement {
	var out []pdp_model.Requirement
	for _, rule := range Rules() {
		if Can(role, rule.App, rule.Action) {
			out = append(out, pdp_model.Requirement{App: rule.App, Action: rule.Action})
		}
	}
	return out
}

// RouteRequirements returns a copy of the gated (app, action) catalog.
func RouteRequirements() []pdp_model.Requirement {
	out := make([]pdp_model.Requirement, len(routeRequirements))
	copy(out, routeRequirements)
	return out
}

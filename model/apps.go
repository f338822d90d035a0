package model

// Apps in the suite.
const (
	AppCRM                 AppKey = "OBD_CRM"
	AppScheduler           AppKey = "OBD_SCHEDULER"
	AppSocialAutoPoster    AppKey = "OBD_SOCIAL_AUTO_POSTER"
	AppReviewResponder     AppKey = "OBD_REVIEW_RESPONDER"
	AppReputationDashboard AppKey = "OBD_REPUTATION_DASHBOARD"
	AppAIHelpDesk          AppKey = "OBD_AI_HELP_DESK"
	AppContentWriter       AppKey = "OBD_CONTENT_WRITER"
	AppImageStudio         AppKey = "OBD_IMAGE_STUDIO"
	AppLocalSEO            AppKey = "OBD_LOCAL_SEO"
	AppTeamsUsers          AppKey = "OBD_TEAMS_USERS"
)

// Actions within an app.
const (
	ActionView           ActionKey = "VIEW"
	ActionEditDraft      ActionKey = "EDIT_DRAFT"
	ActionPublish        ActionKey = "PUBLISH"
	ActionSendOnline     ActionKey = "SEND_ONLINE"
	ActionExport         ActionKey = "EXPORT"
	ActionDelete         ActionKey = "DELETE"
	ActionManageSettings ActionKey = "MANAGE_SETTINGS"
	ActionManageTeam     ActionKey = "MANAGE_TEAM"
	ActionViewAudit      ActionKey = "VIEW_AUDIT"
)

var Apps = []AppKey{
	AppCRM, AppScheduler, AppSocialAutoPoster, AppReviewResponder, AppReputationDashboard,
	AppAIHelpDesk, AppContentWriter, AppImageStudio, AppLocalSEO, AppTeamsUsers,
}

var Actions = []ActionKey{
	ActionView, ActionEditDraft, ActionPublish, ActionSendOnline, ActionExport,
	ActionDelete, ActionManageSettings, ActionManageTeam, ActionViewAudit,
}

func (a AppKey) Valid() bool {
	for _, app := range Apps {
		if app == a {
			return true
		}
	}
	return false
}

func (a ActionKey) Valid() bool {
	for _, action := range Actions {
		if action == a {
			return true
		}
	}
	return false
}

package models

// ViewState is a top-level portal screen.
type ViewState string

const (
	ViewGuestSearch   ViewState = "guest_search"
	ViewGuestRegister ViewState = "guest_register"
	ViewDashboard     ViewState = "dashboard"
)

// NavAnchor is a named in-page navigation target.
type NavAnchor string

const (
	AnchorHome        NavAnchor = "home"
	AnchorCourses     NavAnchor = "courses"
	AnchorInstructors NavAnchor = "instructors"
	AnchorRegister    NavAnchor = "register"
)

// ViewIntent is the ephemeral UI-selection state carried between requests.
// It is never persisted; the session's validity always wins over Screen when
// the dashboard is resolvable.
type ViewIntent struct {
	Screen               ViewState `json:"screen"`
	PendingEnrollBatchID FlexID    `json:"pending_enroll_batch_id,omitempty"`
	AuthPromptOpen       bool      `json:"auth_prompt_open,omitempty"`
	ScrollTarget         NavAnchor `json:"scroll_target,omitempty"`
	Notice               string    `json:"notice,omitempty"`
}

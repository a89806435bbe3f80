package service

import (
	"github.com/myanedu/portal-api/internal/models"
)

// Notices surfaced through the view intent after a transition.
const (
	NoticeRegistrationComplete = "Registration successful. Welcome to the portal."
	NoticeRenewalStarted       = "Renew your enrollment to keep classroom access."
)

// ViewService computes the screen a browser should render. Screen choice is
// a pure function of the session plus the client's ephemeral intent, so a
// stale or hand-edited intent can never reveal the dashboard to a guest.
type ViewService struct{}

func NewViewService() *ViewService {
	return &ViewService{}
}

// Resolve reconciles a client-held intent with the current session. An
// authenticated session always lands on the dashboard; a guest session never
// does, whatever the intent claims.
func (s *ViewService) Resolve(sess models.Session, intent models.ViewIntent) models.ViewIntent {
	if sess.Authenticated() {
		intent.Screen = models.ViewDashboard
		intent.AuthPromptOpen = false
		return intent
	}
	if intent.Screen != models.ViewGuestRegister {
		intent.Screen = models.ViewGuestSearch
	}
	return intent
}

// RequestRegister moves a guest to the registration form.
func (s *ViewService) RequestRegister(sess models.Session, intent models.ViewIntent) models.ViewIntent {
	intent.Screen = models.ViewGuestRegister
	intent.AuthPromptOpen = false
	return s.Resolve(sess, intent)
}

// CancelRegister abandons the registration form.
func (s *ViewService) CancelRegister(sess models.Session, intent models.ViewIntent) models.ViewIntent {
	intent.Screen = models.ViewGuestSearch
	return s.Resolve(sess, intent)
}

// RegisterSuccess drops the registration form with a confirmation notice.
// The new account is already bound to the session, so Resolve lifts the
// view to the dashboard as soon as the refreshed snapshot is valid.
func (s *ViewService) RegisterSuccess(sess models.Session, intent models.ViewIntent) models.ViewIntent {
	intent.Screen = models.ViewGuestSearch
	intent.Notice = NoticeRegistrationComplete
	return s.Resolve(sess, intent)
}

// SelectCourse records which batch the visitor wants to enroll in and opens
// the account prompt. The pending batch survives the login flow so payment
// can preselect it.
func (s *ViewService) SelectCourse(sess models.Session, intent models.ViewIntent, batchID models.FlexID) models.ViewIntent {
	intent.PendingEnrollBatchID = batchID
	intent.AuthPromptOpen = !sess.Authenticated()
	return s.Resolve(sess, intent)
}

// ChooseExistingAccount closes the prompt and sends the visitor to the phone
// search, keeping the pending enrollment.
func (s *ViewService) ChooseExistingAccount(sess models.Session, intent models.ViewIntent) models.ViewIntent {
	intent.AuthPromptOpen = false
	intent.Screen = models.ViewGuestSearch
	return s.Resolve(sess, intent)
}

// ChooseNewAccount closes the prompt and opens registration, keeping the
// pending enrollment.
func (s *ViewService) ChooseNewAccount(sess models.Session, intent models.ViewIntent) models.ViewIntent {
	intent.AuthPromptOpen = false
	intent.Screen = models.ViewGuestRegister
	return s.Resolve(sess, intent)
}

// Navigate records an in-page scroll target. Every anchor is reachable from
// every screen.
func (s *ViewService) Navigate(sess models.Session, intent models.ViewIntent, anchor models.NavAnchor) models.ViewIntent {
	intent.ScrollTarget = anchor
	return s.Resolve(sess, intent)
}

// BeginRenewal preselects the lapsed enrollment's batch for payment.
func (s *ViewService) BeginRenewal(sess models.Session, intent models.ViewIntent, batchID models.FlexID) models.ViewIntent {
	intent.PendingEnrollBatchID = batchID
	intent.Notice = NoticeRenewalStarted
	return s.Resolve(sess, intent)
}

// ClearPendingEnrollment drops the remembered batch once payment is
// submitted or abandoned.
func (s *ViewService) ClearPendingEnrollment(sess models.Session, intent models.ViewIntent) models.ViewIntent {
	intent.PendingEnrollBatchID = ""
	return s.Resolve(sess, intent)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/myanedu/portal-api/internal/models"
)

func guestSession() models.Session {
	return models.Session{}
}

func authedSession() models.Session {
	return models.Session{Phone: "0912345678", StudentSnapshot: testStudent()}
}

func TestResolveAuthenticatedAlwaysDashboard(t *testing.T) {
	svc := NewViewService()

	for _, claimed := range []models.ViewState{models.ViewGuestSearch, models.ViewGuestRegister, models.ViewDashboard, "bogus"} {
		resolved := svc.Resolve(authedSession(), models.ViewIntent{Screen: claimed, AuthPromptOpen: true})
		assert.Equal(t, models.ViewDashboard, resolved.Screen)
		assert.False(t, resolved.AuthPromptOpen)
	}
}

func TestResolveGuestNeverDashboard(t *testing.T) {
	svc := NewViewService()

	resolved := svc.Resolve(guestSession(), models.ViewIntent{Screen: models.ViewDashboard})
	assert.Equal(t, models.ViewGuestSearch, resolved.Screen)

	resolved = svc.Resolve(guestSession(), models.ViewIntent{Screen: models.ViewGuestRegister})
	assert.Equal(t, models.ViewGuestRegister, resolved.Screen)
}

func TestRegistrationFlow(t *testing.T) {
	svc := NewViewService()
	intent := svc.RequestRegister(guestSession(), models.ViewIntent{})
	assert.Equal(t, models.ViewGuestRegister, intent.Screen)

	intent = svc.CancelRegister(guestSession(), intent)
	assert.Equal(t, models.ViewGuestSearch, intent.Screen)

	intent = svc.RequestRegister(guestSession(), intent)
	intent = svc.RegisterSuccess(guestSession(), intent)
	assert.Equal(t, models.ViewGuestSearch, intent.Screen)
	assert.Equal(t, NoticeRegistrationComplete, intent.Notice)
}

func TestSelectCoursePendingEnrollmentSurvivesAuthFlow(t *testing.T) {
	svc := NewViewService()

	intent := svc.SelectCourse(guestSession(), models.ViewIntent{}, "B7")
	assert.True(t, intent.AuthPromptOpen)
	assert.Equal(t, "B7", intent.PendingEnrollBatchID.String())

	intent = svc.ChooseNewAccount(guestSession(), intent)
	assert.False(t, intent.AuthPromptOpen)
	assert.Equal(t, models.ViewGuestRegister, intent.Screen)
	assert.Equal(t, "B7", intent.PendingEnrollBatchID.String())

	// After login the same intent resolves to the dashboard with the
	// pending batch intact.
	resolved := svc.Resolve(authedSession(), intent)
	assert.Equal(t, models.ViewDashboard, resolved.Screen)
	assert.Equal(t, "B7", resolved.PendingEnrollBatchID.String())
}

func TestSelectCourseWhileAuthenticatedSkipsPrompt(t *testing.T) {
	svc := NewViewService()

	intent := svc.SelectCourse(authedSession(), models.ViewIntent{}, "B7")
	assert.False(t, intent.AuthPromptOpen)
	assert.Equal(t, models.ViewDashboard, intent.Screen)
}

func TestNavigateWorksFromAnyScreen(t *testing.T) {
	svc := NewViewService()

	for _, anchor := range []models.NavAnchor{models.AnchorHome, models.AnchorCourses, models.AnchorInstructors, models.AnchorRegister} {
		guest := svc.Navigate(guestSession(), models.ViewIntent{}, anchor)
		assert.Equal(t, anchor, guest.ScrollTarget)

		authed := svc.Navigate(authedSession(), models.ViewIntent{}, anchor)
		assert.Equal(t, anchor, authed.ScrollTarget)
	}
}

func TestBeginRenewalPreselectsBatch(t *testing.T) {
	svc := NewViewService()

	intent := svc.BeginRenewal(authedSession(), models.ViewIntent{}, "B2")
	assert.Equal(t, "B2", intent.PendingEnrollBatchID.String())
	assert.Equal(t, NoticeRenewalStarted, intent.Notice)

	intent = svc.ClearPendingEnrollment(authedSession(), intent)
	assert.Empty(t, intent.PendingEnrollBatchID.String())
}

package service

import (
	"time"

	"github.com/myanedu/portal-api/internal/models"
)

// DaysRemaining counts whole days left until expiry, rounding partial days
// up. A payment expiring later today still reports one day.
func DaysRemaining(expire, now time.Time) int {
	diff := expire.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Classify maps a payment's status and expiry onto the single action the
// student can take on it. Every input produces an action; statuses the
// backend invents later fall through to ActionUnavailable.
func Classify(status models.PaymentStatus, expired bool) models.ActionKind {
	switch status {
	case models.PaymentStatusRejected:
		return models.ActionRevoked
	case models.PaymentStatusPending:
		return models.ActionAwaitingVerification
	case models.PaymentStatusVerified:
		if expired {
			return models.ActionRenew
		}
		return models.ActionEnter
	default:
		return models.ActionUnavailable
	}
}

// DeriveAccessStates turns raw payment records into per-enrollment access
// state. Verified payments are collapsed to one state per batch, keeping the
// record with the latest expiry; pending and rejected payments surface
// individually so the student sees every submission awaiting review. Order
// follows first appearance in the input.
func DeriveAccessStates(payments []models.PaymentRecord, now time.Time) []models.AccessState {
	type slot struct {
		index  int
		record models.PaymentRecord
	}
	states := make([]models.AccessState, 0, len(payments))
	verified := make(map[string]slot)

	for _, p := range payments {
		if p.Status != models.PaymentStatusVerified {
			states = append(states, buildState(p, now))
			continue
		}
		key := p.BatchID.String()
		existing, seen := verified[key]
		if !seen {
			states = append(states, buildState(p, now))
			verified[key] = slot{index: len(states) - 1, record: p}
			continue
		}
		if laterExpiry(p, existing.record) {
			states[existing.index] = buildState(p, now)
			verified[key] = slot{index: existing.index, record: p}
		}
	}
	return states
}

// laterExpiry reports whether candidate should replace current as the
// representative verified payment. A missing expiry never wins.
func laterExpiry(candidate, current models.PaymentRecord) bool {
	if candidate.ExpireDate.IsZero() {
		return false
	}
	if current.ExpireDate.IsZero() {
		return true
	}
	return candidate.ExpireDate.Time.After(current.ExpireDate.Time)
}

func buildState(p models.PaymentRecord, now time.Time) models.AccessState {
	expired := false
	days := 0
	if p.Status == models.PaymentStatusVerified {
		if p.ExpireDate.IsZero() {
			expired = true
		} else {
			days = DaysRemaining(p.ExpireDate.Time, now)
			expired = days == 0
		}
	}
	return models.AccessState{
		PaymentID:     p.ID,
		CourseName:    p.CourseName,
		BatchName:     p.BatchName,
		BatchID:       p.BatchID,
		Status:        p.Status,
		DaysRemaining: days,
		IsExpired:     expired,
		Action:        Classify(p.Status, expired),
		ExpireDate:    p.ExpireDate,
	}
}

// CanEnter decides classroom entry for one batch from the student's
// payments. Entry needs a verified, unexpired payment for that batch; the
// denial reason distinguishes "never verified", "verified but lapsed", and
// "every submission rejected".
func CanEnter(payments []models.PaymentRecord, batchID string, now time.Time) models.EntryDecision {
	sawVerified := false
	sawRejected := false
	sawPending := false
	for _, state := range DeriveAccessStates(payments, now) {
		if state.BatchID.String() != batchID {
			continue
		}
		switch state.Status {
		case models.PaymentStatusVerified:
			sawVerified = true
			if !state.IsExpired {
				return models.EntryDecision{Allowed: true}
			}
		case models.PaymentStatusRejected:
			sawRejected = true
		default:
			sawPending = true
		}
	}
	switch {
	case sawVerified:
		return models.EntryDecision{Allowed: false, Reason: models.DenialExpired}
	case sawRejected && !sawPending:
		return models.EntryDecision{Allowed: false, Reason: models.DenialRevoked}
	default:
		return models.EntryDecision{Allowed: false, Reason: models.DenialNotVerified}
	}
}

// Stats summarises the dashboard header numbers. Active courses counts
// unexpired verified enrollments; total invested sums every verified
// payment, expired or not.
func Stats(payments []models.PaymentRecord, now time.Time) models.DashboardStats {
	stats := models.DashboardStats{}
	for _, state := range DeriveAccessStates(payments, now) {
		if state.Status == models.PaymentStatusVerified && !state.IsExpired {
			stats.ActiveCourses++
		}
	}
	for _, p := range payments {
		if p.Status == models.PaymentStatusVerified {
			stats.TotalInvested += p.Amount
		}
	}
	return stats
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myanedu/portal-api/internal/models"
)

var accessNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func flexTime(t time.Time) models.FlexTime {
	return models.FlexTime{Time: t}
}

func verifiedPayment(id, batchID string, expire time.Time) models.PaymentRecord {
	return models.PaymentRecord{
		ID:         models.FlexID(id),
		BatchID:    models.FlexID(batchID),
		CourseName: "Go Basics",
		BatchName:  "Batch " + batchID,
		Status:     models.PaymentStatusVerified,
		ExpireDate: flexTime(expire),
	}
}

func TestDaysRemainingRoundsUp(t *testing.T) {
	assert.Equal(t, 1, DaysRemaining(accessNow.Add(1*time.Hour), accessNow))
	assert.Equal(t, 1, DaysRemaining(accessNow.Add(24*time.Hour), accessNow))
	assert.Equal(t, 2, DaysRemaining(accessNow.Add(25*time.Hour), accessNow))
	assert.Equal(t, 0, DaysRemaining(accessNow, accessNow))
	assert.Equal(t, 0, DaysRemaining(accessNow.Add(-time.Minute), accessNow))
}

func TestClassifyIsTotal(t *testing.T) {
	assert.Equal(t, models.ActionEnter, Classify(models.PaymentStatusVerified, false))
	assert.Equal(t, models.ActionRenew, Classify(models.PaymentStatusVerified, true))
	assert.Equal(t, models.ActionAwaitingVerification, Classify(models.PaymentStatusPending, false))
	assert.Equal(t, models.ActionRevoked, Classify(models.PaymentStatusRejected, false))
	assert.Equal(t, models.ActionUnavailable, Classify(models.PaymentStatus("refunded"), false))
	assert.Equal(t, models.ActionUnavailable, Classify(models.PaymentStatus(""), true))
}

func TestDeriveCollapsesVerifiedByBatch(t *testing.T) {
	payments := []models.PaymentRecord{
		verifiedPayment("1", "B1", accessNow.Add(48*time.Hour)),
		verifiedPayment("2", "B1", accessNow.Add(240*time.Hour)),
		verifiedPayment("3", "B2", accessNow.Add(24*time.Hour)),
	}

	states := DeriveAccessStates(payments, accessNow)
	require.Len(t, states, 2)
	assert.Equal(t, "2", states[0].PaymentID.String())
	assert.Equal(t, 10, states[0].DaysRemaining)
	assert.Equal(t, "3", states[1].PaymentID.String())
}

func TestDeriveKeepsFirstSeenOrder(t *testing.T) {
	payments := []models.PaymentRecord{
		verifiedPayment("1", "B2", accessNow.Add(24*time.Hour)),
		verifiedPayment("2", "B1", accessNow.Add(24*time.Hour)),
		verifiedPayment("3", "B2", accessNow.Add(480*time.Hour)),
	}

	states := DeriveAccessStates(payments, accessNow)
	require.Len(t, states, 2)
	assert.Equal(t, "B2", states[0].BatchID.String())
	assert.Equal(t, "3", states[0].PaymentID.String())
	assert.Equal(t, "B1", states[1].BatchID.String())
}

func TestDeriveMissingExpiryNeverWins(t *testing.T) {
	withExpiry := verifiedPayment("1", "B1", accessNow.Add(24*time.Hour))
	withoutExpiry := verifiedPayment("2", "B1", time.Time{})

	states := DeriveAccessStates([]models.PaymentRecord{withExpiry, withoutExpiry}, accessNow)
	require.Len(t, states, 1)
	assert.Equal(t, "1", states[0].PaymentID.String())

	// A lone verified payment without expiry is treated as lapsed.
	states = DeriveAccessStates([]models.PaymentRecord{withoutExpiry}, accessNow)
	require.Len(t, states, 1)
	assert.True(t, states[0].IsExpired)
	assert.Equal(t, models.ActionRenew, states[0].Action)
}

func TestDerivePendingAndRejectedSurfaceIndividually(t *testing.T) {
	payments := []models.PaymentRecord{
		{ID: "1", BatchID: "B1", Status: models.PaymentStatusPending},
		{ID: "2", BatchID: "B1", Status: models.PaymentStatusPending},
		{ID: "3", BatchID: "B1", Status: models.PaymentStatusRejected},
	}

	states := DeriveAccessStates(payments, accessNow)
	require.Len(t, states, 3)
	assert.Equal(t, models.ActionAwaitingVerification, states[0].Action)
	assert.Equal(t, models.ActionAwaitingVerification, states[1].Action)
	assert.Equal(t, models.ActionRevoked, states[2].Action)
}

func TestCanEnterRequiresUnexpiredVerified(t *testing.T) {
	fresh := verifiedPayment("1", "B1", accessNow.Add(24*time.Hour))
	lapsed := verifiedPayment("2", "B2", accessNow.Add(-24*time.Hour))
	pending := models.PaymentRecord{ID: "3", BatchID: "B3", Status: models.PaymentStatusPending}
	payments := []models.PaymentRecord{fresh, lapsed, pending}

	assert.True(t, CanEnter(payments, "B1", accessNow).Allowed)

	denied := CanEnter(payments, "B2", accessNow)
	assert.False(t, denied.Allowed)
	assert.Equal(t, models.DenialExpired, denied.Reason)

	denied = CanEnter(payments, "B3", accessNow)
	assert.False(t, denied.Allowed)
	assert.Equal(t, models.DenialNotVerified, denied.Reason)

	denied = CanEnter(payments, "B404", accessNow)
	assert.False(t, denied.Allowed)
	assert.Equal(t, models.DenialNotVerified, denied.Reason)
}

func TestCanEnterRejectedOnlyBatchIsRevoked(t *testing.T) {
	payments := []models.PaymentRecord{
		{ID: "1", BatchID: "B1", Status: models.PaymentStatusRejected},
		{ID: "2", BatchID: "B2", Status: models.PaymentStatusRejected},
		{ID: "3", BatchID: "B2", Status: models.PaymentStatusPending},
	}

	denied := CanEnter(payments, "B1", accessNow)
	assert.False(t, denied.Allowed)
	assert.Equal(t, models.DenialRevoked, denied.Reason)

	// A resubmission awaiting review reports not-verified, not revoked.
	denied = CanEnter(payments, "B2", accessNow)
	assert.False(t, denied.Allowed)
	assert.Equal(t, models.DenialNotVerified, denied.Reason)
}

func TestCanEnterRenewalSupersedesLapsedPayment(t *testing.T) {
	payments := []models.PaymentRecord{
		verifiedPayment("1", "B1", accessNow.Add(-24*time.Hour)),
		verifiedPayment("2", "B1", accessNow.Add(720*time.Hour)),
	}
	assert.True(t, CanEnter(payments, "B1", accessNow).Allowed)
}

func TestStats(t *testing.T) {
	payments := []models.PaymentRecord{
		verifiedPayment("1", "B1", accessNow.Add(24*time.Hour)),
		verifiedPayment("2", "B2", accessNow.Add(-24*time.Hour)),
		{ID: "3", BatchID: "B3", Status: models.PaymentStatusPending, Amount: 99999},
	}
	payments[0].Amount = 45000
	payments[1].Amount = 30000

	stats := Stats(payments, accessNow)
	assert.Equal(t, 1, stats.ActiveCourses)
	assert.Equal(t, models.Money(75000), stats.TotalInvested)
}

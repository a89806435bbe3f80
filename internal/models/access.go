package models

// ActionKind is the single renderable action for a course card.
type ActionKind string

const (
	// ActionEnter allows opening the classroom.
	ActionEnter ActionKind = "enter"
	// ActionRenew prompts re-payment for an expired verified batch.
	ActionRenew ActionKind = "renew"
	// ActionAwaitingVerification marks a payment still under admin review.
	ActionAwaitingVerification ActionKind = "awaiting_verification"
	// ActionRevoked marks a rejected payment.
	ActionRevoked ActionKind = "revoked"
	// ActionUnavailable covers unrecognised status values; the card renders
	// but can never enter class.
	ActionUnavailable ActionKind = "unavailable"
)

// EntryDenialReason explains a refused classroom entry.
type EntryDenialReason string

const (
	DenialNotVerified EntryDenialReason = "not_verified"
	DenialExpired     EntryDenialReason = "expired"
	DenialRevoked     EntryDenialReason = "revoked"
)

// EntryDecision is the result of the classroom entry gate.
type EntryDecision struct {
	Allowed bool              `json:"allowed"`
	Reason  EntryDenialReason `json:"reason,omitempty"`
}

// AccessState is the derived, de-duplicated view of a student's access to
// one batch: recomputed from the payment record list, never stored.
type AccessState struct {
	PaymentID     FlexID        `json:"payment_id"`
	CourseName    string        `json:"course_name"`
	BatchName     string        `json:"batch_name"`
	BatchID       FlexID        `json:"batch_id"`
	Status        PaymentStatus `json:"status"`
	DaysRemaining int           `json:"days_remaining"`
	IsExpired     bool          `json:"is_expired"`
	Action        ActionKind    `json:"action"`
	ExpireDate    FlexTime      `json:"expire_date,omitempty"`
}

// DashboardStats summarises verified payments for the overview screen.
type DashboardStats struct {
	ActiveCourses int   `json:"active_courses"`
	TotalInvested Money `json:"total_invested"`
}

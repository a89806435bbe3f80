package models

import "fmt"

// PaymentStatus is the admin-review lifecycle state of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Known reports whether the status is one of the three enumerated values.
// Anything else is treated as non-actionable rather than rejected outright.
func (s PaymentStatus) Known() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusVerified, PaymentStatusRejected:
		return true
	}
	return false
}

// PaymentRecord is one submitted payment tied to one course batch, consumed
// read-only from the admin backend.
type PaymentRecord struct {
	ID            FlexID        `json:"id"`
	CourseName    string        `json:"course_name"`
	BatchName     string        `json:"batch_name"`
	BatchID       FlexID        `json:"batch_id"`
	Amount        Money         `json:"amount"`
	PaymentMethod string        `json:"payment_method"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaymentDate   FlexTime      `json:"payment_date"`
	ExpireDate    FlexTime      `json:"expire_date,omitempty"`
	Status        PaymentStatus `json:"status"`
	ReceiptImage  string        `json:"receipt_image,omitempty"`
}

// Normalize cleans optional fields once at the decode boundary so display
// sites never have to check for the string "null" themselves.
func (p *PaymentRecord) Normalize() {
	p.TransactionID = normalizeNullString(p.TransactionID)
	p.ReceiptImage = normalizeNullString(p.ReceiptImage)
}

// DisplayID prefers the real bank transaction reference and falls back to
// the record's system id.
func (p PaymentRecord) DisplayID() string {
	if p.TransactionID != "" {
		return p.TransactionID
	}
	return fmt.Sprintf("#%s", p.ID)
}

// internal/domain/models/contribution.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contribution statuses. A record never transitions away from paid.
const (
	ContributionPending = "pending"
	ContributionPaid    = "paid"
)

// Contribution is one member-month ledger row in the "contribution"
// collection. There is exactly one conceptual record per (username, month),
// backed by a unique index.
//
// The paid status of a Contribution is the sole source of truth for receipt
// eligibility; deleting a payment request never changes it.
//
// BSON field names match the original documents verbatim; they are a wire
// contract with existing data. Dates are stored as RFC 3339 strings for the
// same reason.
type Contribution struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Month    string             `bson:"month" json:"month"` // "YYYY-MM"
	Amount   int64              `bson:"amount" json:"amount"`
	Status   string             `bson:"status" json:"status"` // pending | paid

	DueDate   *string `bson:"dueDate" json:"dueDate"`
	PaidDate  *string `bson:"paidDate" json:"paidDate"`
	PaymentID string  `bson:"paymentID,omitempty" json:"paymentID,omitempty"`
}

// Paid reports whether this row settles the month.
func (c Contribution) Paid() bool { return c.Status == ContributionPaid }

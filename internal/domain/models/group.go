// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is the single active contribution group.
//
// NOTE:
//   - BSON field names are camelCase to stay interoperable with documents
//     written by earlier versions of the app. Do not rename them.
//   - FineRules are ordered as entered by the admin, but the amount
//     calculation is order-independent (qualifying rules stack).
type Group struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"`

	// BaseAmount is the monthly contribution in rupees before fines.
	BaseAmount int64      `bson:"baseAmount" json:"baseAmount"`
	FineRules  []FineRule `bson:"fineRules" json:"fineRules"`

	// PreviousContribution is carried-over money from before the app
	// started tracking; it only feeds dashboard totals.
	PreviousContribution int64 `bson:"previousContribution" json:"previousContribution"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FineRule adds Amount to the contribution due once FromDate has passed.
// Dates are "YYYY-MM-DD"; only the month and day matter (the rule is
// re-anchored to the current year at evaluation time). ToDate is kept for
// admin display but has no effect on the cumulative amount.
type FineRule struct {
	FromDate string `bson:"fromDate" json:"fromDate"`
	ToDate   string `bson:"toDate" json:"toDate"`
	Amount   int64  `bson:"amount" json:"amount"`
}

// Valid reports whether the rule carries enough data to evaluate.
// Rules missing a from-date or amount are dropped on write and skipped
// during evaluation.
func (r FineRule) Valid() bool {
	return r.FromDate != "" && r.Amount > 0
}

// internal/domain/models/paymentrequest.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment request statuses. Accepted and rejected are terminal: a member may
// submit a new request for the same month after a rejection, but the old
// request is never mutated again.
const (
	PaymentPending  = "pending"
	PaymentAccepted = "accepted"
	PaymentRejected = "rejected"
)

// PaymentRequest is a member's claim of having paid for a month, waiting for
// an admin decision. The screenshot is embedded as a data URL, matching the
// original documents (spec'd external storage is a non-goal here).
//
// CreatedAt is an RFC 3339 string on purpose: "latest request wins" display
// semantics compare it lexicographically, and RFC 3339 sorts correctly that
// way.
type PaymentRequest struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	Month      string             `bson:"month" json:"month"` // "YYYY-MM"
	Amount     int64              `bson:"amount" json:"amount"`
	UPIID      string             `bson:"upiId" json:"upiId"`
	Screenshot string             `bson:"screenshot" json:"screenshot,omitempty"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  string             `bson:"createdAt" json:"createdAt"`

	// PaymentID is the human-readable receipt code (PI{ddmmyyyy}{rand}).
	PaymentID string `bson:"paymentID" json:"paymentID"`
}

// Decided reports whether the request has reached a terminal state.
func (p PaymentRequest) Decided() bool {
	return p.Status == PaymentAccepted || p.Status == PaymentRejected
}

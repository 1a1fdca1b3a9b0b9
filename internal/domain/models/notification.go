// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifyPaymentApproved  = "payment_approved"
	NotifyPaymentRejected  = "payment_rejected"
	NotifyPaymentSubmitted = "payment_submitted"
	NotifyGeneral          = "general"
)

// AdminUserID is the recipient id used for notifications addressed to the
// admin (the admin is not a member document).
const AdminUserID = "admin"

// Notification is a best-effort, non-authoritative record of a workflow
// transition. Losing one never invalidates ledger state.
type Notification struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   string             `bson:"userId" json:"userId"`
	Username string             `bson:"username" json:"username"`
	Type     string             `bson:"type" json:"type"`
	Title    string             `bson:"title" json:"title"`
	Message  string             `bson:"message" json:"message"`
	Read     bool               `bson:"read" json:"read"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`

	Data *NotificationData `bson:"data,omitempty" json:"data,omitempty"`
}

// NotificationData carries the workflow context of a payment notification.
type NotificationData struct {
	PaymentID     string `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Month         string `bson:"month,omitempty" json:"month,omitempty"`
	Amount        int64  `bson:"amount,omitempty" json:"amount,omitempty"`
	AdminUsername string `bson:"adminUsername,omitempty" json:"adminUsername,omitempty"`
}

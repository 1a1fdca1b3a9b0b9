// internal/domain/models/settings.go
package models

import "time"

// PaymentSettings is the singleton settings document (collection "static",
// _id "settings"). When the gateway is disabled, members pay directly to the
// configured UPI id and upload a screenshot for admin review.
type PaymentSettings struct {
	ID             string    `bson:"_id" json:"-"`
	GatewayEnabled bool      `bson:"gatewayEnabled" json:"gatewayEnabled"`
	UPIID          string    `bson:"upiId" json:"upiId"`
	UpdatedAt      time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// SettingsDocID is the fixed _id of the singleton settings document.
const SettingsDocID = "settings"

package operations

import "time"

// The Raw* types mirror the operator-facing record collections owned by the
// storefront. They are decoded from loosely-shaped documents, so every field
// beyond identity and creation time is optional; accessors resolve the
// fallbacks in one place instead of leaving them to each caller.

// ItemKindRacket marks an order line item as a racket, the one item kind the
// flow classification cares about.
const ItemKindRacket = "racket"

// ApplicationStatusDraft marks a stringing application the customer has not
// finished filling in. Drafts never appear in listings.
const ApplicationStatusDraft = "draft"

// Customer is the embedded customer snapshot carried by orders, guest
// rentals, and applications.
type Customer struct {
	UserID string `bson:"userId,omitempty"`
	Name   string `bson:"name,omitempty"`
	Email  string `bson:"email,omitempty"`
	Phone  string `bson:"phone,omitempty"`
}

// PaymentInfo is the nested payment sub-document some records carry instead
// of a flat payment status.
type PaymentInfo struct {
	Status string `bson:"status,omitempty"`
	Method string `bson:"method,omitempty"`
}

// OrderLineItem is one purchased product line.
type OrderLineItem struct {
	ProductID string `bson:"productId,omitempty"`
	Name      string `bson:"name,omitempty"`
	ItemKind  string `bson:"itemKind,omitempty"`
	Quantity  int    `bson:"quantity,omitempty"`
	Price     int64  `bson:"price,omitempty"`
}

// RawOrder is a product order as stored by the order collection.
type RawOrder struct {
	ID            string          `bson:"_id"`
	CreatedAt     time.Time       `bson:"createdAt"`
	Status        string          `bson:"status,omitempty"`
	PaymentStatus string          `bson:"paymentStatus,omitempty"`
	Payment       *PaymentInfo    `bson:"payment,omitempty"`
	Items         []OrderLineItem `bson:"items,omitempty"`
	TotalAmount   int64           `bson:"totalAmount,omitempty"`
	Customer      Customer        `bson:"customer,omitempty"`

	StringingApplicationID string `bson:"stringingApplicationId,omitempty"`
	StringServiceApplied   bool   `bson:"isStringServiceApplied,omitempty"`
}

// PaymentLabel resolves the possibly nested payment status of an order.
func (o *RawOrder) PaymentLabel() string {
	if o.Payment != nil && o.Payment.Status != "" {
		return o.Payment.Status
	}

	if o.PaymentStatus != "" {
		return o.PaymentStatus
	}

	return PayLabelUnknown
}

// StringingIntent is the stringing sub-document a rental may embed when the
// renter asked for strings to be mounted.
type StringingIntent struct {
	StringName string `bson:"stringName,omitempty"`
	Tension    string `bson:"tension,omitempty"`
	Notes      string `bson:"notes,omitempty"`
}

// RawRental is a racket rental as stored by the rental collection. The
// renter is either a registered user (UserID) or a guest snapshot.
type RawRental struct {
	ID            string       `bson:"_id"`
	CreatedAt     time.Time    `bson:"createdAt"`
	Status        string       `bson:"status,omitempty"`
	PaymentStatus string       `bson:"paymentStatus,omitempty"`
	Payment       *PaymentInfo `bson:"payment,omitempty"`
	UserID        string       `bson:"userId,omitempty"`
	Guest         *Customer    `bson:"guest,omitempty"`
	RacketName    string       `bson:"racketName,omitempty"`

	StringPrice int64 `bson:"stringPrice,omitempty"`
	MountingFee int64 `bson:"mountingFee,omitempty"`
	Deposit     int64 `bson:"deposit,omitempty"`

	Stringing *StringingIntent `bson:"stringDetails,omitempty"`

	StringingApplicationID string `bson:"stringingApplicationId,omitempty"`
	StringServiceApplied   bool   `bson:"isStringServiceApplied,omitempty"`
	OutboundTrackingNumber string `bson:"outboundTrackingNumber,omitempty"`
}

// Amount is the rental's full charge: string price, mounting fee, deposit.
func (r *RawRental) Amount() int64 {
	return r.StringPrice + r.MountingFee + r.Deposit
}

// HasOutboundTracking reports whether the racket shipment has been registered.
func (r *RawRental) HasOutboundTracking() bool {
	return r.OutboundTrackingNumber != ""
}

// PaymentLabel resolves the possibly nested payment status of a rental.
func (r *RawRental) PaymentLabel() string {
	if r.Payment != nil && r.Payment.Status != "" {
		return r.Payment.Status
	}

	if r.PaymentStatus != "" {
		return r.PaymentStatus
	}

	return PayLabelUnknown
}

// RawApplication is a stringing-service application. OrderID and RentalID
// are the forward links to the record the service belongs to; both empty
// means a standalone walk-in application.
type RawApplication struct {
	ID              string    `bson:"_id"`
	CreatedAt       time.Time `bson:"createdAt"`
	Status          string    `bson:"status,omitempty"`
	PaymentStatus   string    `bson:"paymentStatus,omitempty"`
	PaymentSource   string    `bson:"paymentSource,omitempty"`
	PackageRedeemed bool      `bson:"packageRedeemed,omitempty"`
	ServicePaid     bool      `bson:"isServicePaid,omitempty"`
	TotalPrice      int64     `bson:"totalPrice,omitempty"`
	ServiceFeeID    string    `bson:"serviceFeeId,omitempty"`
	OrderID         string    `bson:"orderId,omitempty"`
	RentalID        string    `bson:"rentalId,omitempty"`
	Customer        Customer  `bson:"customer,omitempty"`
	StringName      string    `bson:"stringName,omitempty"`
	Tension         string    `bson:"tension,omitempty"`
}

// IsDraft reports whether the application is still an unfinished form.
func (a *RawApplication) IsDraft() bool {
	return a.Status == ApplicationStatusDraft
}

// IsIntegrated reports whether the application links to an order or rental.
func (a *RawApplication) IsIntegrated() bool {
	return a.OrderID != "" || a.RentalID != ""
}

// User is the registered-user record backing rental customer snapshots.
type User struct {
	ID    string `bson:"_id"`
	Name  string `bson:"name,omitempty"`
	Email string `bson:"email,omitempty"`
	Phone string `bson:"phone,omitempty"`
}

package operations

import "time"

// Kind identifies which record family an operation item came from.
type Kind string

const (
	KindOrder       Kind = "order"
	KindRental      Kind = "rental"
	KindApplication Kind = "stringing_application"

	// KindAll is only valid in queries and matches every family.
	KindAll Kind = "all"
)

// kindPriority is the one ordering of kinds used everywhere a group is
// flattened: orders before rentals before applications.
func kindPriority(k Kind) int {
	switch k {
	case KindOrder:
		return 0
	case KindRental:
		return 1
	case KindApplication:
		return 2
	default:
		return 3
	}
}

// Flow classifies an operation into one of the seven purchase/rental/service
// scenarios the shop handles.
type Flow int

const (
	FlowStringPurchase Flow = 1 // strings bought, no service
	FlowStringService  Flow = 2 // strings bought with mounting service
	FlowServiceOnly    Flow = 3 // standalone stringing service
	FlowRacketPurchase Flow = 4 // racket bought, no service
	FlowRacketBundle   Flow = 5 // racket and strings bought with service
	FlowRacketRental   Flow = 6 // racket rented, no service
	FlowRentalBundle   Flow = 7 // racket rented with strings and service
)

// Payment labels produced by derivation when no explicit status is stored.
const (
	PayLabelPackage     = "package"
	PayLabelWithOrder   = "paid_with_order"
	PayLabelWithRental  = "paid_with_rental"
	PayLabelServicePaid = "service_paid"
	PayLabelPending     = "pending"
	PayLabelNeedsReview = "needs_review"
	PayLabelUnknown     = "unknown"
)

// ReviewLevel flags how much operator attention a derived payment label
// needs. ReviewAction is reserved for labels that could not be determined
// from any evidence.
type ReviewLevel string

const (
	ReviewNone   ReviewLevel = ""
	ReviewInfo   ReviewLevel = "info"
	ReviewAction ReviewLevel = "action"
)

// Related points at the counterpart record of an integrated item.
type Related struct {
	Kind Kind
	ID   string
	Link string
}

// StringingSummary is the rental-only extract of the embedded stringing
// intent.
type StringingSummary struct {
	StringName string
	Tension    string
	Notes      string
}

// OperationItem is the normalized operator view of one order, rental, or
// stringing application. It is a pure projection of the raw record plus the
// integrity reasons computed for the same request; nothing in it is
// persisted.
type OperationItem struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time
	Customer  Customer
	Title     string

	StatusLabel   string
	PaymentLabel  string
	PaymentSource string

	Amount     int64
	AmountNote string

	Flow             Flow
	SettlementAnchor Kind
	Related          *Related
	IsIntegrated     bool

	Warnings []string
	Pendings []string
	Warn     bool

	NextAction string

	Stringing     *StringingSummary
	ReviewLevel   ReviewLevel
	ReviewReasons []string
}

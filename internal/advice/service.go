package advice

import (
	"github.com/courtside/racketops/internal/operations"
)

// Service recommends the operator's next action for an operation item. It is
// a pure lookup over the item's kind and labels: no state, no failures.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Next returns a recommended action hint, or empty when nothing obvious is
// left to do.
func (s *Service) Next(in operations.AdviceInput) string {
	switch in.Kind {
	case operations.KindOrder:
		return nextForOrder(in)
	case operations.KindRental:
		return nextForRental(in)
	case operations.KindApplication:
		return nextForApplication(in)
	}

	return ""
}

func nextForOrder(in operations.AdviceInput) string {
	switch {
	case in.PaymentLabel == operations.PayLabelPending || in.PaymentLabel == operations.PayLabelUnknown:
		return "confirm payment"
	case in.StatusLabel == "paid" || in.StatusLabel == "confirmed":
		return "prepare shipment"
	case in.StatusLabel == "shipped":
		return "await delivery confirmation"
	}

	return ""
}

func nextForRental(in operations.AdviceInput) string {
	switch {
	case in.PaymentLabel == operations.PayLabelPending || in.PaymentLabel == operations.PayLabelUnknown:
		return "confirm payment"
	case !in.HasOutboundTracking && (in.StatusLabel == "paid" || in.StatusLabel == "confirmed"):
		return "register outbound tracking"
	case in.StatusLabel == "returned":
		return "inspect racket and release deposit"
	}

	return ""
}

func nextForApplication(in operations.AdviceInput) string {
	switch {
	case in.PaymentLabel == operations.PayLabelNeedsReview:
		return "review payment evidence"
	case in.PaymentLabel == operations.PayLabelPending:
		return "confirm payment"
	case in.StatusLabel == "received" || in.StatusLabel == "confirmed":
		return "schedule stringing"
	case in.StatusLabel == "strung":
		return "notify customer for pickup"
	}

	return ""
}

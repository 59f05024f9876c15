package operations

// AdviceInput is what the next-action advisor sees for one item.
type AdviceInput struct {
	Kind                Kind
	StatusLabel         string
	PaymentLabel        string
	HasOutboundTracking bool
}

// AdviceFunc recommends the operator's next action for an item. It must be
// pure and failure-free; an empty string means no recommendation.
type AdviceFunc func(AdviceInput) string

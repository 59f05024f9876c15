package operations

import (
	"fmt"
	"strings"
)

// Provenance values for PaymentSource, recording which fallback step
// produced an item's payment label.
const (
	paySourceRecorded   = "recorded"
	paySourcePackage    = "package"
	paySourceLinked     = "payment_source"
	paySourceFlag       = "service_flag"
	paySourceChargeable = "chargeable_amount"
	paySourceUnresolved = "unresolved"
)

// projector maps the raw working set into operator view items. It reads the
// reason maps produced by the integrity checks and never mutates the set.
type projector struct {
	set      *materialized
	warnings map[string][]string
	pendings map[string][]string
	advise   AdviceFunc
}

// project returns the three projected families in fetch order: orders,
// rentals, applications. The pipeline's stable sort relies on this order for
// tie-breaking.
func (p *projector) project() []*OperationItem {
	items := make([]*OperationItem, 0, len(p.set.orders)+len(p.set.rentals)+len(p.set.apps))

	for _, o := range p.set.orders {
		items = append(items, p.projectOrder(o))
	}

	for _, r := range p.set.rentals {
		items = append(items, p.projectRental(r))
	}

	for _, a := range p.set.apps {
		items = append(items, p.projectApplication(a))
	}

	return items
}

func (p *projector) projectOrder(o *RawOrder) *OperationItem {
	relatedID := o.StringingApplicationID
	if relatedID == "" {
		relatedID = p.set.index.orderPrimary[o.ID]
	}

	integrated := relatedID != ""

	it := &OperationItem{
		ID:               o.ID,
		Kind:             KindOrder,
		CreatedAt:        o.CreatedAt,
		Customer:         o.Customer,
		Title:            orderTitle(o),
		StatusLabel:      o.Status,
		PaymentLabel:     o.PaymentLabel(),
		PaymentSource:    paySourceRecorded,
		Amount:           o.TotalAmount,
		Flow:             classifyOrderFlow(orderHasRacket(o), integrated),
		SettlementAnchor: KindOrder,
		IsIntegrated:     integrated,
	}

	if relatedID != "" {
		it.Related = &Related{
			Kind: KindApplication,
			ID:   relatedID,
			Link: "/admin/stringing-applications/" + relatedID,
		}
	}

	p.attachReasons(it)

	it.NextAction = p.advise(AdviceInput{
		Kind:         KindOrder,
		StatusLabel:  it.StatusLabel,
		PaymentLabel: it.PaymentLabel,
	})

	return it
}

func (p *projector) projectRental(r *RawRental) *OperationItem {
	relatedID := r.StringingApplicationID
	if relatedID == "" {
		relatedID = p.set.index.rentalPrimary[r.ID]
	}

	integrated := relatedID != ""

	it := &OperationItem{
		ID:               r.ID,
		Kind:             KindRental,
		CreatedAt:        r.CreatedAt,
		Customer:         p.rentalCustomer(r),
		Title:            rentalTitle(r),
		StatusLabel:      r.Status,
		PaymentLabel:     r.PaymentLabel(),
		PaymentSource:    paySourceRecorded,
		Amount:           r.Amount(),
		Flow:             classifyRentalFlow(integrated),
		SettlementAnchor: KindRental,
		IsIntegrated:     integrated,
	}

	if relatedID != "" {
		it.Related = &Related{
			Kind: KindApplication,
			ID:   relatedID,
			Link: "/admin/stringing-applications/" + relatedID,
		}
	}

	if r.Stringing != nil {
		it.Stringing = &StringingSummary{
			StringName: r.Stringing.StringName,
			Tension:    r.Stringing.Tension,
			Notes:      r.Stringing.Notes,
		}
	}

	p.attachReasons(it)

	it.NextAction = p.advise(AdviceInput{
		Kind:                KindRental,
		StatusLabel:         it.StatusLabel,
		PaymentLabel:        it.PaymentLabel,
		HasOutboundTracking: r.HasOutboundTracking(),
	})

	return it
}

func (p *projector) projectApplication(a *RawApplication) *OperationItem {
	pay := deriveApplicationPayment(a)

	it := &OperationItem{
		ID:               a.ID,
		Kind:             KindApplication,
		CreatedAt:        a.CreatedAt,
		Customer:         a.Customer,
		Title:            applicationTitle(a),
		StatusLabel:      a.Status,
		PaymentLabel:     pay.Label,
		PaymentSource:    pay.Source,
		Amount:           a.TotalPrice,
		Flow:             p.classifyApplicationFlow(a),
		SettlementAnchor: applicationAnchor(a),
		IsIntegrated:     a.IsIntegrated(),
		ReviewLevel:      pay.Level,
		ReviewReasons:    pay.Reasons,
	}

	switch {
	case a.OrderID != "":
		it.Related = &Related{Kind: KindOrder, ID: a.OrderID, Link: "/admin/orders/" + a.OrderID}
	case a.RentalID != "":
		it.Related = &Related{Kind: KindRental, ID: a.RentalID, Link: "/admin/rentals/" + a.RentalID}
	}

	if a.TotalPrice == 0 {
		it.AmountNote = applicationAmountNote(a)
	}

	p.attachReasons(it)

	it.NextAction = p.advise(AdviceInput{
		Kind:         KindApplication,
		StatusLabel:  it.StatusLabel,
		PaymentLabel: it.PaymentLabel,
	})

	return it
}

func (p *projector) attachReasons(it *OperationItem) {
	key := entityKey(it.Kind, it.ID)
	it.Warnings = p.warnings[key]
	it.Pendings = p.pendings[key]
	it.Warn = len(it.Warnings) > 0
}

// rentalCustomer resolves the renter snapshot: registered users come from
// the batch user lookup, guests carry their own snapshot.
func (p *projector) rentalCustomer(r *RawRental) Customer {
	if r.UserID != "" {
		if u, ok := p.set.users[r.UserID]; ok {
			return Customer{UserID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
		}

		return Customer{UserID: r.UserID}
	}

	if r.Guest != nil {
		return *r.Guest
	}

	return Customer{}
}

// classifyApplicationFlow derives an application's flow from whichever
// counterpart it is linked to. An order link consults the order's racket
// presence; a rental link is always the rental bundle; standalone is
// service-only. A dangling order link falls back to the string-service
// bundle, the integrated flow that assumes no racket.
func (p *projector) classifyApplicationFlow(a *RawApplication) Flow {
	switch {
	case a.OrderID != "":
		if o, ok := p.set.ordersByID[a.OrderID]; ok {
			return classifyOrderFlow(orderHasRacket(o), true)
		}

		return FlowStringService
	case a.RentalID != "":
		return FlowRentalBundle
	default:
		return FlowServiceOnly
	}
}

func applicationAnchor(a *RawApplication) Kind {
	switch {
	case a.OrderID != "":
		return KindOrder
	case a.RentalID != "":
		return KindRental
	default:
		return KindApplication
	}
}

func orderHasRacket(o *RawOrder) bool {
	for _, item := range o.Items {
		if item.ItemKind == ItemKindRacket {
			return true
		}
	}

	return false
}

func classifyOrderFlow(hasRacket, integrated bool) Flow {
	switch {
	case hasRacket && integrated:
		return FlowRacketBundle
	case hasRacket:
		return FlowRacketPurchase
	case integrated:
		return FlowStringService
	default:
		return FlowStringPurchase
	}
}

func classifyRentalFlow(integrated bool) Flow {
	if integrated {
		return FlowRentalBundle
	}

	return FlowRacketRental
}

// paymentDerivation is the result of the application payment fallback chain:
// the label, the step that produced it, and the operator-facing explanation.
type paymentDerivation struct {
	Label   string
	Source  string
	Level   ReviewLevel
	Reasons []string
}

// deriveApplicationPayment resolves the payment label for a stringing
// application. The chain is evaluated in fixed order and the first step with
// evidence wins: recorded status, package redemption, payment source,
// service-paid flag, chargeable amount, and finally a needs-review marker
// for genuinely undeterminable cases.
func deriveApplicationPayment(a *RawApplication) paymentDerivation {
	if a.PaymentStatus != "" {
		return paymentDerivation{Label: a.PaymentStatus, Source: paySourceRecorded}
	}

	if a.PackageRedeemed {
		return paymentDerivation{
			Label:   PayLabelPackage,
			Source:  paySourcePackage,
			Level:   ReviewInfo,
			Reasons: []string{"label derived from the package redemption flag"},
		}
	}

	if strings.HasPrefix(a.PaymentSource, "order:") {
		return paymentDerivation{
			Label:   PayLabelWithOrder,
			Source:  paySourceLinked,
			Level:   ReviewInfo,
			Reasons: []string{fmt.Sprintf("label derived from payment source %q", a.PaymentSource)},
		}
	}

	if strings.HasPrefix(a.PaymentSource, "rental:") {
		return paymentDerivation{
			Label:   PayLabelWithRental,
			Source:  paySourceLinked,
			Level:   ReviewInfo,
			Reasons: []string{fmt.Sprintf("label derived from payment source %q", a.PaymentSource)},
		}
	}

	if a.ServicePaid {
		return paymentDerivation{
			Label:   PayLabelServicePaid,
			Source:  paySourceFlag,
			Level:   ReviewInfo,
			Reasons: []string{"label derived from the service-paid flag"},
		}
	}

	if a.TotalPrice > 0 {
		return paymentDerivation{
			Label:   PayLabelPending,
			Source:  paySourceChargeable,
			Level:   ReviewInfo,
			Reasons: []string{"chargeable amount with no payment on record"},
		}
	}

	return paymentDerivation{
		Label:   PayLabelNeedsReview,
		Source:  paySourceUnresolved,
		Level:   ReviewAction,
		Reasons: []string{"no payment evidence on record"},
	}
}

// applicationAmountNote explains a zero amount to the operator.
func applicationAmountNote(a *RawApplication) string {
	switch {
	case a.PackageRedeemed:
		return "covered by package redemption"
	case strings.HasPrefix(a.PaymentSource, "order:"):
		return "settled with " + a.PaymentSource
	case strings.HasPrefix(a.PaymentSource, "rental:"):
		return "settled with " + a.PaymentSource
	case a.ServiceFeeID != "":
		return "see service fee " + a.ServiceFeeID
	default:
		return "no charge recorded"
	}
}

func orderTitle(o *RawOrder) string {
	if len(o.Items) == 0 {
		return "order " + o.ID
	}

	title := o.Items[0].Name
	if len(o.Items) > 1 {
		title = fmt.Sprintf("%s (+%d more)", title, len(o.Items)-1)
	}

	return title
}

func rentalTitle(r *RawRental) string {
	if r.RacketName == "" {
		return "racket rental"
	}

	return r.RacketName + " rental"
}

func applicationTitle(a *RawApplication) string {
	if a.StringName == "" {
		return "stringing service"
	}

	if a.Tension == "" {
		return "stringing: " + a.StringName
	}

	return fmt.Sprintf("stringing: %s @ %s", a.StringName, a.Tension)
}

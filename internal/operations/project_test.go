package operations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProjector(set *materialized) *projector {
	warnings, pendings := runIntegrityChecks(set)
	return &projector{set: set, warnings: warnings, pendings: pendings, advise: func(AdviceInput) string { return "" }}
}

func TestClassifyOrderFlow(t *testing.T) {
	type testCase struct {
		name       string
		hasRacket  bool
		integrated bool
		want       Flow
	}

	tests := []testCase{
		{name: "StringsOnly", hasRacket: false, integrated: false, want: FlowStringPurchase},
		{name: "StringsWithService", hasRacket: false, integrated: true, want: FlowStringService},
		{name: "RacketOnly", hasRacket: true, integrated: false, want: FlowRacketPurchase},
		{name: "RacketBundle", hasRacket: true, integrated: true, want: FlowRacketBundle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyOrderFlow(tt.hasRacket, tt.integrated))
		})
	}
}

func TestClassifyRentalFlow(t *testing.T) {
	assert.Equal(t, FlowRacketRental, classifyRentalFlow(false))
	assert.Equal(t, FlowRentalBundle, classifyRentalFlow(true))
}

func TestClassifyApplicationFlow(t *testing.T) {
	racketOrder := &RawOrder{ID: "order-r", Items: []OrderLineItem{{Name: "Blade V9", ItemKind: ItemKindRacket}}}
	stringOrder := &RawOrder{ID: "order-s", Items: []OrderLineItem{{Name: "Poly string", ItemKind: "string"}}}

	set := newTestSet([]*RawOrder{racketOrder, stringOrder}, nil, nil)
	p := newTestProjector(set)

	type testCase struct {
		name string
		app  *RawApplication
		want Flow
	}

	tests := []testCase{
		{name: "LinkedToRacketOrder", app: &RawApplication{ID: "a1", OrderID: "order-r"}, want: FlowRacketBundle},
		{name: "LinkedToStringOrder", app: &RawApplication{ID: "a2", OrderID: "order-s"}, want: FlowStringService},
		{name: "DanglingOrderLink", app: &RawApplication{ID: "a3", OrderID: "order-gone"}, want: FlowStringService},
		{name: "LinkedToRental", app: &RawApplication{ID: "a4", RentalID: "rental-1"}, want: FlowRentalBundle},
		{name: "Standalone", app: &RawApplication{ID: "a5"}, want: FlowServiceOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.classifyApplicationFlow(tt.app))
		})
	}
}

func TestDeriveApplicationPayment(t *testing.T) {
	type testCase struct {
		name       string
		app        *RawApplication
		wantLabel  string
		wantSource string
		wantLevel  ReviewLevel
	}

	tests := []testCase{
		{
			name:       "RecordedStatusWins",
			app:        &RawApplication{PaymentStatus: "paid", PackageRedeemed: true},
			wantLabel:  "paid",
			wantSource: paySourceRecorded,
			wantLevel:  ReviewNone,
		},
		{
			name:       "PackageRedemption",
			app:        &RawApplication{PackageRedeemed: true, TotalPrice: 2500},
			wantLabel:  PayLabelPackage,
			wantSource: paySourcePackage,
			wantLevel:  ReviewInfo,
		},
		{
			name:       "PaidWithOrder",
			app:        &RawApplication{PaymentSource: "order:order-1"},
			wantLabel:  PayLabelWithOrder,
			wantSource: paySourceLinked,
			wantLevel:  ReviewInfo,
		},
		{
			name:       "PaidWithRental",
			app:        &RawApplication{PaymentSource: "rental:rental-1"},
			wantLabel:  PayLabelWithRental,
			wantSource: paySourceLinked,
			wantLevel:  ReviewInfo,
		},
		{
			name:       "ServicePaidFlag",
			app:        &RawApplication{ServicePaid: true},
			wantLabel:  PayLabelServicePaid,
			wantSource: paySourceFlag,
			wantLevel:  ReviewInfo,
		},
		{
			name:       "ChargeableAmountPending",
			app:        &RawApplication{TotalPrice: 2500},
			wantLabel:  PayLabelPending,
			wantSource: paySourceChargeable,
			wantLevel:  ReviewInfo,
		},
		{
			name:       "NoEvidenceNeedsReview",
			app:        &RawApplication{},
			wantLabel:  PayLabelNeedsReview,
			wantSource: paySourceUnresolved,
			wantLevel:  ReviewAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveApplicationPayment(tt.app)

			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantLevel, got.Level)

			if tt.wantSource != paySourceRecorded {
				assert.NotEmpty(t, got.Reasons)
			}
		})
	}
}

func TestProjectOrder(t *testing.T) {
	order := &RawOrder{
		ID:        "order-1",
		CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Status:    "paid",
		Payment:   &PaymentInfo{Status: "captured"},
		Items: []OrderLineItem{
			{Name: "Blade V9", ItemKind: ItemKindRacket},
			{Name: "Poly string"},
		},
		TotalAmount:            45000,
		Customer:               Customer{Name: "Jane Park", Email: "jane@example.com"},
		StringingApplicationID: "app-1",
	}
	app := &RawApplication{ID: "app-1", OrderID: "order-1"}

	set := newTestSet([]*RawOrder{order}, nil, []*RawApplication{app})
	it := newTestProjector(set).projectOrder(order)

	assert.Equal(t, KindOrder, it.Kind)
	assert.Equal(t, "Blade V9 (+1 more)", it.Title)
	assert.Equal(t, "captured", it.PaymentLabel)
	assert.Equal(t, FlowRacketBundle, it.Flow)
	assert.Equal(t, KindOrder, it.SettlementAnchor)
	assert.True(t, it.IsIntegrated)
	require.NotNil(t, it.Related)
	assert.Equal(t, KindApplication, it.Related.Kind)
	assert.Equal(t, "app-1", it.Related.ID)
	assert.Equal(t, "/admin/stringing-applications/app-1", it.Related.Link)
	assert.False(t, it.Warn)
}

func TestProjectOrder_IntegratedViaLinkIndex(t *testing.T) {
	// The order has no back-pointer, but an application references it, so
	// the view still treats the pair as integrated.
	order := &RawOrder{ID: "order-1"}
	app := &RawApplication{ID: "app-1", OrderID: "order-1"}

	set := newTestSet([]*RawOrder{order}, nil, []*RawApplication{app})
	it := newTestProjector(set).projectOrder(order)

	assert.True(t, it.IsIntegrated)
	require.NotNil(t, it.Related)
	assert.Equal(t, "app-1", it.Related.ID)
	assert.True(t, it.Warn, "back-pointer defect should surface as a warning")
}

func TestProjectRental_CustomerResolution(t *testing.T) {
	type testCase struct {
		name   string
		rental *RawRental
		users  map[string]*User
		want   Customer
	}

	tests := []testCase{
		{
			name:   "RegisteredUser",
			rental: &RawRental{ID: "rental-1", UserID: "user-1"},
			users:  map[string]*User{"user-1": {ID: "user-1", Name: "Kim Lee", Email: "kim@example.com"}},
			want:   Customer{UserID: "user-1", Name: "Kim Lee", Email: "kim@example.com"},
		},
		{
			name:   "UnknownUserKeepsID",
			rental: &RawRental{ID: "rental-1", UserID: "user-gone"},
			users:  map[string]*User{},
			want:   Customer{UserID: "user-gone"},
		},
		{
			name:   "Guest",
			rental: &RawRental{ID: "rental-1", Guest: &Customer{Name: "Walk In"}},
			users:  map[string]*User{},
			want:   Customer{Name: "Walk In"},
		},
		{
			name:   "NoCustomerAtAll",
			rental: &RawRental{ID: "rental-1"},
			users:  map[string]*User{},
			want:   Customer{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := newTestSet(nil, []*RawRental{tt.rental}, nil)
			set.users = tt.users

			it := newTestProjector(set).projectRental(tt.rental)
			assert.Equal(t, tt.want, it.Customer)
		})
	}
}

func TestProjectRental(t *testing.T) {
	rental := &RawRental{
		ID:          "rental-1",
		CreatedAt:   time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
		Status:      "confirmed",
		RacketName:  "Vcore 98",
		StringPrice: 2000,
		MountingFee: 1500,
		Deposit:     10000,
		Stringing:   &StringingIntent{StringName: "Poly Tour", Tension: "24x23"},
	}

	set := newTestSet(nil, []*RawRental{rental}, nil)
	it := newTestProjector(set).projectRental(rental)

	assert.Equal(t, "Vcore 98 rental", it.Title)
	assert.Equal(t, int64(13500), it.Amount)
	assert.Equal(t, FlowRacketRental, it.Flow)
	assert.Equal(t, KindRental, it.SettlementAnchor)
	assert.False(t, it.IsIntegrated)
	require.NotNil(t, it.Stringing)
	assert.Equal(t, "Poly Tour", it.Stringing.StringName)
	assert.Equal(t, []string{"stringing application not yet submitted"}, it.Pendings)
	assert.False(t, it.Warn)
}

func TestProjectApplication(t *testing.T) {
	order := &RawOrder{ID: "order-1", StringingApplicationID: "app-1"}
	app := &RawApplication{
		ID:            "app-1",
		CreatedAt:     time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC),
		Status:        "received",
		OrderID:       "order-1",
		PaymentSource: "order:order-1",
		StringName:    "Poly Tour",
		Tension:       "25",
	}

	set := newTestSet([]*RawOrder{order}, nil, []*RawApplication{app})
	it := newTestProjector(set).projectApplication(app)

	assert.Equal(t, "stringing: Poly Tour @ 25", it.Title)
	assert.Equal(t, PayLabelWithOrder, it.PaymentLabel)
	assert.Equal(t, paySourceLinked, it.PaymentSource)
	assert.Equal(t, ReviewInfo, it.ReviewLevel)
	assert.Equal(t, KindOrder, it.SettlementAnchor)
	assert.True(t, it.IsIntegrated)
	require.NotNil(t, it.Related)
	assert.Equal(t, "/admin/orders/order-1", it.Related.Link)
	assert.Equal(t, "settled with order:order-1", it.AmountNote)
}

func TestApplicationAnchor(t *testing.T) {
	assert.Equal(t, KindOrder, applicationAnchor(&RawApplication{OrderID: "o"}))
	assert.Equal(t, KindRental, applicationAnchor(&RawApplication{RentalID: "r"}))
	assert.Equal(t, KindApplication, applicationAnchor(&RawApplication{}))
}

func TestApplicationAmountNote(t *testing.T) {
	assert.Equal(t, "covered by package redemption", applicationAmountNote(&RawApplication{PackageRedeemed: true}))
	assert.Equal(t, "settled with rental:r1", applicationAmountNote(&RawApplication{PaymentSource: "rental:r1"}))
	assert.Equal(t, "see service fee fee-1", applicationAmountNote(&RawApplication{ServiceFeeID: "fee-1"}))
	assert.Equal(t, "no charge recorded", applicationAmountNote(&RawApplication{}))
}

func TestTitles(t *testing.T) {
	assert.Equal(t, "order order-1", orderTitle(&RawOrder{ID: "order-1"}))
	assert.Equal(t, "Poly string", orderTitle(&RawOrder{Items: []OrderLineItem{{Name: "Poly string"}}}))
	assert.Equal(t, "racket rental", rentalTitle(&RawRental{}))
	assert.Equal(t, "stringing service", applicationTitle(&RawApplication{}))
	assert.Equal(t, "stringing: Poly Tour", applicationTitle(&RawApplication{StringName: "Poly Tour"}))
}

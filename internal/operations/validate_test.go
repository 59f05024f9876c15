package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newTestSet assembles a working set the way materialize does, without the
// fetch graph.
func newTestSet(orders []*RawOrder, rentals []*RawRental, apps []*RawApplication, drafts ...*RawApplication) *materialized {
	set := &materialized{
		orders:      orders,
		rentals:     rentals,
		apps:        apps,
		ordersByID:  ordersByID(orders),
		rentalsByID: rentalsByID(rentals),
		appsByID:    applicationsByID(apps),
		drafts:      make(map[string]*RawApplication),
		users:       make(map[string]*User),
		index:       buildLinkIndex(apps),
	}

	for _, d := range drafts {
		set.drafts[d.ID] = d
	}

	return set
}

func TestIntegrityChecks_ConsistentLink(t *testing.T) {
	set := newTestSet(
		[]*RawOrder{{ID: "order-1", StringingApplicationID: "app-1"}},
		nil,
		[]*RawApplication{{ID: "app-1", OrderID: "order-1"}},
	)

	warnings, pendings := runIntegrityChecks(set)

	assert.Empty(t, warnings)
	assert.Empty(t, pendings)
}

func TestIntegrityChecks_DuplicateApplications(t *testing.T) {
	set := newTestSet(
		[]*RawOrder{{ID: "order-1", StringingApplicationID: "app-1"}},
		nil,
		[]*RawApplication{
			{ID: "app-1", OrderID: "order-1"},
			{ID: "app-2", OrderID: "order-1"},
		},
	)

	warnings, _ := runIntegrityChecks(set)

	assert.Contains(t, warnings["order:order-1"], "2 applications reference this order")

	// The second application points at an order whose back-pointer names the
	// first; that mismatch is the application's defect.
	assert.Contains(t, warnings["stringing_application:app-2"],
		"mismatched link: order order-1 points to application app-1")
}

func TestIntegrityChecks_MissingBackPointer(t *testing.T) {
	set := newTestSet(
		[]*RawOrder{{ID: "order-1"}},
		nil,
		[]*RawApplication{{ID: "app-1", OrderID: "order-1"}},
	)

	warnings, pendings := runIntegrityChecks(set)

	assert.Contains(t, warnings["order:order-1"],
		"an application references this order but the order has no back-pointer")
	assert.Contains(t, warnings["stringing_application:app-1"],
		"order order-1 has no back-link to this application")
	assert.Empty(t, pendings)
}

func TestIntegrityChecks_MismatchedLinkWarnsBothSides(t *testing.T) {
	set := newTestSet(
		[]*RawOrder{{ID: "order-1", StringingApplicationID: "app-1"}},
		nil,
		[]*RawApplication{{ID: "app-1", OrderID: "order-2"}},
	)

	warnings, _ := runIntegrityChecks(set)

	assert.Contains(t, warnings["order:order-1"],
		"mismatched link: application app-1 does not point back to this order")
	assert.Contains(t, warnings["stringing_application:app-1"],
		"mismatched link: order order-1 points to this application but the application points elsewhere")
	// The application's own forward link also dangles.
	assert.Contains(t, warnings["stringing_application:app-1"],
		"dangling reference: order order-2 not found")
}

func TestIntegrityChecks_OrderPendingRequiresServiceClaim(t *testing.T) {
	set := newTestSet(
		[]*RawOrder{
			{ID: "order-1", StringServiceApplied: true},
			{ID: "order-2"},
		},
		nil,
		nil,
	)

	warnings, pendings := runIntegrityChecks(set)

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"stringing application not yet submitted"}, pendings["order:order-1"])

	// A plain product order is complete without an application.
	assert.Empty(t, pendings["order:order-2"])
}

func TestIntegrityChecks_RentalAlwaysPendingWithoutApplication(t *testing.T) {
	set := newTestSet(
		nil,
		[]*RawRental{{ID: "rental-1"}},
		nil,
	)

	warnings, pendings := runIntegrityChecks(set)

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"stringing application not yet submitted"}, pendings["rental:rental-1"])
}

func TestIntegrityChecks_DraftPointerIsPending(t *testing.T) {
	set := newTestSet(
		[]*RawOrder{{ID: "order-1", StringingApplicationID: "app-1", StringServiceApplied: true}},
		nil,
		nil,
		&RawApplication{ID: "app-1", Status: ApplicationStatusDraft, OrderID: "order-1"},
	)

	warnings, pendings := runIntegrityChecks(set)

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"stringing application exists but is not finalized"}, pendings["order:order-1"])
}

func TestIntegrityChecks_BrokenPointerIsWarning(t *testing.T) {
	set := newTestSet(
		[]*RawOrder{{ID: "order-1", StringingApplicationID: "app-gone", StringServiceApplied: true}},
		[]*RawRental{{ID: "rental-1", StringingApplicationID: "app-gone", StringServiceApplied: true}},
		nil,
	)

	warnings, pendings := runIntegrityChecks(set)

	assert.Contains(t, warnings["order:order-1"], "linked application app-gone not found")
	assert.Contains(t, warnings["rental:rental-1"], "linked application app-gone not found")
	assert.Empty(t, pendings)
}

func TestIntegrityChecks_UnclaimedBrokenPointerIsPending(t *testing.T) {
	// Without a service claim and with no application referencing the order,
	// a pointer to a record we cannot see reads as not-yet-submitted rather
	// than broken.
	set := newTestSet(
		[]*RawOrder{{ID: "order-1", StringingApplicationID: "app-gone"}},
		nil,
		nil,
	)

	warnings, pendings := runIntegrityChecks(set)

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"stringing application not yet submitted"}, pendings["order:order-1"])
}

func TestIntegrityChecks_DanglingApplicationReferences(t *testing.T) {
	set := newTestSet(
		nil,
		nil,
		[]*RawApplication{{ID: "app-1", OrderID: "order-gone", RentalID: "rental-gone"}},
	)

	warnings, pendings := runIntegrityChecks(set)

	assert.Contains(t, warnings["stringing_application:app-1"], "dangling reference: order order-gone not found")
	assert.Contains(t, warnings["stringing_application:app-1"], "dangling reference: rental rental-gone not found")
	assert.Empty(t, pendings)
}

func TestIntegrityChecks_RentalMismatch(t *testing.T) {
	set := newTestSet(
		nil,
		[]*RawRental{{ID: "rental-1", StringingApplicationID: "app-1"}},
		[]*RawApplication{{ID: "app-1", RentalID: "rental-2"}},
	)

	warnings, _ := runIntegrityChecks(set)

	assert.Contains(t, warnings["rental:rental-1"],
		"mismatched link: application app-1 does not point back to this rental")
	assert.Contains(t, warnings["stringing_application:app-1"],
		"mismatched link: rental rental-1 points to this application but the application points elsewhere")
}

func TestIntegrityChecks_ReasonsAreDeduplicated(t *testing.T) {
	v := newIntegrityValidator()

	v.warn(KindOrder, "order-1", "same reason")
	v.warn(KindOrder, "order-1", "same reason")
	v.pending(KindOrder, "order-1", "same reason")
	v.pending(KindOrder, "order-1", "same reason")

	assert.Len(t, v.warnings["order:order-1"], 1)
	assert.Len(t, v.pendings["order:order-1"], 1)
}

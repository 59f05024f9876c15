package operations

import "fmt"

// integrityValidator accumulates warning and pending reasons for the records
// of a single request, keyed by "kind:id". It lives for one request and is
// discarded with it. A warning is a data defect between linked records; a
// pending reason is normal incompleteness and must never be reported as a
// warning.
type integrityValidator struct {
	warnings map[string][]string
	pendings map[string][]string
	seen     map[string]struct{}
}

func newIntegrityValidator() *integrityValidator {
	return &integrityValidator{
		warnings: make(map[string][]string),
		pendings: make(map[string][]string),
		seen:     make(map[string]struct{}),
	}
}

func entityKey(kind Kind, id string) string {
	return string(kind) + ":" + id
}

func (v *integrityValidator) warn(kind Kind, id, reason string) {
	key := entityKey(kind, id)

	mark := key + "\x00w\x00" + reason
	if _, ok := v.seen[mark]; ok {
		return
	}

	v.seen[mark] = struct{}{}
	v.warnings[key] = append(v.warnings[key], reason)
}

func (v *integrityValidator) pending(kind Kind, id, reason string) {
	key := entityKey(kind, id)

	mark := key + "\x00p\x00" + reason
	if _, ok := v.seen[mark]; ok {
		return
	}

	v.seen[mark] = struct{}{}
	v.pendings[key] = append(v.pendings[key], reason)
}

// runIntegrityChecks cross-references every order, rental, and application in
// the working set and returns the warning and pending reasons keyed by
// entity.
func runIntegrityChecks(set *materialized) (warnings, pendings map[string][]string) {
	v := newIntegrityValidator()

	for _, o := range set.orders {
		v.checkOrder(o, set)
	}

	for _, r := range set.rentals {
		v.checkRental(r, set)
	}

	for _, a := range set.apps {
		v.checkApplication(a, set)
	}

	return v.warnings, v.pendings
}

func (v *integrityValidator) checkOrder(o *RawOrder, set *materialized) {
	linkSide := set.index.orderAll[o.ID]
	pointer := o.StringingApplicationID

	if len(linkSide) > 1 {
		v.warn(KindOrder, o.ID, fmt.Sprintf("%d applications reference this order", len(linkSide)))
	}

	if len(linkSide) > 0 && pointer == "" {
		v.warn(KindOrder, o.ID, "an application references this order but the order has no back-pointer")
	}

	if pointer == "" {
		// An order only promises a stringing application when it claims the
		// service was applied; a plain product order is complete as-is.
		if len(linkSide) == 0 && o.StringServiceApplied {
			v.pending(KindOrder, o.ID, "stringing application not yet submitted")
		}

		return
	}

	app, ok := set.appsByID[pointer]
	if !ok {
		if _, isDraft := set.drafts[pointer]; isDraft {
			v.pending(KindOrder, o.ID, "stringing application exists but is not finalized")
			return
		}

		if !o.StringServiceApplied && len(linkSide) == 0 {
			v.pending(KindOrder, o.ID, "stringing application not yet submitted")
			return
		}

		v.warn(KindOrder, o.ID, fmt.Sprintf("linked application %s not found", pointer))

		return
	}

	if app.OrderID != o.ID {
		v.warn(KindOrder, o.ID, fmt.Sprintf("mismatched link: application %s does not point back to this order", app.ID))
		v.warn(KindApplication, app.ID, fmt.Sprintf("mismatched link: order %s points to this application but the application points elsewhere", o.ID))

		return
	}

	if !containsID(linkSide, pointer) {
		v.warn(KindOrder, o.ID, fmt.Sprintf("link index is missing application %s for this order", pointer))
	}
}

func (v *integrityValidator) checkRental(r *RawRental, set *materialized) {
	linkSide := set.index.rentalAll[r.ID]
	pointer := r.StringingApplicationID

	if len(linkSide) > 1 {
		v.warn(KindRental, r.ID, fmt.Sprintf("%d applications reference this rental", len(linkSide)))
	}

	if len(linkSide) > 0 && pointer == "" {
		v.warn(KindRental, r.ID, "an application references this rental but the rental has no back-pointer")
	}

	if pointer == "" {
		// Every rental carries a stringing leg, so a rental no application
		// references is pending regardless of the applied-service claim.
		if len(linkSide) == 0 {
			v.pending(KindRental, r.ID, "stringing application not yet submitted")
		}

		return
	}

	app, ok := set.appsByID[pointer]
	if !ok {
		if _, isDraft := set.drafts[pointer]; isDraft {
			v.pending(KindRental, r.ID, "stringing application exists but is not finalized")
			return
		}

		if !r.StringServiceApplied && len(linkSide) == 0 {
			v.pending(KindRental, r.ID, "stringing application not yet submitted")
			return
		}

		v.warn(KindRental, r.ID, fmt.Sprintf("linked application %s not found", pointer))

		return
	}

	if app.RentalID != r.ID {
		v.warn(KindRental, r.ID, fmt.Sprintf("mismatched link: application %s does not point back to this rental", app.ID))
		v.warn(KindApplication, app.ID, fmt.Sprintf("mismatched link: rental %s points to this application but the application points elsewhere", r.ID))

		return
	}

	if !containsID(linkSide, pointer) {
		v.warn(KindRental, r.ID, fmt.Sprintf("link index is missing application %s for this rental", pointer))
	}
}

func (v *integrityValidator) checkApplication(a *RawApplication, set *materialized) {
	if a.OrderID != "" {
		o, ok := set.ordersByID[a.OrderID]
		switch {
		case !ok:
			v.warn(KindApplication, a.ID, fmt.Sprintf("dangling reference: order %s not found", a.OrderID))
		case o.StringingApplicationID == "":
			v.warn(KindApplication, a.ID, fmt.Sprintf("order %s has no back-link to this application", a.OrderID))
		case o.StringingApplicationID != a.ID:
			v.warn(KindApplication, a.ID, fmt.Sprintf("mismatched link: order %s points to application %s", a.OrderID, o.StringingApplicationID))
		}
	}

	if a.RentalID != "" {
		r, ok := set.rentalsByID[a.RentalID]
		switch {
		case !ok:
			v.warn(KindApplication, a.ID, fmt.Sprintf("dangling reference: rental %s not found", a.RentalID))
		case r.StringingApplicationID == "":
			v.warn(KindApplication, a.ID, fmt.Sprintf("rental %s has no back-link to this application", a.RentalID))
		case r.StringingApplicationID != a.ID:
			v.warn(KindApplication, a.ID, fmt.Sprintf("mismatched link: rental %s points to application %s", a.RentalID, r.StringingApplicationID))
		}
	}
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}

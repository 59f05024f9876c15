package operations

// linkIndex holds the reverse lookups from orders and rentals to the
// applications that reference them. The primary maps keep the first id seen
// and are never overwritten; the all maps accumulate every id so duplicate
// links stay visible to the validator.
type linkIndex struct {
	orderPrimary  map[string]string
	rentalPrimary map[string]string
	orderAll      map[string][]string
	rentalAll     map[string][]string
}

func newLinkIndex() *linkIndex {
	return &linkIndex{
		orderPrimary:  make(map[string]string),
		rentalPrimary: make(map[string]string),
		orderAll:      make(map[string][]string),
		rentalAll:     make(map[string][]string),
	}
}

func (ix *linkIndex) add(app *RawApplication) {
	if app.OrderID != "" {
		if _, ok := ix.orderPrimary[app.OrderID]; !ok {
			ix.orderPrimary[app.OrderID] = app.ID
		}

		ix.orderAll[app.OrderID] = append(ix.orderAll[app.OrderID], app.ID)
	}

	if app.RentalID != "" {
		if _, ok := ix.rentalPrimary[app.RentalID]; !ok {
			ix.rentalPrimary[app.RentalID] = app.ID
		}

		ix.rentalAll[app.RentalID] = append(ix.rentalAll[app.RentalID], app.ID)
	}
}

func buildLinkIndex(apps []*RawApplication) *linkIndex {
	ix := newLinkIndex()
	for _, a := range apps {
		ix.add(a)
	}

	return ix
}

// GroupKey derives the anchor key shared by every group-preserving filter.
// Orders and rentals anchor themselves; an application anchors at its linked
// order or rental when it has one, otherwise at itself.
func GroupKey(it *OperationItem) string {
	switch it.Kind {
	case KindOrder:
		return "order:" + it.ID
	case KindRental:
		return "rental:" + it.ID
	default:
		if it.Related != nil {
			switch it.Related.Kind {
			case KindOrder:
				return "order:" + it.Related.ID
			case KindRental:
				return "rental:" + it.Related.ID
			}
		}

		return "app:" + it.ID
	}
}

package operations

// materialized is the fully fetched and backfilled working set of one
// request. It is assembled once, read by the validator and the projector,
// and discarded with the request.
type materialized struct {
	orders  []*RawOrder
	rentals []*RawRental
	apps    []*RawApplication

	ordersByID  map[string]*RawOrder
	rentalsByID map[string]*RawRental
	appsByID    map[string]*RawApplication
	drafts      map[string]*RawApplication
	users       map[string]*User
	index       *linkIndex
}

// mergeApplications appends backfilled applications that are not already in
// the working set and registers the new ones in the link index. Drafts are
// never merged; they are handled by the draft resolution pass.
func mergeApplications(apps, extra []*RawApplication, ix *linkIndex) []*RawApplication {
	seen := make(map[string]struct{}, len(apps))
	for _, a := range apps {
		seen[a.ID] = struct{}{}
	}

	for _, a := range extra {
		if a.IsDraft() {
			continue
		}

		if _, ok := seen[a.ID]; ok {
			continue
		}

		seen[a.ID] = struct{}{}
		apps = append(apps, a)
		ix.add(a)
	}

	return apps
}

// missingApplicationIDs collects application ids that visible orders and
// rentals point to but the working set does not contain. These are the
// candidates for the targeted draft lookup: either the author has not
// finished the form yet, or the reference is broken.
func missingApplicationIDs(orders []*RawOrder, rentals []*RawRental, appsByID map[string]*RawApplication) []string {
	var ids []string

	seen := make(map[string]struct{})

	add := func(id string) {
		if id == "" {
			return
		}

		if _, ok := appsByID[id]; ok {
			return
		}

		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, o := range orders {
		add(o.StringingApplicationID)
	}

	for _, r := range rentals {
		add(r.StringingApplicationID)
	}

	return ids
}

func ordersByID(orders []*RawOrder) map[string]*RawOrder {
	m := make(map[string]*RawOrder, len(orders))
	for _, o := range orders {
		m[o.ID] = o
	}

	return m
}

func rentalsByID(rentals []*RawRental) map[string]*RawRental {
	m := make(map[string]*RawRental, len(rentals))
	for _, r := range rentals {
		m[r.ID] = r
	}

	return m
}

func applicationsByID(apps []*RawApplication) map[string]*RawApplication {
	m := make(map[string]*RawApplication, len(apps))
	for _, a := range apps {
		m[a.ID] = a
	}

	return m
}

func usersByID(users []*User) map[string]*User {
	m := make(map[string]*User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}

	return m
}

func orderIDs(orders []*RawOrder) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	return ids
}

func rentalIDs(rentals []*RawRental) []string {
	ids := make([]string, len(rentals))
	for i, r := range rentals {
		ids[i] = r.ID
	}

	return ids
}

// rentalUserIDs returns the distinct registered-user ids referenced by the
// rentals; guest rentals contribute nothing.
func rentalUserIDs(rentals []*RawRental) []string {
	var ids []string

	seen := make(map[string]struct{})

	for _, r := range rentals {
		if r.UserID == "" {
			continue
		}

		if _, ok := seen[r.UserID]; ok {
			continue
		}

		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}

	return ids
}

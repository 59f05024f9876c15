package operations

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// ListQuery is the validated, clamped query for one list request.
type ListQuery struct {
	Page       int
	PageSize   int
	Kind       Kind // empty or KindAll matches everything
	Query      string
	WarnOnly   bool
	Flow       Flow // zero means absent
	Integrated *bool
}

// ListResult is one page of the merged operator view. Total counts the
// filtered list before paging.
type ListResult struct {
	Items []*OperationItem
	Total int
}

// runPipeline merges, sorts, filters, and pages the projected items. The
// filter order is fixed: kind, free text, flow, integration, warnings.
func runPipeline(items []*OperationItem, q ListQuery) *ListResult {
	sortByRecency(items)

	items = filterKind(items, q.Kind)
	items = filterText(items, q.Query)

	if q.Flow != 0 {
		flow := q.Flow
		items = filterGroups(items, func(it *OperationItem) bool { return it.Flow == flow })
	}

	if q.Integrated != nil {
		want := *q.Integrated
		items = filterGroups(items, func(it *OperationItem) bool { return it.IsIntegrated == want })
	}

	if q.WarnOnly {
		items = warnedGroups(items)
	}

	return &ListResult{
		Items: pageSlice(items, q.Page, q.PageSize),
		Total: len(items),
	}
}

// sortByRecency orders items newest first. The sort must be stable so that
// ties keep the original fetch order.
func sortByRecency(items []*OperationItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func filterKind(items []*OperationItem, k Kind) []*OperationItem {
	if k == "" || k == KindAll {
		return items
	}

	out := make([]*OperationItem, 0, len(items))

	for _, it := range items {
		if it.Kind == k {
			out = append(out, it)
		}
	}

	return out
}

// filterText keeps items whose id, customer name, customer email, or title
// contains the query, compared case-insensitively via Unicode case folding.
func filterText(items []*OperationItem, query string) []*OperationItem {
	folder := cases.Fold()

	q := folder.String(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]*OperationItem, 0, len(items))

	for _, it := range items {
		hay := folder.String(strings.Join([]string{
			it.ID,
			it.Customer.Name,
			it.Customer.Email,
			it.Title,
		}, "\x00"))

		if strings.Contains(hay, q) {
			out = append(out, it)
		}
	}

	return out
}

// filterGroups is the group-preserving filter: it keeps every item whose
// anchor group contains at least one item satisfying pred, so an order is
// never shown without its linked application or vice versa.
func filterGroups(items []*OperationItem, pred func(*OperationItem) bool) []*OperationItem {
	allowed := make(map[string]struct{})

	for _, it := range items {
		if pred(it) {
			allowed[GroupKey(it)] = struct{}{}
		}
	}

	out := make([]*OperationItem, 0, len(items))

	for _, it := range items {
		if _, ok := allowed[GroupKey(it)]; ok {
			out = append(out, it)
		}
	}

	return out
}

// warnedGroups keeps only groups containing at least one warned item, orders
// the surviving groups by their most recent member, and flattens each group
// by kind priority (order, rental, application).
func warnedGroups(items []*OperationItem) []*OperationItem {
	type group struct {
		newest  time.Time
		members []*OperationItem
	}

	byKey := make(map[string]*group)

	var groups []*group

	for _, it := range items {
		key := GroupKey(it)

		g, ok := byKey[key]
		if !ok {
			g = &group{newest: it.CreatedAt}
			byKey[key] = g
			groups = append(groups, g)
		}

		if it.CreatedAt.After(g.newest) {
			g.newest = it.CreatedAt
		}

		g.members = append(g.members, it)
	}

	var kept []*group

	for _, g := range groups {
		for _, m := range g.members {
			if m.Warn {
				kept = append(kept, g)
				break
			}
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].newest.After(kept[j].newest)
	})

	out := make([]*OperationItem, 0, len(items))

	for _, g := range kept {
		sort.SliceStable(g.members, func(i, j int) bool {
			return kindPriority(g.members[i].Kind) < kindPriority(g.members[j].Kind)
		})

		out = append(out, g.members...)
	}

	return out
}

func pageSlice(items []*OperationItem, page, size int) []*OperationItem {
	if page < 1 {
		page = 1
	}

	if size < 1 {
		size = 1
	}

	start := (page - 1) * size
	if start >= len(items) {
		return []*OperationItem{}
	}

	end := start + size
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}

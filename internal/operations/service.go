package operations

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=operations

// OrderRepository reads the most recent product orders.
type OrderRepository interface {
	FindRecent(ctx context.Context, limit int64) ([]*RawOrder, error)
}

// RentalRepository reads the most recent racket rentals.
type RentalRepository interface {
	FindRecent(ctx context.Context, limit int64) ([]*RawRental, error)
}

// ApplicationRepository reads stringing applications. FindRecent and
// FindLinkedTo exclude drafts; FindDraftsByID reads only drafts, restricted
// to the given ids.
type ApplicationRepository interface {
	FindRecent(ctx context.Context, limit int64) ([]*RawApplication, error)
	FindLinkedTo(ctx context.Context, orderIDs, rentalIDs []string) ([]*RawApplication, error)
	FindDraftsByID(ctx context.Context, ids []string) ([]*RawApplication, error)
}

// UserRepository batch-reads registered users for rental customer snapshots.
type UserRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]*User, error)
}

// DefaultFetchLimit bounds each per-family fetch window.
const DefaultFetchLimit = 300

// Service assembles the merged operator view of orders, rentals, and
// stringing applications. It is read-only and request-scoped: nothing is
// cached or mutated between calls, so identical requests over unchanged data
// return identical results.
type Service struct {
	orders  OrderRepository
	rentals RentalRepository
	apps    ApplicationRepository
	users   UserRepository

	advise     AdviceFunc
	fetchLimit int64
}

func NewService(orders OrderRepository, rentals RentalRepository, apps ApplicationRepository, users UserRepository, advise AdviceFunc) *Service {
	if advise == nil {
		advise = func(AdviceInput) string { return "" }
	}

	return &Service{
		orders:     orders,
		rentals:    rentals,
		apps:       apps,
		users:      users,
		advise:     advise,
		fetchLimit: DefaultFetchLimit,
	}
}

// SetFetchLimit overrides the per-family fetch window. Values below one are
// ignored.
func (s *Service) SetFetchLimit(n int64) {
	if n > 0 {
		s.fetchLimit = n
	}
}

// List materializes the three record families, cross-validates their links,
// projects them into operator view items, and returns the requested page of
// the filtered, merged list.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	set, err := s.materialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	warnings, pendings := runIntegrityChecks(set)

	p := &projector{set: set, warnings: warnings, pendings: pendings, advise: s.advise}

	return runPipeline(p.project(), q), nil
}

// materialize runs the staged fetch graph. Stage 1 fetches the three
// families in parallel; stage 2 backfills linked applications that fell
// outside the fetch window and batch-loads rental users, both depending only
// on stage 1; stage 3 resolves referenced-but-missing ids against drafts.
func (s *Service) materialize(ctx context.Context) (*materialized, error) {
	set := &materialized{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		orders, err := s.orders.FindRecent(gctx, s.fetchLimit)
		if err != nil {
			return fmt.Errorf("fetching orders: %w", err)
		}

		set.orders = orders

		return nil
	})

	g.Go(func() error {
		rentals, err := s.rentals.FindRecent(gctx, s.fetchLimit)
		if err != nil {
			return fmt.Errorf("fetching rentals: %w", err)
		}

		set.rentals = rentals

		return nil
	})

	g.Go(func() error {
		apps, err := s.apps.FindRecent(gctx, s.fetchLimit)
		if err != nil {
			return fmt.Errorf("fetching applications: %w", err)
		}

		set.apps = apps

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	set.index = buildLinkIndex(set.apps)
	set.users = make(map[string]*User)

	g2, gctx2 := errgroup.WithContext(ctx)

	var extra []*RawApplication

	g2.Go(func() error {
		found, err := s.apps.FindLinkedTo(gctx2, orderIDs(set.orders), rentalIDs(set.rentals))
		if err != nil {
			return fmt.Errorf("backfilling applications: %w", err)
		}

		extra = found

		return nil
	})

	g2.Go(func() error {
		ids := rentalUserIDs(set.rentals)
		if len(ids) == 0 {
			return nil
		}

		users, err := s.users.FindByIDs(gctx2, ids)
		if err != nil {
			return fmt.Errorf("fetching users: %w", err)
		}

		set.users = usersByID(users)

		return nil
	})

	if err := g2.Wait(); err != nil {
		return nil, err
	}

	set.apps = mergeApplications(set.apps, extra, set.index)
	set.ordersByID = ordersByID(set.orders)
	set.rentalsByID = rentalsByID(set.rentals)
	set.appsByID = applicationsByID(set.apps)
	set.drafts = make(map[string]*RawApplication)

	missing := missingApplicationIDs(set.orders, set.rentals, set.appsByID)
	if len(missing) > 0 {
		drafts, err := s.apps.FindDraftsByID(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("resolving draft applications: %w", err)
		}

		for _, d := range drafts {
			set.drafts[d.ID] = d
		}
	}

	return set, nil
}

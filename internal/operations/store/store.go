package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courtside/racketops/internal/operations"
)

const (
	ordersCollection       = "orders"
	rentalsCollection      = "rentals"
	applicationsCollection = "stringing_applications"
	usersCollection        = "users"
)

// recentOpts sorts newest first and bounds the window; every listing fetch
// in this package uses it.
func recentOpts(limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
}

// OrderStore reads the order collection.
type OrderStore struct {
	c *mongo.Collection
}

func NewOrders(db *mongo.Database) *OrderStore {
	return &OrderStore{c: db.Collection(ordersCollection)}
}

func (s *OrderStore) FindRecent(ctx context.Context, limit int64) ([]*operations.RawOrder, error) {
	cursor, err := s.c.Find(ctx, bson.M{}, recentOpts(limit))
	if err != nil {
		return nil, fmt.Errorf("finding orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*operations.RawOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decoding orders: %w", err)
	}

	return orders, nil
}

// RentalStore reads the rental collection.
type RentalStore struct {
	c *mongo.Collection
}

func NewRentals(db *mongo.Database) *RentalStore {
	return &RentalStore{c: db.Collection(rentalsCollection)}
}

func (s *RentalStore) FindRecent(ctx context.Context, limit int64) ([]*operations.RawRental, error) {
	cursor, err := s.c.Find(ctx, bson.M{}, recentOpts(limit))
	if err != nil {
		return nil, fmt.Errorf("finding rentals: %w", err)
	}
	defer cursor.Close(ctx)

	var rentals []*operations.RawRental
	if err := cursor.All(ctx, &rentals); err != nil {
		return nil, fmt.Errorf("decoding rentals: %w", err)
	}

	return rentals, nil
}

// ApplicationStore reads the stringing-application collection.
type ApplicationStore struct {
	c *mongo.Collection
}

func NewApplications(db *mongo.Database) *ApplicationStore {
	return &ApplicationStore{c: db.Collection(applicationsCollection)}
}

func notDraft() bson.M {
	return bson.M{"$ne": operations.ApplicationStatusDraft}
}

func (s *ApplicationStore) FindRecent(ctx context.Context, limit int64) ([]*operations.RawApplication, error) {
	filter := bson.M{"status": notDraft()}

	cursor, err := s.c.Find(ctx, filter, recentOpts(limit))
	if err != nil {
		return nil, fmt.Errorf("finding applications: %w", err)
	}
	defer cursor.Close(ctx)

	var apps []*operations.RawApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("decoding applications: %w", err)
	}

	return apps, nil
}

// FindLinkedTo returns the non-draft applications whose forward link names
// one of the given orders or rentals, regardless of creation time. It backs
// the completeness pass that rescues applications outside the recency
// window.
func (s *ApplicationStore) FindLinkedTo(ctx context.Context, orderIDs, rentalIDs []string) ([]*operations.RawApplication, error) {
	clauses := make([]bson.M, 0, 2)

	if len(orderIDs) > 0 {
		clauses = append(clauses, bson.M{"orderId": bson.M{"$in": orderIDs}})
	}

	if len(rentalIDs) > 0 {
		clauses = append(clauses, bson.M{"rentalId": bson.M{"$in": rentalIDs}})
	}

	if len(clauses) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"status": notDraft(),
		"$or":    clauses,
	}

	cursor, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("finding linked applications: %w", err)
	}
	defer cursor.Close(ctx)

	var apps []*operations.RawApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("decoding linked applications: %w", err)
	}

	return apps, nil
}

// FindDraftsByID returns only drafts among the given ids, so callers can
// tell "form not finished" apart from "reference broken".
func (s *ApplicationStore) FindDraftsByID(ctx context.Context, ids []string) ([]*operations.RawApplication, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"_id":    bson.M{"$in": ids},
		"status": operations.ApplicationStatusDraft,
	}

	cursor, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("finding draft applications: %w", err)
	}
	defer cursor.Close(ctx)

	var apps []*operations.RawApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("decoding draft applications: %w", err)
	}

	return apps, nil
}

// UserStore reads the user collection.
type UserStore struct {
	c *mongo.Collection
}

func NewUsers(db *mongo.Database) *UserStore {
	return &UserStore{c: db.Collection(usersCollection)}
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []string) ([]*operations.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	opts := options.Find().SetProjection(bson.M{
		"name":  1,
		"email": 1,
		"phone": 1,
	})

	cursor, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*operations.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	return users, nil
}

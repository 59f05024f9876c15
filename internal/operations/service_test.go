package operations_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/courtside/racketops/internal/operations"
)

type serviceMocks struct {
	orders  *operations.MockOrderRepository
	rentals *operations.MockRentalRepository
	apps    *operations.MockApplicationRepository
	users   *operations.MockUserRepository
}

func newServiceMocks(ctrl *gomock.Controller) serviceMocks {
	return serviceMocks{
		orders:  operations.NewMockOrderRepository(ctrl),
		rentals: operations.NewMockRentalRepository(ctrl),
		apps:    operations.NewMockApplicationRepository(ctrl),
		users:   operations.NewMockUserRepository(ctrl),
	}
}

func (m serviceMocks) service() *operations.Service {
	return operations.NewService(m.orders, m.rentals, m.apps, m.users, nil)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)

	order := &operations.RawOrder{
		ID:                     "order-1",
		CreatedAt:              time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		StringingApplicationID: "app-1",
	}
	rental := &operations.RawRental{
		ID:        "rental-1",
		CreatedAt: time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC),
		UserID:    "user-1",
	}
	app := &operations.RawApplication{
		ID:        "app-1",
		CreatedAt: time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC),
		OrderID:   "order-1",
	}

	m.orders.EXPECT().FindRecent(gomock.Any(), int64(operations.DefaultFetchLimit)).Return([]*operations.RawOrder{order}, nil)
	m.rentals.EXPECT().FindRecent(gomock.Any(), int64(operations.DefaultFetchLimit)).Return([]*operations.RawRental{rental}, nil)
	m.apps.EXPECT().FindRecent(gomock.Any(), int64(operations.DefaultFetchLimit)).Return([]*operations.RawApplication{app}, nil)
	m.apps.EXPECT().FindLinkedTo(gomock.Any(), []string{"order-1"}, []string{"rental-1"}).Return(nil, nil)
	m.users.EXPECT().FindByIDs(gomock.Any(), []string{"user-1"}).
		Return([]*operations.User{{ID: "user-1", Name: "Kim Lee"}}, nil)

	svc := m.service()
	res, err := svc.List(context.Background(), operations.ListQuery{Page: 1, PageSize: 50})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 3)

	// Newest first: the application, then the rental, then the order.
	assert.Equal(t, "app-1", res.Items[0].ID)
	assert.Equal(t, "rental-1", res.Items[1].ID)
	assert.Equal(t, "order-1", res.Items[2].ID)

	// The rental customer comes from the batched user lookup.
	assert.Equal(t, "Kim Lee", res.Items[1].Customer.Name)

	// The consistent order/application pair is integrated and clean.
	assert.True(t, res.Items[2].IsIntegrated)
	assert.False(t, res.Items[2].Warn)
}

func TestService_List_UpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)

	m.orders.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
	m.rentals.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	m.apps.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	svc := m.service()
	res, err := svc.List(context.Background(), operations.ListQuery{Page: 1, PageSize: 50})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, operations.ErrUpstream)
}

func TestService_List_BackfillsLinkedApplications(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)

	order := &operations.RawOrder{
		ID:        "order-1",
		CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	// The application fell outside the recent window; only the targeted
	// lookup finds it.
	linked := &operations.RawApplication{
		ID:        "app-old",
		CreatedAt: time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC),
		OrderID:   "order-1",
	}

	m.orders.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return([]*operations.RawOrder{order}, nil)
	m.rentals.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.apps.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.apps.EXPECT().FindLinkedTo(gomock.Any(), []string{"order-1"}, gomock.Len(0)).
		Return([]*operations.RawApplication{linked}, nil)

	svc := m.service()
	res, err := svc.List(context.Background(), operations.ListQuery{Page: 1, PageSize: 50})

	require.NoError(t, err)
	require.Len(t, res.Items, 2)

	// The backfilled application is listed and makes the order integrated.
	assert.Equal(t, "order-1", res.Items[0].ID)
	assert.True(t, res.Items[0].IsIntegrated)
	assert.Equal(t, "app-old", res.Items[1].ID)
}

func TestService_List_ResolvesDraftPointers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)

	order := &operations.RawOrder{
		ID:                     "order-1",
		CreatedAt:              time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		StringingApplicationID: "app-draft",
		StringServiceApplied:   true,
	}

	m.orders.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return([]*operations.RawOrder{order}, nil)
	m.rentals.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.apps.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.apps.EXPECT().FindLinkedTo(gomock.Any(), []string{"order-1"}, gomock.Len(0)).Return(nil, nil)
	m.apps.EXPECT().FindDraftsByID(gomock.Any(), []string{"app-draft"}).
		Return([]*operations.RawApplication{{ID: "app-draft", Status: operations.ApplicationStatusDraft, OrderID: "order-1"}}, nil)

	svc := m.service()
	res, err := svc.List(context.Background(), operations.ListQuery{Page: 1, PageSize: 50})

	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	// The draft never shows up as its own item; the order is pending, not
	// warned.
	assert.Equal(t, "order-1", res.Items[0].ID)
	assert.False(t, res.Items[0].Warn)
	assert.Equal(t, []string{"stringing application exists but is not finalized"}, res.Items[0].Pendings)
}

func TestService_SetFetchLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)

	m.orders.EXPECT().FindRecent(gomock.Any(), int64(10)).Return(nil, nil)
	m.rentals.EXPECT().FindRecent(gomock.Any(), int64(10)).Return(nil, nil)
	m.apps.EXPECT().FindRecent(gomock.Any(), int64(10)).Return(nil, nil)
	m.apps.EXPECT().FindLinkedTo(gomock.Any(), gomock.Len(0), gomock.Len(0)).Return(nil, nil)

	svc := m.service()
	svc.SetFetchLimit(10)
	svc.SetFetchLimit(0) // ignored

	res, err := svc.List(context.Background(), operations.ListQuery{Page: 1, PageSize: 50})

	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Total)
}

func TestService_List_AdviceIsAttached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)

	order := &operations.RawOrder{ID: "order-1", CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	m.orders.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return([]*operations.RawOrder{order}, nil)
	m.rentals.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.apps.EXPECT().FindRecent(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.apps.EXPECT().FindLinkedTo(gomock.Any(), []string{"order-1"}, gomock.Len(0)).Return(nil, nil)

	svc := operations.NewService(m.orders, m.rentals, m.apps, m.users, func(in operations.AdviceInput) string {
		if in.Kind == operations.KindOrder {
			return "confirm payment"
		}

		return ""
	})

	res, err := svc.List(context.Background(), operations.ListQuery{Page: 1, PageSize: 50})

	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "confirm payment", res.Items[0].NextAction)
}

package establishment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/tripwise/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) list(args mock.Arguments) ([]types.Establishment, error) {
	list, _ := args.Get(0).([]types.Establishment)
	return list, args.Error(1)
}

func (m *MockRepository) ListApproved(ctx context.Context) ([]types.Establishment, error) {
	return m.list(m.Called(ctx))
}

func (m *MockRepository) ListApprovedByIsland(ctx context.Context, islandID int64) ([]types.Establishment, error) {
	return m.list(m.Called(ctx, islandID))
}

func (m *MockRepository) SearchApproved(ctx context.Context, query string) ([]types.Establishment, error) {
	return m.list(m.Called(ctx, query))
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID int64) ([]types.Establishment, error) {
	return m.list(m.Called(ctx, ownerID))
}

func (m *MockRepository) ListPending(ctx context.Context) ([]types.Establishment, error) {
	return m.list(m.Called(ctx))
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*types.Establishment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Establishment), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, ownerID int64, params types.EstablishmentParams) (int64, error) {
	args := m.Called(ctx, ownerID, params)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, params types.EstablishmentParams) error {
	return m.Called(ctx, id, params).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Approve(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Reject(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *MockRepository) CountByState(ctx context.Context) ([]types.CountByKey, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).([]types.CountByKey)
	return counts, args.Error(1)
}

type islandsByID map[int64]types.Island

func (f islandsByID) GetByID(_ context.Context, id int64) (*types.Island, error) {
	if i, ok := f[id]; ok {
		return &i, nil
	}
	return nil, types.ErrNotFound
}

type brokenIslands struct{}

func (brokenIslands) GetByID(context.Context, int64) (*types.Island, error) {
	return nil, errors.New("connection reset")
}

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

var (
	admin      = types.Principal{UserID: 1, Role: types.RoleAdmin}
	owner      = types.Principal{UserID: 7, Role: types.RoleOwner}
	otherOwner = types.Principal{UserID: 8, Role: types.RoleOwner}
	traveller  = types.Principal{UserID: 20, Role: types.RoleUser}
)

func newTestService(repo Repository, cache CatalogInvalidator) *ServiceImpl {
	islands := islandsByID{3: {ID: 3, Name: "Siargao"}}
	return NewEstablishmentService(repo, islands, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListPublicChoosesQuery(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil)
	ctx := context.Background()

	repo.On("ListApproved", mock.Anything).Return(nil, nil).Once()
	list, err := svc.ListPublic(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, []types.Establishment{}, list)

	repo.On("SearchApproved", mock.Anything, "bar").Return([]types.Establishment{{ID: 2, Name: "Kermit"}}, nil).Once()
	list, err = svc.ListPublic(ctx, " bar ")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	repo.AssertExpectations(t)
}

func TestGetEstablishmentVisibility(t *testing.T) {
	ctx := context.Background()
	pending := &types.Establishment{ID: 5, OwnerID: owner.UserID}
	approved := &types.Establishment{ID: 6, OwnerID: owner.UserID, IsApproved: true}

	tests := []struct {
		name    string
		place   *types.Establishment
		viewer  *types.Principal
		wantErr error
	}{
		{"ApprovedAnonymous", approved, nil, nil},
		{"PendingAnonymous", pending, nil, types.ErrNotFound},
		{"PendingTraveller", pending, &traveller, types.ErrNotFound},
		{"PendingOtherOwner", pending, &otherOwner, types.ErrNotFound},
		{"PendingOwner", pending, &owner, nil},
		{"PendingAdmin", pending, &admin, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetByID", mock.Anything, tt.place.ID).Return(tt.place, nil)

			got, err := newTestService(repo, nil).GetEstablishment(ctx, tt.viewer, tt.place.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.place.ID, got.ID)
		})
	}
}

func TestCreateEstablishment(t *testing.T) {
	ctx := context.Background()
	island := int64(3)
	missing := int64(99)

	t.Run("TravellerForbidden", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := newTestService(repo, nil).Create(ctx, traveller, types.EstablishmentParams{Name: "X", Type: "bar"})
		assert.ErrorIs(t, err, types.ErrForbidden)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	invalid := []struct {
		name   string
		params types.EstablishmentParams
	}{
		{"BlankName", types.EstablishmentParams{Name: "  ", Type: "hotel"}},
		{"UnknownType", types.EstablishmentParams{Name: "Spa", Type: "spa"}},
		{"UnknownIsland", types.EstablishmentParams{Name: "Spa", Type: "hotel", IslandID: &missing}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			_, err := newTestService(repo, nil).Create(ctx, owner, tt.params)
			assert.ErrorIs(t, err, types.ErrInvalidInput)
		})
	}

	t.Run("IslandLookupFailure", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewEstablishmentService(repo, brokenIslands{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, err := svc.Create(ctx, owner, types.EstablishmentParams{Name: "Spa", Type: "hotel", IslandID: &island})
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("NormalisesAndSubmits", func(t *testing.T) {
		repo := new(MockRepository)
		want := types.EstablishmentParams{Name: "Kermit", Type: types.EstablishmentHotel, IslandID: &island}
		repo.On("Create", mock.Anything, owner.UserID, want).Return(int64(11), nil).Once()
		repo.On("GetByID", mock.Anything, int64(11)).Return(&types.Establishment{ID: 11, Name: "Kermit", OwnerID: owner.UserID}, nil).Once()

		got, err := newTestService(repo, nil).Create(ctx, owner,
			types.EstablishmentParams{Name: " Kermit ", Type: " HOTEL ", IslandID: &island})
		require.NoError(t, err)
		assert.Equal(t, int64(11), got.ID)
		assert.Equal(t, "pending", got.ModerationState())
		repo.AssertExpectations(t)
	})
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	ctx := context.Background()
	place := &types.Establishment{ID: 5, OwnerID: owner.UserID, IsApproved: true}
	params := types.EstablishmentParams{Name: "Kermit", Type: types.EstablishmentBar}

	t.Run("OtherOwnerForbidden", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(5)).Return(place, nil)
		svc := newTestService(repo, nil)

		_, err := svc.Update(ctx, otherOwner, 5, params)
		assert.ErrorIs(t, err, types.ErrForbidden)
		assert.ErrorIs(t, svc.Delete(ctx, otherOwner, 5), types.ErrForbidden)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("OwnerUpdateInvalidatesCatalog", func(t *testing.T) {
		repo := new(MockRepository)
		cache := &countingInvalidator{}
		repo.On("GetByID", mock.Anything, int64(5)).Return(place, nil)
		repo.On("Update", mock.Anything, int64(5), params).Return(nil).Once()

		_, err := newTestService(repo, cache).Update(ctx, owner, 5, params)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.calls)
		repo.AssertExpectations(t)
	})

	t.Run("AdminDeleteIgnoresCacheFailure", func(t *testing.T) {
		repo := new(MockRepository)
		cache := &countingInvalidator{err: errors.New("redis down")}
		repo.On("GetByID", mock.Anything, int64(5)).Return(place, nil)
		repo.On("Delete", mock.Anything, int64(5)).Return(nil).Once()

		require.NoError(t, newTestService(repo, cache).Delete(ctx, admin, 5))
		assert.Equal(t, 1, cache.calls)
	})

	t.Run("MissingPlace", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(404)).Return(nil, types.ErrNotFound)
		assert.ErrorIs(t, newTestService(repo, nil).Delete(ctx, owner, 404), types.ErrNotFound)
	})
}

func TestModeration(t *testing.T) {
	ctx := context.Background()

	t.Run("OnlyAdmins", func(t *testing.T) {
		svc := newTestService(new(MockRepository), nil)
		_, err := svc.ListPending(ctx, owner)
		assert.ErrorIs(t, err, types.ErrForbidden)
		assert.ErrorIs(t, svc.Approve(ctx, owner, 5), types.ErrForbidden)
		assert.ErrorIs(t, svc.Reject(ctx, owner, 5, "spam"), types.ErrForbidden)
	})

	t.Run("RejectNeedsReason", func(t *testing.T) {
		repo := new(MockRepository)
		assert.ErrorIs(t, newTestService(repo, nil).Reject(ctx, admin, 5, "  "), types.ErrInvalidInput)
		repo.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ApproveAndReject", func(t *testing.T) {
		repo := new(MockRepository)
		cache := &countingInvalidator{}
		repo.On("Approve", mock.Anything, int64(5)).Return(nil).Once()
		repo.On("Reject", mock.Anything, int64(6), "Duplicate listing").Return(nil).Once()
		svc := newTestService(repo, cache)

		require.NoError(t, svc.Approve(ctx, admin, 5))
		require.NoError(t, svc.Reject(ctx, admin, 6, " Duplicate listing "))
		assert.Equal(t, 2, cache.calls)
		repo.AssertExpectations(t)
	})

	t.Run("ApproveMissing", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Approve", mock.Anything, int64(404)).Return(types.ErrNotFound).Once()
		assert.ErrorIs(t, newTestService(repo, nil).Approve(ctx, admin, 404), types.ErrNotFound)
	})

	t.Run("PendingNeverNil", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListPending", mock.Anything).Return(nil, nil).Once()
		list, err := newTestService(repo, nil).ListPending(ctx, admin)
		require.NoError(t, err)
		assert.NotNil(t, list)
	})
}

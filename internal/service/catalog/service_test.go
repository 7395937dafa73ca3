package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"service-admin/internal/domain/catalog"
	xerrors "service-admin/internal/pkg/errors"
)

type stubTx struct {
	pgx.Tx
}

func (stubTx) Commit(ctx context.Context) error   { return nil }
func (stubTx) Rollback(ctx context.Context) error { return nil }

type fakeDB struct{}

func (fakeDB) BeginTx(ctx context.Context) (pgx.Tx, error) { return stubTx{}, nil }

type fakeServiceStore struct {
	services map[int64]*catalog.Service
	nextID   int64
}

func newFakeServiceStore() *fakeServiceStore {
	return &fakeServiceStore{services: make(map[int64]*catalog.Service), nextID: 1}
}

func (f *fakeServiceStore) Create(ctx context.Context, s *catalog.Service) error {
	s.ID = f.nextID
	f.nextID++
	cp := *s
	f.services[s.ID] = &cp
	return nil
}

func (f *fakeServiceStore) FindByID(ctx context.Context, id int64) (*catalog.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeServiceStore) List(ctx context.Context, filters catalog.ServiceListFilters) (*catalog.ServiceListResponse, error) {
	return &catalog.ServiceListResponse{}, nil
}

func (f *fakeServiceStore) Update(ctx context.Context, s *catalog.Service) error {
	if _, ok := f.services[s.ID]; !ok {
		return xerrors.ErrNotFound
	}
	cp := *s
	f.services[s.ID] = &cp
	return nil
}

func (f *fakeServiceStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.services[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(f.services, id)
	return nil
}

type fakeCategoryStore struct{}

func (fakeCategoryStore) Create(ctx context.Context, c *catalog.Category) error { return nil }
func (fakeCategoryStore) FindByID(ctx context.Context, id int64) (*catalog.Category, error) {
	return nil, xerrors.ErrNotFound
}
func (fakeCategoryStore) ListAll(ctx context.Context) ([]catalog.Category, error) { return nil, nil }
func (fakeCategoryStore) Update(ctx context.Context, c *catalog.Category) error   { return nil }
func (fakeCategoryStore) Delete(ctx context.Context, id int64) error              { return nil }

type fakePriceStore struct {
	prices map[int64]*catalog.Price
	nextID int64
}

func newFakePriceStore() *fakePriceStore {
	return &fakePriceStore{prices: make(map[int64]*catalog.Price), nextID: 1}
}

func (f *fakePriceStore) CreateWithTx(ctx context.Context, tx pgx.Tx, p *catalog.Price) error {
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	cp := *p
	f.prices[p.ID] = &cp
	return nil
}

func (f *fakePriceStore) FindByID(ctx context.Context, id int64) (*catalog.Price, error) {
	p, ok := f.prices[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePriceStore) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*catalog.Price, error) {
	return f.FindByID(ctx, id)
}

func (f *fakePriceStore) ListByService(ctx context.Context, serviceID int64) ([]catalog.Price, error) {
	out := []catalog.Price{}
	for id := int64(1); id < f.nextID; id++ {
		if p, ok := f.prices[id]; ok && p.ServiceID == serviceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePriceStore) CountByServiceWithTx(ctx context.Context, tx pgx.Tx, serviceID int64) (int64, error) {
	var count int64
	for _, p := range f.prices {
		if p.ServiceID == serviceID {
			count++
		}
	}
	return count, nil
}

func (f *fakePriceStore) UpdateWithTx(ctx context.Context, tx pgx.Tx, p *catalog.Price) error {
	if _, ok := f.prices[p.ID]; !ok {
		return xerrors.ErrNotFound
	}
	cp := *p
	f.prices[p.ID] = &cp
	return nil
}

func (f *fakePriceStore) ClearDefaultWithTx(ctx context.Context, tx pgx.Tx, serviceID int64) error {
	for _, p := range f.prices {
		if p.ServiceID == serviceID {
			p.IsDefault = false
		}
	}
	return nil
}

func (f *fakePriceStore) SetDefaultWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	p, ok := f.prices[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	p.IsDefault = true
	return nil
}

func (f *fakePriceStore) FindFirstByServiceWithTx(ctx context.Context, tx pgx.Tx, serviceID, excludeID int64) (*catalog.Price, error) {
	for id := int64(1); id < f.nextID; id++ {
		if p, ok := f.prices[id]; ok && p.ServiceID == serviceID && p.ID != excludeID && p.Enable {
			cp := *p
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakePriceStore) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, ok := f.prices[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(f.prices, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeServiceStore, *fakePriceStore, int64) {
	t.Helper()
	services := newFakeServiceStore()
	prices := newFakePriceStore()
	svc := NewService(services, fakeCategoryStore{}, prices, fakeDB{}, zap.NewNop())

	created, err := svc.CreateService(context.Background(), &catalog.CreateServiceRequest{
		Title:  "VPN",
		Slug:   "vpn",
		Enable: true,
	})
	require.NoError(t, err)

	return svc, services, prices, created.ID
}

func TestCreatePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("first price becomes the default", func(t *testing.T) {
		svc, _, _, serviceID := newTestService(t)

		p, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Standard", Price: 9900, Enable: true,
		})
		require.NoError(t, err)
		assert.True(t, p.IsDefault)
	})

	t.Run("new default demotes the previous one", func(t *testing.T) {
		svc, _, prices, serviceID := newTestService(t)

		first, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Standard", Price: 9900, Enable: true,
		})
		require.NoError(t, err)

		second, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Promo", Price: 4900, IsDefault: true, Enable: true,
		})
		require.NoError(t, err)
		assert.True(t, second.IsDefault)

		got, err := prices.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, got.IsDefault)
	})

	t.Run("unknown service is rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.CreatePrice(ctx, 999, &catalog.CreatePriceRequest{Name: "X", Price: 1})
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})
}

func TestDeletePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("last price option cannot be deleted", func(t *testing.T) {
		svc, _, _, serviceID := newTestService(t)

		only, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Standard", Price: 9900, Enable: true,
		})
		require.NoError(t, err)

		err = svc.DeletePrice(ctx, only.ID)
		assert.ErrorIs(t, err, xerrors.ErrLastPriceOption)
	})

	t.Run("deleting the default promotes the next option", func(t *testing.T) {
		svc, _, prices, serviceID := newTestService(t)

		def, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Standard", Price: 9900, Enable: true,
		})
		require.NoError(t, err)
		other, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Promo", Price: 4900, Enable: true,
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeletePrice(ctx, def.ID))

		got, err := prices.FindByID(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, got.IsDefault)

		_, err = prices.FindByID(ctx, def.ID)
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})

	t.Run("promotion skips disabled options", func(t *testing.T) {
		svc, _, prices, serviceID := newTestService(t)

		def, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Standard", Price: 9900, Enable: true,
		})
		require.NoError(t, err)
		disabled, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Legacy", Price: 2900,
		})
		require.NoError(t, err)
		enabled, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Promo", Price: 4900, Enable: true,
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeletePrice(ctx, def.ID))

		got, err := prices.FindByID(ctx, disabled.ID)
		require.NoError(t, err)
		assert.False(t, got.IsDefault)

		got, err = prices.FindByID(ctx, enabled.ID)
		require.NoError(t, err)
		assert.True(t, got.IsDefault)
	})

	t.Run("no enabled option leaves the service without a default", func(t *testing.T) {
		svc, _, prices, serviceID := newTestService(t)

		def, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Standard", Price: 9900, Enable: true,
		})
		require.NoError(t, err)
		disabled, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Legacy", Price: 2900,
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeletePrice(ctx, def.ID))

		got, err := prices.FindByID(ctx, disabled.ID)
		require.NoError(t, err)
		assert.False(t, got.IsDefault)
	})

	t.Run("deleting a non-default keeps the default in place", func(t *testing.T) {
		svc, _, prices, serviceID := newTestService(t)

		def, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Standard", Price: 9900, Enable: true,
		})
		require.NoError(t, err)
		other, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Promo", Price: 4900, Enable: true,
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeletePrice(ctx, other.ID))

		got, err := prices.FindByID(ctx, def.ID)
		require.NoError(t, err)
		assert.True(t, got.IsDefault)
	})
}

func TestUpdatePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("switching the default clears the old one", func(t *testing.T) {
		svc, _, prices, serviceID := newTestService(t)

		def, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Standard", Price: 9900, Enable: true,
		})
		require.NoError(t, err)
		other, err := svc.CreatePrice(ctx, serviceID, &catalog.CreatePriceRequest{
			Name: "Promo", Price: 4900, Enable: true,
		})
		require.NoError(t, err)

		makeDefault := true
		updated, err := svc.UpdatePrice(ctx, other.ID, &catalog.UpdatePriceRequest{
			IsDefault: &makeDefault,
		})
		require.NoError(t, err)
		assert.True(t, updated.IsDefault)

		got, err := prices.FindByID(ctx, def.ID)
		require.NoError(t, err)
		assert.False(t, got.IsDefault)
	})
}

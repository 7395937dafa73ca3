package planadmin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"service-admin/internal/domain/plan"
	xerrors "service-admin/internal/pkg/errors"
)

type fakePlanStore struct {
	plans  map[int64]*plan.Plan
	nextID int64
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: make(map[int64]*plan.Plan), nextID: 1}
}

func (f *fakePlanStore) Create(ctx context.Context, p *plan.Plan) error {
	p.ID = f.nextID
	f.nextID++
	cp := *p
	f.plans[p.ID] = &cp
	return nil
}

func (f *fakePlanStore) FindByID(ctx context.Context, id int64) (*plan.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, xerrors.ErrPlanNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlanStore) List(ctx context.Context, filters plan.ListFilters) (*plan.ListResponse, error) {
	resp := &plan.ListResponse{}
	for id := int64(1); id < f.nextID; id++ {
		p, ok := f.plans[id]
		if !ok {
			continue
		}
		if filters.ServiceID != nil && p.ServiceID != *filters.ServiceID {
			continue
		}
		if filters.IsActive != nil && p.IsActive != *filters.IsActive {
			continue
		}
		resp.Plans = append(resp.Plans, *p)
	}
	resp.Total = int64(len(resp.Plans))
	return resp, nil
}

func (f *fakePlanStore) Update(ctx context.Context, p *plan.Plan) error {
	if _, ok := f.plans[p.ID]; !ok {
		return xerrors.ErrPlanNotFound
	}
	cp := *p
	f.plans[p.ID] = &cp
	return nil
}

func (f *fakePlanStore) Activate(ctx context.Context, id int64) error {
	p, ok := f.plans[id]
	if !ok {
		return xerrors.ErrPlanNotFound
	}
	p.IsActive = true
	return nil
}

func (f *fakePlanStore) Deactivate(ctx context.Context, id int64) error {
	p, ok := f.plans[id]
	if !ok {
		return xerrors.ErrPlanNotFound
	}
	p.IsActive = false
	return nil
}

func newTestService() (*Service, *fakePlanStore) {
	store := newFakePlanStore()
	return NewService(store, zap.NewNop()), store
}

func createReq() *plan.CreatePlanRequest {
	return &plan.CreatePlanRequest{
		ServiceID:        10,
		PlanCode:         "basic",
		PlanName:         "Basic",
		MonthlyPrice:     10000,
		MonthlyAvailable: true,
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("new plans start active with empty paths", func(t *testing.T) {
		svc, store := newTestService()

		p, err := svc.Create(ctx, createReq())
		require.NoError(t, err)

		assert.True(t, p.IsActive)
		assert.NotNil(t, p.UpgradePaths)
		assert.Empty(t, p.UpgradePaths)
		assert.NotNil(t, p.DowngradePaths)
		assert.Empty(t, p.DowngradePaths)
		assert.False(t, p.Description.Valid)

		got, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "basic", got.PlanCode)
	})

	t.Run("description is stored when given", func(t *testing.T) {
		svc, _ := newTestService()

		req := createReq()
		req.Description = "Entry plan"
		p, err := svc.Create(ctx, req)
		require.NoError(t, err)

		require.True(t, p.Description.Valid)
		assert.Equal(t, "Entry plan", p.Description.String)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("only the supplied fields change", func(t *testing.T) {
		svc, store := newTestService()

		p, err := svc.Create(ctx, createReq())
		require.NoError(t, err)

		name := "Basic+"
		price := 12000.0
		_, err = svc.Update(ctx, p.ID, &plan.UpdatePlanRequest{
			PlanName:     &name,
			MonthlyPrice: &price,
		})
		require.NoError(t, err)

		got, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Basic+", got.PlanName)
		assert.Equal(t, 12000.0, got.MonthlyPrice)
		assert.Equal(t, "basic", got.PlanCode)
		assert.True(t, got.MonthlyAvailable)
	})

	t.Run("empty description clears the stored one", func(t *testing.T) {
		svc, store := newTestService()

		req := createReq()
		req.Description = "Entry plan"
		p, err := svc.Create(ctx, req)
		require.NoError(t, err)

		empty := ""
		_, err = svc.Update(ctx, p.ID, &plan.UpdatePlanRequest{Description: &empty})
		require.NoError(t, err)

		got, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, got.Description.Valid)
	})

	t.Run("unknown plan is rejected", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Update(ctx, 99, &plan.UpdatePlanRequest{})
		assert.ErrorIs(t, err, xerrors.ErrPlanNotFound)
	})
}

func TestActivateDeactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("delete deactivates and activate restores", func(t *testing.T) {
		svc, store := newTestService()

		p, err := svc.Create(ctx, createReq())
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, p.ID))
		got, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		require.NoError(t, svc.Activate(ctx, p.ID))
		got, err = store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
	})

	t.Run("unknown plan is rejected", func(t *testing.T) {
		svc, _ := newTestService()

		assert.ErrorIs(t, svc.Activate(ctx, 99), xerrors.ErrPlanNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, 99), xerrors.ErrPlanNotFound)
	})
}

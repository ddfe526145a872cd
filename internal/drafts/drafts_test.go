package drafts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftPlan(t *testing.T) *planner.AssetPlan {
	t.Helper()
	profile := planner.DefaultProfiles()[planner.ModeCreate]
	plan, err := planner.NewAssetPlan(planner.ModeCreate, planner.CategoryHousing, decimal.NewFromInt(1000000), profile)
	require.NoError(t, err)
	plan.SetName("Flat")
	_, err = plan.AddDownPayment(decimal.NewFromInt(250000), "savings")
	require.NoError(t, err)
	return plan
}

func newRedisStore(t *testing.T, opts ...RedisOption) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, nil, opts...), mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			plan := draftPlan(t)

			_, err := store.Load(ctx, "session-1")
			assert.ErrorIs(t, err, ErrDraftNotFound)

			require.NoError(t, store.Save(ctx, "session-1", plan))

			loaded, err := store.Load(ctx, "session-1")
			require.NoError(t, err)
			assert.Equal(t, "Flat", loaded.Name)
			assert.True(t, loaded.Target().Equal(plan.Target()))
			assert.True(t, loaded.DownPaymentTotal().Equal(decimal.NewFromInt(250000)))
			assert.Equal(t, plan.Reconciliation().State, loaded.Reconciliation().State)

			require.NoError(t, store.Delete(ctx, "session-1"))
			_, err = store.Load(ctx, "session-1")
			assert.ErrorIs(t, err, ErrDraftNotFound)
		})
	}
}

func TestMemoryStoreCopiesDrafts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	plan := draftPlan(t)

	require.NoError(t, store.Save(ctx, "s", plan))
	plan.SetName("Changed")

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Flat", loaded.Name)
}

func TestRedisStoreTTLAndPrefix(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, WithPrefix("test:"), WithTTL(time.Hour))

	require.NoError(t, store.Save(ctx, "s1", draftPlan(t)))
	assert.True(t, mr.Exists("test:s1"))
	assert.Equal(t, time.Hour, mr.TTL("test:s1"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	err := store.Save(context.Background(), "s1", draftPlan(t))
	assert.ErrorIs(t, err, planner.ErrUpstreamUnavailable)
}

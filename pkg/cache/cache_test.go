package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/farewise/fare-compare/pkg/redis"
)

type cachedLocation struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := &redisclient.Client{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	return NewManager(client), mr
}

func TestSetAndGet(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	want := cachedLocation{Address: "India Gate, Delhi", Latitude: 28.6129, Longitude: 77.2295}
	require.NoError(t, m.Set(ctx, "geocode:india gate", want, time.Hour))

	var got cachedLocation
	require.NoError(t, m.Get(ctx, "geocode:india gate", &got))
	assert.Equal(t, want, got)
}

func TestGetMissingKey(t *testing.T) {
	m, _ := newTestManager(t)

	var got cachedLocation
	err := m.Get(context.Background(), "geocode:nothing", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestExpiredKeyReportsMiss(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "geocode:cp", cachedLocation{Address: "CP"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var got cachedLocation
	assert.ErrorIs(t, m.Get(ctx, "geocode:cp", &got), ErrMiss)
}

func TestNilManagerIsSafe(t *testing.T) {
	var m *Manager
	ctx := context.Background()

	var got cachedLocation
	assert.ErrorIs(t, m.Get(ctx, "any", &got), ErrMiss)
	assert.NoError(t, m.Set(ctx, "any", got, time.Hour))
	assert.NoError(t, m.Delete(ctx, "any"))
}

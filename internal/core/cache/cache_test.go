package cache

import (
	"context"
	"testing"
	"time"

	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipe(name string) *extract.ExtractedRecipe {
	amount := extract.FractionAmount("1", "1", "2")
	prep := 15
	return &extract.ExtractedRecipe{
		Name:     name,
		Source:   "https://example.test/" + name,
		PrepTime: &prep,
		Servings: &extract.Serving{Count: extract.RangeAmount("4", "6"), Unit: "people"},
		Ingredients: []extract.IngredientSection{{
			SectionID: "s1",
			Name:      extract.DefaultIngredientSectionName,
			Items:     []extract.IngredientItem{{ID: "i1", Name: "flour", Unit: "cup", Amount: &amount}},
		}},
		Method: []extract.MethodSection{},
		Tags:   []extract.TagReference{{TagID: "meal-dinner"}},
	}
}

func memoryConfig(size int) config.CacheConfig {
	return config.CacheConfig{
		Enabled: true,
		Backend: config.CacheBackendMemory,
		MaxSize: size,
		TTL:     time.Hour,
	}
}

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager(memoryConfig(10))
	defer m.Close()
	ctx := context.Background()

	_, err := m.Get(ctx, "https://example.test/soup")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	want := sampleRecipe("soup")
	require.NoError(t, m.Set(ctx, "https://example.test/soup", want))

	got, err := m.Get(ctx, "https://example.test/soup")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NotSame(t, want, got)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 1, stats["size"])
}

func TestManagerExpiry(t *testing.T) {
	m := NewManager(memoryConfig(10))
	defer m.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "u", sampleRecipe("a")))
	now = now.Add(2 * time.Hour)

	_, err := m.Get(ctx, "u")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, 0, m.Stats()["size"])
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m := NewManager(memoryConfig(2))
	defer m.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	require.NoError(t, m.Set(ctx, "a", sampleRecipe("a")))
	require.NoError(t, m.Set(ctx, "b", sampleRecipe("b")))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", sampleRecipe("c")))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	m := NewManager(memoryConfig(1))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", sampleRecipe("a")))
	require.NoError(t, m.Set(ctx, "a", sampleRecipe("a2")))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Name)
}

func TestManagerCloseIsIdempotent(t *testing.T) {
	cfg := memoryConfig(1)
	cfg.CleanupInterval = time.Millisecond
	m := NewManager(cfg)
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

func TestRedisService(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.CacheConfig{
		Enabled:   true,
		Backend:   config.CacheBackendRedis,
		RedisAddr: mr.Addr(),
		TTL:       time.Minute,
	}

	s, err := NewService(cfg)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.Get(ctx, "https://example.test/pie")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	want := sampleRecipe("pie")
	require.NoError(t, s.Set(ctx, "https://example.test/pie", want))
	assert.True(t, mr.Exists(Key("https://example.test/pie")))
	assert.Equal(t, time.Minute, mr.TTL(Key("https://example.test/pie")))

	got, err := s.Get(ctx, "https://example.test/pie")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, "https://example.test/pie")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	stats := s.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(2), stats["misses"])
}

func TestRedisServiceCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewService(config.CacheConfig{Enabled: true, RedisAddr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, mr.Set(Key("u"), "not json"))
	_, err = s.Get(context.Background(), "u")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrCacheMiss)
}

func TestNewSelectsBackend(t *testing.T) {
	c, err := New(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(memoryConfig(5))
	require.NoError(t, err)
	assert.IsType(t, &CacheManager{}, c)
	c.Close()

	mr := miniredis.RunT(t)
	c, err = New(config.CacheConfig{Enabled: true, Backend: config.CacheBackendRedis, RedisAddr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &Service{}, c)
	c.Close()

	_, err = New(config.CacheConfig{Enabled: true, Backend: "memcached"})
	assert.Error(t, err)
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key("https://example.test/a"), Key("https://example.test/a"))
	assert.NotEqual(t, Key("https://example.test/a"), Key("https://example.test/b"))
	assert.Contains(t, Key("x"), keyPrefix)
}

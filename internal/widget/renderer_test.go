package widget

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-notifier/internal/common/config"
	"campus-notifier/internal/common/logger"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache := NewRedisCache(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })
	return mr, cache
}

func TestRenderer_FromRedis(t *testing.T) {
	mr, cache := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Ping(ctx))
	require.NoError(t, cache.Set(ctx, KeyBusRealtime, `{"routes":[{"name":"A","nextTime":"08:00","minutesUntil":3}]}`))
	mr.Set(KeyTodaySchedule, `{"weekday":"月曜日","classes":[{"period":1,"subject":"物理"}]}`)

	r := NewRenderer(cache, logger.NewTestLogger(t))

	bus := r.Bus(ctx)
	assert.False(t, bus.Empty)
	assert.Equal(t, "08:00 (3分後)", bus.Text["route_1_time"])

	today := r.Today(ctx)
	assert.False(t, today.Empty)
	assert.Equal(t, "1限", today.Lists["classes_container"][0].Text["text_period"])

	weekly := r.Weekly(ctx)
	assert.True(t, weekly.Empty)
}

func TestRenderer_RenderAll(t *testing.T) {
	_, cache := setupTestRedis(t)
	r := NewRenderer(cache, logger.NewNoOpLogger())

	views := r.RenderAll(context.Background())
	require.Len(t, views, 3)
	for _, key := range Keys() {
		assert.True(t, views[key].Empty, key)
	}
}

func TestRenderer_UnknownKey(t *testing.T) {
	r := NewRenderer(MapCache{}, logger.NewNoOpLogger())
	assert.Nil(t, r.Render(context.Background(), "lunch_menu"))
}

func TestRenderer_MalformedCacheValue(t *testing.T) {
	r := NewRenderer(MapCache{KeyBusRealtime: "{not json"}, logger.NewTestLogger(t))

	v := r.Bus(context.Background())
	assert.True(t, v.Empty)
	assert.Equal(t, "データなし", v.Text["bus_footer"])
}

func TestRedisCache_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(mock redismock.ClientMock)
		wantValue string
		wantErr   bool
	}{
		{
			name: "missing key is empty",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(KeyTodaySchedule).RedisNil()
			},
		},
		{
			name: "stored value",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(KeyTodaySchedule).SetVal(`{"classes":[]}`)
			},
			wantValue: `{"classes":[]}`,
		},
		{
			name: "connection error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(KeyTodaySchedule).SetErr(stderrors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			tt.setup(mock)

			got, err := NewRedisCacheFromClient(client).Get(context.Background(), KeyTodaySchedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantValue, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRenderer_CacheErrorShowsEmptyState(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(KeyTodaySchedule).SetErr(redis.ErrClosed)

	r := NewRenderer(NewRedisCacheFromClient(client), logger.NewTestLogger(t))
	v := r.Today(context.Background())

	assert.True(t, v.Empty)
	assert.True(t, v.Shown("empty_message"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

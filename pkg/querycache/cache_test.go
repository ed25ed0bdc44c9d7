package querycache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kitchensync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	// 清理协程关闭，闲置回收单独测
	return NewWithOptions(time.Minute, 10*time.Minute, 0, 1)
}

func countingFetcher(calls *int32, value string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestFetchFreshHit(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	var calls int32
	key := NewKey("products", "page=1")

	for i := 0; i < 3; i++ {
		got, err := FetchAs(context.Background(), s, key, countingFetcher(&calls, "v1"))
		require.NoError(t, err)
		assert.Equal(t, "v1", got)
	}
	// 新鲜期内只拉取一次
	assert.Equal(t, int32(1), calls)
}

func TestFetchDistinctParamsDistinctEntries(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	var calls int32
	_, err := FetchAs(context.Background(), s, NewKey("products", "page=1"), countingFetcher(&calls, "p1"))
	require.NoError(t, err)
	_, err = FetchAs(context.Background(), s, NewKey("products", "page=2"), countingFetcher(&calls, "p2"))
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls)
	assert.Equal(t, 2, s.Count())
}

func TestFetchStaleRefetches(t *testing.T) {
	s := NewWithOptions(30*time.Millisecond, time.Minute, 0, 0)
	defer s.Close()

	var calls int32
	key := NewKey("products")

	_, err := FetchAs(context.Background(), s, key, countingFetcher(&calls, "v1"))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.True(t, s.Stale(key))

	got, err := FetchAs(context.Background(), s, key, countingFetcher(&calls, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
	assert.Equal(t, int32(2), calls)
}

func TestFetchRetriesOnce(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	var calls int32
	got, err := FetchAs(context.Background(), s, NewKey("products"), func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", errors.ErrServer
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), calls)
}

func TestFetchRetryExhausted(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	var calls int32
	_, err := FetchAs(context.Background(), s, NewKey("products"), func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.ErrServer
	})
	require.Error(t, err)
	assert.Equal(t, int32(2), calls) // 一次原始 + 一次重试
	// 失败不写缓存
	assert.Zero(t, s.Count())
}

func TestInvalidatePrefix(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	var productCalls, userCalls int32
	ctx := context.Background()

	_, err := FetchAs(ctx, s, NewKey("products", "page=1"), countingFetcher(&productCalls, "p"))
	require.NoError(t, err)
	_, err = FetchAs(ctx, s, NewKey("products", "page=2"), countingFetcher(&productCalls, "p"))
	require.NoError(t, err)
	_, err = FetchAs(ctx, s, NewKey("users"), countingFetcher(&userCalls, "u"))
	require.NoError(t, err)

	// 前缀失效命中products下所有key，users不受影响
	n := s.Invalidate("products")
	assert.Equal(t, 2, n)
	assert.True(t, s.Stale(NewKey("products", "page=1")))
	assert.True(t, s.Stale(NewKey("products", "page=2")))
	assert.False(t, s.Stale(NewKey("users")))

	_, err = FetchAs(ctx, s, NewKey("products", "page=1"), countingFetcher(&productCalls, "p"))
	require.NoError(t, err)
	_, err = FetchAs(ctx, s, NewKey("users"), countingFetcher(&userCalls, "u"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), productCalls)
	assert.Equal(t, int32(1), userCalls)
}

func TestInvalidateDoesNotMatchBareSubstring(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	var calls int32
	ctx := context.Background()
	_, err := FetchAs(ctx, s, NewKey("role-permissions", "roleId=1"), countingFetcher(&calls, "x"))
	require.NoError(t, err)

	// "role" 不是 "role-permissions" 的前缀段
	s.Invalidate("role")
	assert.False(t, s.Stale(NewKey("role-permissions", "roleId=1")))
}

func TestStaleInFlightResponseNotCached(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	ctx := context.Background()
	key := NewKey("products")

	// 先写入一条并标脏，让慢请求走重新拉取路径
	var seed int32
	_, err := FetchAs(ctx, s, key, countingFetcher(&seed, "seed"))
	require.NoError(t, err)
	s.Invalidate("products")

	started := make(chan struct{})
	proceed := make(chan struct{})

	// 慢请求在途时key再次被失效，响应返回给调用方但不写入缓存
	slowDone := make(chan string, 1)
	go func() {
		got, err := FetchAs(ctx, s, key, func(ctx context.Context) (string, error) {
			close(started)
			<-proceed
			return "stale", nil
		})
		if err == nil {
			slowDone <- got
		}
	}()

	<-started
	s.Invalidate("products")
	close(proceed)

	assert.Equal(t, "stale", <-slowDone)
	assert.True(t, s.Stale(key))

	var calls int32
	got, err := FetchAs(ctx, s, key, countingFetcher(&calls, "fresh"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestMutateInvalidates(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	ctx := context.Background()
	var calls int32
	_, err := FetchAs(ctx, s, NewKey("products", "page=1"), countingFetcher(&calls, "p"))
	require.NoError(t, err)

	err = s.Mutate(ctx, func(ctx context.Context) error { return nil }, "products")
	require.NoError(t, err)
	assert.True(t, s.Stale(NewKey("products", "page=1")))
}

func TestMutateFailureSkipsInvalidation(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	ctx := context.Background()
	var calls int32
	_, err := FetchAs(ctx, s, NewKey("products"), countingFetcher(&calls, "p"))
	require.NoError(t, err)

	var attempts int32
	err = s.Mutate(ctx, func(ctx context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return errors.ErrServer
	}, "products")
	require.Error(t, err)

	// 变更不重试，失败不使缓存失效
	assert.Equal(t, int32(1), attempts)
	assert.False(t, s.Stale(NewKey("products")))
}

func TestEvictIdle(t *testing.T) {
	s := NewWithOptions(time.Minute, 20*time.Millisecond, 0, 0)
	defer s.Close()

	var calls int32
	_, err := FetchAs(context.Background(), s, NewKey("products"), countingFetcher(&calls, "p"))
	require.NoError(t, err)
	require.Equal(t, 1, s.Count())

	time.Sleep(40 * time.Millisecond)
	s.evictIdle()
	assert.Zero(t, s.Count())
}

func TestClear(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	var calls int32
	_, err := FetchAs(context.Background(), s, NewKey("products"), countingFetcher(&calls, "p"))
	require.NoError(t, err)

	s.Clear()
	assert.Zero(t, s.Count())
	assert.True(t, s.Stale(NewKey("products")))
}

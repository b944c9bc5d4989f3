package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

// value はテスト用のキャッシュ値型です。
type value struct {
	N int `json:"n"`
}

// newTestCache は時刻を固定したキャッシュとその時刻を進める関数を返します。
func newTestCache(t *testing.T) (*Cache[value], *time.Time) {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New[value](nil, "test")
	c.now = func() time.Time { return now }
	return c, &now
}

// TestCache_FreshHit はTTL内の2回目の呼び出しがフェッチを実行しないことを検証します。
func TestCache_FreshHit(t *testing.T) {
	t.Parallel()

	c, now := newTestCache(t)
	calls := 0
	fetch := func(ctx context.Context) (value, error) {
		calls++
		return value{N: calls}, nil
	}

	for i := 0; i < 2; i++ {
		v, stale, err := c.Get(context.Background(), "k", time.Hour, fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stale {
			t.Error("expected fresh value")
		}
		if v.N != 1 {
			t.Errorf("expected first fetch result, got %v", v)
		}
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 fetch within ttl, got %d", calls)
	}

	// TTLを超えたら再フェッチされる
	*now = now.Add(time.Hour + time.Minute)
	v, _, err := c.Get(context.Background(), "k", time.Hour, fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected refetch after expiry, got %d calls", calls)
	}
	if v.N != 2 {
		t.Errorf("expected refreshed value, got %v", v)
	}
}

// TestCache_ServeStale は期限切れエントリがある状態でフェッチが失敗した場合に
// 古い値がエラーなしで返されることを検証します（鮮度より可用性の方針）。
func TestCache_ServeStale(t *testing.T) {
	t.Parallel()

	c, now := newTestCache(t)

	_, _, err := c.Get(context.Background(), "k", time.Hour, func(ctx context.Context) (value, error) {
		return value{N: 7}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*now = now.Add(2 * time.Hour)
	v, stale, err := c.Get(context.Background(), "k", time.Hour, func(ctx context.Context) (value, error) {
		return value{}, errors.New("upstream down")
	})
	if err != nil {
		t.Fatalf("expected stale serve, got error: %v", err)
	}
	if !stale {
		t.Error("expected stale flag to be set")
	}
	if v.N != 7 {
		t.Errorf("expected previously cached value, got %v", v)
	}
}

// TestCache_NoEntryError はエントリが無い状態でのフェッチ失敗が
// ErrUnavailable として伝播することを検証します。
func TestCache_NoEntryError(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	_, stale, err := c.Get(context.Background(), "k", time.Hour, func(ctx context.Context) (value, error) {
		return value{}, errors.New("upstream down")
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if stale {
		t.Error("stale flag must not be set on hard failure")
	}
}

// TestCache_CancelledFetch はキャンセルされたフェッチがエントリを上書きしないことを検証します。
func TestCache_CancelledFetch(t *testing.T) {
	t.Parallel()

	c, now := newTestCache(t)

	_, _, err := c.Get(context.Background(), "k", time.Hour, func(ctx context.Context) (value, error) {
		return value{N: 1}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := c.slot("k").fetchedAt

	*now = now.Add(2 * time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	_, _, err = c.Get(ctx, "k", time.Hour, func(ctx context.Context) (value, error) {
		cancel()
		return value{N: 99}, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	s := c.slot("k")
	if !s.fetchedAt.Equal(before) || s.value.N != 1 {
		t.Errorf("cancelled fetch overwrote the entry: %+v", s)
	}
}

// TestCache_SingleFlight は同一キーの並行呼び出しがフェッチを1回だけ実行し、
// その結果を共有することを検証します。
func TestCache_SingleFlight(t *testing.T) {
	t.Parallel()

	c := New[value](nil, "test")
	var mu sync.Mutex
	calls := 0
	started := make(chan struct{})
	release := make(chan struct{})

	fetch := func(ctx context.Context) (value, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
		}
		return value{N: n}, nil
	}

	var wg sync.WaitGroup
	results := make([]value, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 1 {
				// 1本目のフェッチが走り出してから2本目を発行する
				<-started
			}
			v, _, err := c.Get(context.Background(), "k", time.Hour, fetch)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected a single in-flight fetch, got %d", calls)
	}
	if results[0] != results[1] {
		t.Errorf("concurrent callers saw different values: %v vs %v", results[0], results[1])
	}

	// 別キーはブロックされずに独立してフェッチされる
	v, _, err := c.Get(context.Background(), "other", time.Hour, func(ctx context.Context) (value, error) {
		return value{N: 42}, nil
	})
	if err != nil || v.N != 42 {
		t.Errorf("independent key fetch failed: %v %v", v, err)
	}
}

// TestCache_RedisSecondLevel はローカルミス時にRedisのエントリが使われることを検証します。
func TestCache_RedisSecondLevel(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New[value](rdb, "test")
	c.now = func() time.Time { return now }

	cached, _ := json.Marshal(payload[value]{Value: value{N: 5}, FetchedAt: now.Add(-10 * time.Minute)})
	mock.ExpectGet("test:k").SetVal(string(cached))

	v, stale, err := c.Get(context.Background(), "k", time.Hour, func(ctx context.Context) (value, error) {
		t.Error("fetch must not run on a fresh second-level hit")
		return value{}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stale || v.N != 5 {
		t.Errorf("expected redis value, got %v (stale=%v)", v, stale)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCache_RedisCorruptEntry は壊れたRedisエントリが削除され、
// フェッチ結果が書き戻されることを検証します。
func TestCache_RedisCorruptEntry(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New[value](rdb, "test")
	c.now = func() time.Time { return now }

	fresh, _ := json.Marshal(payload[value]{Value: value{N: 9}, FetchedAt: now})

	mock.ExpectGet("test:k").SetVal("{not json")
	mock.ExpectDel("test:k").SetVal(1)
	mock.ExpectSet("test:k", fresh, 0).SetVal("OK")

	v, _, err := c.Get(context.Background(), "k", time.Hour, func(ctx context.Context) (value, error) {
		return value{N: 9}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.N != 9 {
		t.Errorf("expected fetched value, got %v", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestIdleWithoutKey(t *testing.T) {
	var calls atomic.Int32
	u := New("balance", 10*time.Millisecond, "0", func(ctx context.Context, key string) (string, error) {
		calls.Add(1)
		return "1", nil
	})
	defer u.Close()

	time.Sleep(50 * time.Millisecond)

	require.Equal(t, int32(0), calls.Load())
	require.Equal(t, Result[string]{Value: "0"}, u.Snapshot())

	u.Refresh()
	_, ok := u.Key()
	require.False(t, ok)
}

func TestImmediateFetchAndInterval(t *testing.T) {
	var calls atomic.Int32
	u := New("total", 20*time.Millisecond, "0", func(ctx context.Context, key struct{}) (string, error) {
		n := calls.Add(1)
		if n == 1 {
			return "first", nil
		}
		return "later", nil
	})
	defer u.Close()

	u.SetKey(struct{}{})

	eventually(t, func() bool { return u.Snapshot().Value == "first" || calls.Load() > 1 })
	eventually(t, func() bool { return calls.Load() >= 3 })
	require.Equal(t, "later", u.Snapshot().Value)
}

func TestErrorRetainsValueAndClearsOnSuccess(t *testing.T) {
	var mu sync.Mutex
	responses := []error{nil, errors.New("node unavailable"), nil}
	values := []string{"10", "", "12"}
	i := 0

	u := New("staked", 0, "0", func(ctx context.Context, key string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		v, err := values[i], responses[i]
		if i < len(values)-1 {
			i++
		}
		return v, err
	})
	defer u.Close()

	u.SetKey("0xabc")
	eventually(t, func() bool { r := u.Snapshot(); return !r.Loading && r.Value == "10" })

	u.Refresh()
	eventually(t, func() bool { return u.Snapshot().Err != nil })
	r := u.Snapshot()
	require.Equal(t, "10", r.Value)
	require.EqualError(t, r.Err, "node unavailable")
	require.False(t, r.Loading)

	u.Refresh()
	eventually(t, func() bool { return u.Snapshot().Value == "12" })
	require.NoError(t, u.Snapshot().Err)
}

func TestStaleKeyDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)

	u := New("balance", 0, "0", func(ctx context.Context, key string) (string, error) {
		started <- key
		if key == "old" {
			// ignore cancellation so the stale result does arrive
			<-release
			return "old balance", nil
		}
		return "new balance", nil
	})
	defer u.Close()

	u.SetKey("old")
	require.Equal(t, "old", <-started)

	u.SetKey("new")
	require.Equal(t, "new", <-started)
	eventually(t, func() bool { return u.Snapshot().Value == "new balance" })

	close(release)
	time.Sleep(20 * time.Millisecond)

	require.Equal(t, "new balance", u.Snapshot().Value)
	key, ok := u.Key()
	require.True(t, ok)
	require.Equal(t, "new", key)
}

func TestKeyChangeResetsToZero(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	u := New("power", 0, "0", func(ctx context.Context, key string) (string, error) {
		if key == "b" {
			select {
			case <-block:
			case <-ctx.Done():
			}
			return "", ctx.Err()
		}
		return "5", nil
	})
	defer u.Close()

	u.SetKey("a")
	eventually(t, func() bool { return u.Snapshot().Value == "5" })

	u.SetKey("b")
	r := u.Snapshot()
	require.Equal(t, "0", r.Value)
	require.True(t, r.Loading)

	u.Clear()
	require.Equal(t, Result[string]{Value: "0"}, u.Snapshot())
}

func TestCloseCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})

	u := New("proposals", time.Hour, []int{}, func(ctx context.Context, key string) ([]int, error) {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	})

	u.SetKey("Active")
	<-started
	u.Close()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("fetch was not cancelled")
	}

	_, open := <-u.Updates()
	for open {
		_, open = <-u.Updates()
	}

	// no-ops after close
	u.SetKey("Passed")
	u.Close()
	require.Equal(t, []int{}, u.Snapshot().Value)
}

func TestObserver(t *testing.T) {
	var seen atomic.Int32
	u := New("count", 0, 0, func(ctx context.Context, key int) (int, error) {
		return key * 2, nil
	}, WithObserver(func(name string, err error) {
		if name == "count" && err == nil {
			seen.Add(1)
		}
	}))
	defer u.Close()

	u.SetKey(21)
	eventually(t, func() bool { return u.Snapshot().Value == 42 })
	require.Equal(t, int32(1), seen.Load())
}

package relay

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/Lutefd/coin-relay/internal/cache"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	mu    sync.Mutex
	calls int
	body  string
	err   error
	gate  chan struct{}
}

func (f *fakeUpstream) Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	gate, body, err := f.gate, f.body, f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (f *fakeUpstream) set(body string, err error) {
	f.mu.Lock()
	f.body, f.err = body, err
	f.mu.Unlock()
}

func (f *fakeUpstream) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(up *fakeUpstream) (*Service, *clock, *cache.MemoryCache) {
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	mc := cache.NewMemoryCache()
	s := NewService(up, mc,
		WithTTL(time.Minute),
		WithStaleWindow(5*time.Minute),
		WithRetention(24*time.Hour),
		WithClock(clk.Now),
	)
	return s, clk, mc
}

var globalReq = Request{Endpoint: "global"}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "global"},
		{in: "global", want: "global"},
		{in: "coins/markets", want: "coins/markets"},
		{in: "coins/avalanche-2/market_chart", want: "coins/avalanche-2/market_chart"},
		{in: "simple/price", want: "simple/price"},
		{in: "/global", wantErr: true},
		{in: "coins/../admin", wantErr: true},
		{in: "coins//markets", wantErr: true},
		{in: "https://evil.example", wantErr: true},
		{in: "coins?x=1", wantErr: true},
		{in: "coins markets", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateEndpoint(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidEndpoint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey(t *testing.T) {
	a, err := normalize(Request{Endpoint: "coins/markets", Params: url.Values{
		"vs_currency": {"usd"},
		"per_page":    {"10"},
		"endpoint":    {"coins/markets"},
	}})
	require.NoError(t, err)
	b, err := normalize(Request{Endpoint: "coins/markets", Params: url.Values{
		"per_page":    {"10"},
		"vs_currency": {"usd"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "coins/markets?per_page=10&vs_currency=usd", Key(a))
	assert.Equal(t, Key(a), Key(b))

	g, err := normalize(Request{})
	require.NoError(t, err)
	assert.Equal(t, "global?", Key(g))
}

func TestService_MissThenHit(t *testing.T) {
	up := &fakeUpstream{body: `{"v":1}`}
	s, clk, _ := newTestService(up)
	ctx := context.Background()

	res, err := s.Get(ctx, globalReq)
	require.NoError(t, err)
	assert.Equal(t, StatusMiss, res.Status)
	assert.Equal(t, time.Duration(0), res.Age)
	assert.JSONEq(t, `{"v":1}`, string(res.Data))

	up.set(`{"v":2}`, nil)
	clk.Advance(59 * time.Second)

	res, err = s.Get(ctx, globalReq)
	require.NoError(t, err)
	assert.Equal(t, StatusHit, res.Status)
	assert.Equal(t, 59*time.Second, res.Age)
	assert.JSONEq(t, `{"v":1}`, string(res.Data))
	assert.Equal(t, 1, up.Calls())
}

func TestService_StaleWhileRevalidate(t *testing.T) {
	up := &fakeUpstream{body: `{"v":1}`}
	s, clk, _ := newTestService(up)
	ctx := context.Background()

	_, err := s.Get(ctx, globalReq)
	require.NoError(t, err)

	gate := make(chan struct{})
	up.mu.Lock()
	up.body, up.gate = `{"v":2}`, gate
	up.mu.Unlock()
	clk.Advance(2 * time.Minute)

	for i := 0; i < 3; i++ {
		res, err := s.Get(ctx, globalReq)
		require.NoError(t, err)
		assert.Equal(t, StatusStale, res.Status)
		assert.JSONEq(t, `{"v":1}`, string(res.Data))
	}
	assert.Equal(t, 1, s.InFlight())

	close(gate)
	s.Wait()

	assert.Equal(t, 0, s.InFlight())
	assert.Equal(t, 2, up.Calls())

	res, err := s.Get(ctx, globalReq)
	require.NoError(t, err)
	assert.Equal(t, StatusHit, res.Status)
	assert.JSONEq(t, `{"v":2}`, string(res.Data))
}

func TestService_StaleIfError(t *testing.T) {
	up := &fakeUpstream{body: `{"v":1}`}
	s, clk, _ := newTestService(up)
	ctx := context.Background()

	_, err := s.Get(ctx, globalReq)
	require.NoError(t, err)

	up.set("", errors.New("upstream down"))
	clk.Advance(time.Hour)

	res, err := s.Get(ctx, globalReq)
	require.NoError(t, err)
	assert.Equal(t, StatusStaleIfError, res.Status)
	assert.Equal(t, time.Hour, res.Age)
	assert.JSONEq(t, `{"v":1}`, string(res.Data))
}

func TestService_ErrorWithoutEntry(t *testing.T) {
	boom := errors.New("upstream down")
	up := &fakeUpstream{err: boom}
	s, _, mc := newTestService(up)

	_, err := s.Get(context.Background(), globalReq)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, mc.Len())
}

type queuedUpstream struct {
	q    *queue.Queue
	next Upstream
}

func (u queuedUpstream) Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return queue.Submit(ctx, u.q, func(ctx context.Context) ([]byte, error) {
		return u.next.Fetch(ctx, endpoint, params)
	})
}

func TestService_StoppedQueueDoesNotWedgeKey(t *testing.T) {
	q := queue.New(queue.WithDelay(0), queue.WithJitter(0))
	qctx, stop := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		q.Start(qctx)
		close(stopped)
	}()
	stop()
	<-stopped

	up := &fakeUpstream{body: `{}`}
	s, _, _ := newTestService(up)
	s.upstream = queuedUpstream{q: q, next: up}

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := s.Get(ctx, globalReq)
		cancel()

		assert.ErrorIs(t, err, queue.ErrStopped)
	}
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, up.Calls())
}

func TestService_InvalidEndpoint(t *testing.T) {
	up := &fakeUpstream{body: `{}`}
	s, _, _ := newTestService(up)

	_, err := s.Get(context.Background(), Request{Endpoint: "../secrets"})

	assert.ErrorIs(t, err, model.ErrInvalidEndpoint)
	assert.Equal(t, 0, up.Calls())
}

func TestService_ConcurrentMissesShareOneFetch(t *testing.T) {
	gate := make(chan struct{})
	up := &fakeUpstream{body: `{"v":1}`, gate: gate}
	s, _, _ := newTestService(up)

	var wg sync.WaitGroup
	results := make([]Result, 5)
	errs := make([]error, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Get(context.Background(), globalReq)
		}(i)
	}

	require.Eventually(t, func() bool { return up.Calls() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, 1, up.Calls())
	for i := range results {
		require.NoError(t, errs[i])
		assert.JSONEq(t, `{"v":1}`, string(results[i].Data))
	}
}

func TestService_CallerCancelDoesNotAbortSharedFetch(t *testing.T) {
	gate := make(chan struct{})
	up := &fakeUpstream{body: `{"v":1}`, gate: gate}
	s, _, mc := newTestService(up)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Get(ctx, globalReq)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return up.Calls() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(gate)
	require.Eventually(t, func() bool { return mc.Len() == 1 }, time.Second, time.Millisecond)
}

func TestService_RefreshAndPurge(t *testing.T) {
	up := &fakeUpstream{body: `{"v":1}`}
	s, _, mc := newTestService(up)
	ctx := context.Background()

	res, err := s.Refresh(ctx, globalReq)
	require.NoError(t, err)
	assert.Equal(t, StatusMiss, res.Status)

	up.set("", errors.New("upstream down"))
	_, err = s.Refresh(ctx, globalReq)
	assert.Error(t, err)

	res, err = s.Get(ctx, globalReq)
	require.NoError(t, err)
	assert.Equal(t, StatusHit, res.Status)
	assert.JSONEq(t, `{"v":1}`, string(res.Data))

	require.NoError(t, s.Purge(ctx, globalReq))
	assert.Equal(t, 0, mc.Len())
}

func TestService_Fetch(t *testing.T) {
	up := &fakeUpstream{body: `[1,2,3]`}
	s, _, _ := newTestService(up)

	body, err := s.Fetch(context.Background(), "coins/markets", url.Values{"per_page": {"3"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(body))

	_, err = s.Fetch(context.Background(), "coins/markets", url.Values{"per_page": {"3"}})
	require.NoError(t, err)
	assert.Equal(t, 1, up.Calls())
}

func TestNewService_RetentionCoversStaleWindow(t *testing.T) {
	s := NewService(&fakeUpstream{}, cache.NewMemoryCache(),
		WithTTL(time.Minute),
		WithStaleWindow(5*time.Minute),
		WithRetention(time.Second),
	)

	assert.Equal(t, 6*time.Minute, s.retention)
}

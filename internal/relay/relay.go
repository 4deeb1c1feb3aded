// Package relay forwards CoinGecko requests through a time-based cache.
//
// Entries younger than the TTL are served without touching the upstream.
// Within the stale window an entry is served as STALE while one background
// refresh per key replaces it. Past that, the request waits for a fresh fetch
// and falls back to whatever entry is still retained if the upstream fails.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Lutefd/coin-relay/internal/cache"
	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/logger"
	"github.com/Lutefd/coin-relay/internal/metrics"
	"github.com/Lutefd/coin-relay/internal/model"
	"golang.org/x/sync/singleflight"
)

type CacheStatus string

const (
	StatusHit          CacheStatus = "HIT"
	StatusMiss         CacheStatus = "MISS"
	StatusStale        CacheStatus = "STALE"
	StatusStaleIfError CacheStatus = "STALE-IF-ERROR"
)

const defaultRefreshTimeout = 2 * time.Minute

var endpointPattern = regexp.MustCompile(`^[A-Za-z0-9_.,\-/]+$`)

type Request struct {
	Endpoint string
	Params   url.Values
}

type Result struct {
	Data   []byte
	Status CacheStatus
	Age    time.Duration
}

// Upstream returns the raw JSON body of an endpoint.
type Upstream interface {
	Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

type Service struct {
	upstream       Upstream
	cache          cache.Cache
	ttl            time.Duration
	staleWindow    time.Duration
	retention      time.Duration
	refreshTimeout time.Duration
	now            func() time.Time

	group      singleflight.Group
	mu         sync.Mutex
	refreshing map[string]struct{}
	wg         sync.WaitGroup
}

type Option func(*Service)

func WithTTL(d time.Duration) Option {
	return func(s *Service) { s.ttl = d }
}

func WithStaleWindow(d time.Duration) Option {
	return func(s *Service) { s.staleWindow = d }
}

// WithRetention sets how long entries stay in the cache after being stored.
func WithRetention(d time.Duration) Option {
	return func(s *Service) { s.retention = d }
}

func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Service) { s.refreshTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(upstream Upstream, c cache.Cache, opts ...Option) *Service {
	s := &Service{
		upstream:       upstream,
		cache:          c,
		ttl:            commons.DefaultCacheTTL,
		staleWindow:    commons.DefaultCacheStaleWindow,
		retention:      commons.DefaultCacheRetention,
		refreshTimeout: defaultRefreshTimeout,
		now:            time.Now,
		refreshing:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retention < s.ttl+s.staleWindow {
		s.retention = s.ttl + s.staleWindow
	}
	return s
}

// ValidateEndpoint returns the endpoint to forward, defaulting to "global".
// Only relative paths made of safe characters are accepted.
func ValidateEndpoint(endpoint string) (string, error) {
	if endpoint == "" {
		return commons.DefaultEndpoint, nil
	}
	if strings.HasPrefix(endpoint, "/") ||
		strings.Contains(endpoint, "..") ||
		strings.Contains(endpoint, "//") ||
		!endpointPattern.MatchString(endpoint) {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidEndpoint, endpoint)
	}
	return endpoint, nil
}

// Key identifies a request in the cache. Params are encoded in sorted order
// so equivalent query strings share an entry.
func Key(req Request) string {
	return req.Endpoint + "?" + req.Params.Encode()
}

func normalize(req Request) (Request, error) {
	endpoint, err := ValidateEndpoint(req.Endpoint)
	if err != nil {
		return Request{}, err
	}
	params := url.Values{}
	for k, v := range req.Params {
		if k == "endpoint" {
			continue
		}
		params[k] = append([]string(nil), v...)
	}
	return Request{Endpoint: endpoint, Params: params}, nil
}

func (s *Service) Get(ctx context.Context, req Request) (Result, error) {
	req, err := normalize(req)
	if err != nil {
		return Result{}, err
	}
	key := Key(req)

	entry, found := s.lookup(ctx, key)
	if found {
		age := s.age(entry)
		switch {
		case age < s.ttl:
			metrics.CacheResults.WithLabelValues(string(StatusHit)).Inc()
			return Result{Data: entry.Data, Status: StatusHit, Age: age}, nil
		case age < s.ttl+s.staleWindow:
			s.revalidate(key, req)
			metrics.CacheResults.WithLabelValues(string(StatusStale)).Inc()
			return Result{Data: entry.Data, Status: StatusStale, Age: age}, nil
		}
	}

	data, err := s.fetch(ctx, key, req)
	if err != nil {
		if found && ctx.Err() == nil {
			logger.Warnf("serving stale %s after upstream error: %v", key, err)
			metrics.CacheResults.WithLabelValues(string(StatusStaleIfError)).Inc()
			return Result{Data: entry.Data, Status: StatusStaleIfError, Age: s.age(entry)}, nil
		}
		metrics.CacheResults.WithLabelValues("ERROR").Inc()
		return Result{}, err
	}

	metrics.CacheResults.WithLabelValues(string(StatusMiss)).Inc()
	return Result{Data: data, Status: StatusMiss}, nil
}

// Refresh fetches and stores req regardless of the cached entry. A failed
// refresh leaves the existing entry in place.
func (s *Service) Refresh(ctx context.Context, req Request) (Result, error) {
	req, err := normalize(req)
	if err != nil {
		return Result{}, err
	}
	data, err := s.fetch(ctx, Key(req), req)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: data, Status: StatusMiss}, nil
}

func (s *Service) Purge(ctx context.Context, req Request) error {
	req, err := normalize(req)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, Key(req)); err != nil {
		return fmt.Errorf("failed to purge %s: %w", Key(req), err)
	}
	return nil
}

// Fetch returns the body for endpoint through the cache, so typed readers
// share entries with the relay route.
func (s *Service) Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	res, err := s.Get(ctx, Request{Endpoint: endpoint, Params: params})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// InFlight is the number of background refreshes currently running.
func (s *Service) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.refreshing)
}

// Wait blocks until every background refresh has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) lookup(ctx context.Context, key string) (cache.Entry, bool) {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logger.Warnf("cache read failed for %s: %v", key, err)
		}
		return cache.Entry{}, false
	}
	return entry, true
}

func (s *Service) age(entry cache.Entry) time.Duration {
	age := entry.Age(s.now())
	if age < 0 {
		return 0
	}
	return age
}

// fetch calls the upstream once per key no matter how many callers wait on
// it. The shared call is detached from any single caller's context.
func (s *Service) fetch(ctx context.Context, key string, req Request) ([]byte, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		data, err := s.upstream.Fetch(detached, req.Endpoint, req.Params)
		if err != nil {
			return nil, err
		}
		entry := cache.Entry{Data: data, StoredAt: s.now()}
		if err := s.cache.Set(detached, key, entry, s.retention); err != nil {
			logger.Errorf("failed to cache %s: %v", key, err)
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) revalidate(key string, req Request) {
	s.mu.Lock()
	if _, ok := s.refreshing[key]; ok {
		s.mu.Unlock()
		return
	}
	s.refreshing[key] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.refreshing, key)
			s.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()

		if _, err := s.fetch(ctx, key, req); err != nil {
			logger.Warnf("background refresh of %s failed: %v", key, err)
			metrics.BackgroundRefreshes.WithLabelValues("error").Inc()
			return
		}
		metrics.BackgroundRefreshes.WithLabelValues("ok").Inc()
	}()
}

package sentinel

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"credit-gateway/internal/domain/entity"
	"credit-gateway/pkg/cache"
)

// CachedClient memoizes bureau responses in a cache.Store, one key per
// subject and resource, stored with their fetch time. A hit never reaches
// the network and keeps the QueriedAt of the original fetch.
type CachedClient struct {
	client *Client
	cache  *cache.Store
}

// NewCachedClient wraps client with store.
func NewCachedClient(client *Client, store *cache.Store) *CachedClient {
	return &CachedClient{client: client, cache: store}
}

// FetchPerson returns the person profile for dni, cached for 30 minutes.
func (c *CachedClient) FetchPerson(ctx context.Context, dni string) (entity.PersonCreditProfile, error) {
	return cachedSubject(ctx, c, dni, personResource, decodePerson)
}

// FetchDebts returns the current debts for dni, cached for 30 minutes.
func (c *CachedClient) FetchDebts(ctx context.Context, dni string) (entity.DebtSummary, error) {
	return cachedSubject(ctx, c, dni, debtsResource, decodeDebts)
}

// FetchHistory returns the historical records for dni, cached for 1 hour.
func (c *CachedClient) FetchHistory(ctx context.Context, dni string) (entity.CreditHistory, error) {
	return cachedSubject(ctx, c, dni, historyResource, decodeHistory)
}

// FetchReport returns the consolidated report for dni, cached for 1 hour.
func (c *CachedClient) FetchReport(ctx context.Context, dni string) (entity.CreditReport, error) {
	return cachedSubject(ctx, c, dni, reportResource, decodeReport)
}

// FetchAlerts returns the active alerts for dni, cached for 15 minutes.
func (c *CachedClient) FetchAlerts(ctx context.Context, dni string) (entity.AlertList, error) {
	return cachedSubject(ctx, c, dni, alertsResource, decodeAlerts)
}

// FetchInfo returns the bureau metadata, cached for 24 hours.
func (c *CachedClient) FetchInfo(ctx context.Context) (entity.APIInfo, error) {
	return cachedFetch(ctx, c, infoResource, func(raw []byte, _ time.Time) (entity.APIInfo, error) {
		return decodeInfo(raw)
	})
}

// Invalidate drops every cached resource of one subject.
func (c *CachedClient) Invalidate(dni string) error {
	id, err := entity.ParseSubjectID(dni)
	if err != nil {
		return err
	}
	removed := 0
	for _, key := range SubjectKeys(id) {
		if c.cache.Delete(key) {
			removed++
		}
	}
	c.client.logger.Info("sentinel cache cleared for subject",
		slog.String("dni", id.String()),
		slog.Int("removed", removed))
	return nil
}

// InvalidateAll drops the whole cache.
func (c *CachedClient) InvalidateAll() {
	c.cache.Clear()
	c.client.logger.Info("sentinel cache cleared")
}

// cachedEntry is the cache value of one resource: the bureau body together
// with the time it was fetched, so a hit reports the original query time.
type cachedEntry struct {
	FetchedAt time.Time       `json:"fetchedAt"`
	Body      json.RawMessage `json:"body"`
}

func cachedSubject[T any](ctx context.Context, c *CachedClient, dni string,
	build func(entity.SubjectID) resource, decode decodeFunc[T]) (T, error) {
	id, err := entity.ParseSubjectID(dni)
	if err != nil {
		var zero T
		return zero, err
	}
	return cachedFetch(ctx, c, build(id), func(raw []byte, fetchedAt time.Time) (T, error) {
		return decode(raw, id, fetchedAt)
	})
}

// cachedFetch serves res from the cache or the bureau. Only bodies that
// decode are stored; a stored entry that no longer decodes is dropped and
// fetched again instead of failing every hit until it expires.
func cachedFetch[T any](ctx context.Context, c *CachedClient, res resource,
	decode func(raw []byte, fetchedAt time.Time) (T, error)) (T, error) {
	var zero T

	if e, ok := c.lookup(ctx, res); ok {
		v, err := decode(e.Body, e.FetchedAt)
		if err == nil {
			return v, nil
		}
		c.drop(ctx, res, err)
	}

	raw, err := c.client.load(ctx, res)
	if err != nil {
		return zero, err
	}
	fetchedAt := c.client.now()
	v, err := decode(raw, fetchedAt)
	if err != nil {
		c.client.logger.WarnContext(ctx, "sentinel response not cached",
			slog.String("key", res.cacheKey),
			slog.Any("error", err))
		return zero, err
	}
	c.store(ctx, res, cachedEntry{FetchedAt: fetchedAt, Body: raw})
	return v, nil
}

func (c *CachedClient) lookup(ctx context.Context, res resource) (cachedEntry, bool) {
	raw, ok := c.cache.Get(res.cacheKey)
	if !ok {
		c.client.metrics.RecordCache(res.name, false)
		return cachedEntry{}, false
	}
	var e cachedEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.client.metrics.RecordCache(res.name, false)
		c.drop(ctx, res, err)
		return cachedEntry{}, false
	}
	c.client.metrics.RecordCache(res.name, true)
	c.client.logger.DebugContext(ctx, "sentinel cache hit", slog.String("key", res.cacheKey))
	return e, true
}

func (c *CachedClient) store(ctx context.Context, res resource, e cachedEntry) {
	b, err := json.Marshal(e)
	if err != nil {
		c.client.logger.WarnContext(ctx, "sentinel response not cached",
			slog.String("key", res.cacheKey),
			slog.Any("error", err))
		return
	}
	c.cache.Set(res.cacheKey, b, res.ttl)
}

func (c *CachedClient) drop(ctx context.Context, res resource, err error) {
	c.cache.Delete(res.cacheKey)
	c.client.logger.WarnContext(ctx, "sentinel cache entry dropped",
		slog.String("key", res.cacheKey),
		slog.Any("error", err))
}

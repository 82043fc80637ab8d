package caching

import (
	"context"
	"encoding/json"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/metrics"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"
)

const storeTimeout = 2 * time.Second

type Entry struct {
	QueryHash          string                    `json:"queryHash"`
	OriginalQuery      string                    `json:"originalQuery"`
	StructuredResponse entities.StructuredAnswer `json:"structuredResponse"`
	CreatedAt          time.Time                 `json:"createdAt"`
	ExpiresAt          time.Time                 `json:"expiresAt"`
}

// ResponseCache maps query fingerprints to structured answers. Every backend
// failure degrades to a miss or a dropped write.
type ResponseCache struct {
	store   Store
	metrics *metrics.MetricsService
	ttl     time.Duration
	prefix  string
	now     func() time.Time
}

func NewResponseCache(store Store, config *configuration.Config, metrics *metrics.MetricsService) *ResponseCache {
	return &ResponseCache{
		store:   store,
		metrics: metrics,
		ttl:     config.Cache.TTL,
		prefix:  config.Cache.KeyPrefix,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (x *ResponseCache) WithClock(now func() time.Time) *ResponseCache {
	x.now = now
	return x
}

func (x *ResponseCache) Key(query string) string {
	return x.prefix + Fingerprint(query)
}

func (x *ResponseCache) Lookup(ctx context.Context, log *tracing.Logger, query string) (entities.StructuredAnswer, bool) {
	key := x.Key(query)
	log = log.With(tracing.QueryHash, key)
	defer tracing.ProfilePoint(log, "Response cache lookup completed", "caching.lookup")()

	ctx, cancel := platform.ContextTimeoutVal(ctx, storeTimeout)
	defer cancel()

	raw, found, err := x.store.Get(ctx, key)
	if err != nil {
		log.W("Response cache lookup failed, treating as miss", tracing.InnerError, err)
		x.metrics.RecordCacheLookup("error")
		return entities.StructuredAnswer{}, false
	}
	if !found {
		x.metrics.RecordCacheLookup("miss")
		return entities.StructuredAnswer{}, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.W("Response cache entry is corrupt, treating as miss", tracing.InnerError, err)
		x.metrics.RecordCacheLookup("error")
		return entities.StructuredAnswer{}, false
	}

	if !x.now().Before(entry.ExpiresAt) {
		log.D("Response cache entry expired", tracing.CacheOutcome, "expired", "expires_at", entry.ExpiresAt)
		x.metrics.RecordCacheLookup("expired")
		return entities.StructuredAnswer{}, false
	}

	log.D("Response cache hit", tracing.CacheOutcome, "hit")
	x.metrics.RecordCacheLookup("hit")
	return entry.StructuredResponse, true
}

// Store always writes a fresh entry; an existing entry for the key is replaced, never extended.
func (x *ResponseCache) Store(ctx context.Context, log *tracing.Logger, query string, answer entities.StructuredAnswer) {
	key := x.Key(query)
	log = log.With(tracing.QueryHash, key)
	defer tracing.ProfilePoint(log, "Response cache store completed", "caching.store")()

	now := x.now()
	entry := Entry{
		QueryHash:          key,
		OriginalQuery:      query,
		StructuredResponse: answer,
		CreatedAt:          now,
		ExpiresAt:          now.Add(x.ttl),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		log.W("Failed to encode response cache entry", tracing.InnerError, err)
		x.metrics.RecordCacheStore("error")
		return
	}

	ctx, cancel := platform.ContextTimeoutVal(ctx, storeTimeout)
	defer cancel()

	if err := x.store.Set(ctx, key, raw, x.ttl); err != nil {
		log.W("Failed to write response cache entry", tracing.InnerError, err)
		x.metrics.RecordCacheStore("error")
		return
	}

	x.metrics.RecordCacheStore("ok")
}

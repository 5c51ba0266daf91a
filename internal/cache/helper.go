package cache

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// readThrough serves key from c, loading and storing it on a miss. Values
// are stored and returned as copies so callers can never mutate the cached
// entry. Load errors are returned as is and nothing is stored.
func readThrough[T any](
	ctx context.Context,
	c Cache,
	entity, key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	span := startLookupSpan(ctx, entity, key)
	defer finishSpan(span)

	if v, ok := c.Get(ctx, key); ok {
		if cached, ok := v.(*T); ok {
			markLookup(span, true, nil)
			cp := *cached
			return &cp, nil
		}
	}

	loaded, err := load(ctx)
	if err != nil {
		markLookup(span, false, err)
		return nil, err
	}

	stored := *loaded
	c.Set(ctx, key, &stored, ttl)
	markLookup(span, false, nil)
	return loaded, nil
}

// startLookupSpan starts a child span when ctx carries a sentry hub.
func startLookupSpan(ctx context.Context, entity, key string) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	span := sentry.StartSpan(ctx, "cache."+entity+".get")
	span.Description = "cache." + entity + ".get"
	span.Op = "db.cache"
	span.SetData("entity", entity)
	span.SetData("key", key)
	return span
}

func markLookup(span *sentry.Span, hit bool, err error) {
	if span == nil {
		return
	}
	span.SetData("cache.hit", hit)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
		return
	}
	span.Status = sentry.SpanStatusOK
}

func finishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}

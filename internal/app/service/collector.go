package service

import (
	"context"
	"fmt"
	"sync"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"
	"wallet_report/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// sourceCollector runs independent upstream lookups concurrently and records each
// outcome in a bundle. A failed lookup only marks its own source as degraded.
type sourceCollector struct {
	group  errgroup.Group
	mu     sync.Mutex
	bundle *entity.RawWalletBundle
	errs   map[entity.Source]error
	logger port.Logger
}

func newSourceCollector(limit int, log port.Logger) *sourceCollector {
	c := &sourceCollector{
		bundle: entity.NewRawWalletBundle(),
		errs:   make(map[entity.Source]error),
		logger: log,
	}
	if limit > 0 {
		c.group.SetLimit(limit)
	}
	return c
}

// fetch schedules one lookup. A panic inside fn aborts the whole collection.
func (c *sourceCollector) fetch(ctx context.Context, src entity.Source, fn func(context.Context) (any, error)) {
	c.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: panic while fetching %s: %v", entity.ErrReportFailed, src, r)
			}
		}()

		val, fetchErr := fn(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if fetchErr != nil {
			c.logger.Warn("Upstream source failed, continuing with an empty record", "source", src, "error", fetchErr)
			metrics.SourceFailures.WithLabelValues(string(src)).Inc()
			c.bundle.SourceErrors[src] = fetchErr.Error()
			c.errs[src] = fetchErr
			return nil
		}
		c.bundle.Data[src] = val
		return nil
	})
}

// wait blocks until every lookup finished.
func (c *sourceCollector) wait() (*entity.RawWalletBundle, error) {
	if err := c.group.Wait(); err != nil {
		return nil, err
	}
	return c.bundle, nil
}

// firstError returns the error of the first failed source in order.
func (c *sourceCollector) firstError(order ...entity.Source) error {
	for _, src := range order {
		if err, ok := c.errs[src]; ok {
			return err
		}
	}
	return nil
}

// objectData unwraps the "data" field of an object-shaped response: the first
// element of a non-empty list, the object itself, or an empty record.
func objectData(body map[string]any) map[string]any {
	switch data := body["data"].(type) {
	case []any:
		if len(data) > 0 {
			if rec, ok := data[0].(map[string]any); ok {
				return rec
			}
		}
	case map[string]any:
		return data
	}
	return map[string]any{}
}

// listData unwraps the "data" field of a list-shaped response.
func listData(body map[string]any) []any {
	if data, ok := body["data"].([]any); ok {
		return data
	}
	return []any{}
}

// internal/application/query/paginate.go
package query

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain/common"
)

var tracer = otel.Tracer("storefront/internal/application/query")

// Source is what a store exposes to be paginated.
type Source[T any] interface {
	// Count returns the number of documents matching filter, ignoring paging.
	Count(ctx context.Context, filter common.Filter) (int, error)
	// Find returns the documents of one page, sorted and populated per req.
	Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]T, error)
}

// Paginate runs the count and the page fetch concurrently and assembles the
// page envelope. The two reads are not isolated from each other; under
// concurrent writes the total and the rows may come from different
// snapshots.
//
// req must already be normalized. Store errors are returned as-is.
func Paginate[T any](ctx context.Context, src Source[T], filter common.Filter, req common.PageRequest) (common.PageResult[T], error) {
	ctx, span := tracer.Start(ctx, "query.Paginate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", req.Page),
		attribute.Int("limit", req.Limit),
		attribute.Int("filter.exprs", len(filter)),
	)

	var (
		total int
		rows  []T
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := src.Count(gctx, filter)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	g.Go(func() error {
		r, err := src.Find(gctx, filter, req)
		if err != nil {
			return err
		}
		rows = r
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return common.PageResult[T]{}, err
	}

	span.SetAttributes(attribute.Int("totalResults", total))
	return common.NewPageResult(req, rows, total), nil
}

// SourceFunc adapts two functions to Source.
type SourceFunc[T any] struct {
	CountFn func(ctx context.Context, filter common.Filter) (int, error)
	FindFn  func(ctx context.Context, filter common.Filter, req common.PageRequest) ([]T, error)
}

func (s SourceFunc[T]) Count(ctx context.Context, filter common.Filter) (int, error) {
	return s.CountFn(ctx, filter)
}

func (s SourceFunc[T]) Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]T, error) {
	return s.FindFn(ctx, filter, req)
}

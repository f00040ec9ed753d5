// internal/adapters/out/firestore/helper_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/domain/common"
)

func asString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	case string:
		var n int64
		_, _ = fmt.Sscanf(strings.TrimSpace(t), "%d", &n)
		return n
	default:
		return 0
	}
}

func asInt(v any) int { return int(asInt64(v)) }

// asTime returns (time, ok)
func asTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func asStringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = asString(val)
	}
	return out
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// ========================================
// Query building
// ========================================

// buildQuery pushes every predicate Firestore can evaluate into q and
// returns the rest (case-insensitive Contains) as residual.
func buildQuery(q firestore.Query, filter common.Filter, sort []common.SortField, storeField func(string) string) (firestore.Query, common.Filter) {
	pushable, residual := filter.Split()
	for _, e := range pushable {
		switch x := e.(type) {
		case common.Eq:
			q = q.Where(x.Field, "==", x.Value)
		case common.In:
			q = q.Where(x.Field, "in", x.Values)
		case common.Range:
			if x.Min != nil {
				q = q.Where(x.Field, ">=", x.Min)
			}
			if x.Max != nil {
				q = q.Where(x.Field, "<=", x.Max)
			}
		}
	}

	if storeField == nil {
		storeField = func(s string) string { return s }
	}
	for _, s := range sort {
		dir := firestore.Asc
		if s.Order == common.SortDesc {
			dir = firestore.Desc
		}
		q = q.OrderBy(storeField(s.Field), dir)
	}
	// secondary stable sort
	q = q.OrderBy("id", firestore.Asc)
	return q, residual
}

// countDocs counts matches server-side unless a residual predicate forces a
// scan.
func countDocs(ctx context.Context, q firestore.Query, residual common.Filter) (int, error) {
	if len(residual) > 0 {
		snaps, err := scanDocs(ctx, q, residual)
		if err != nil {
			return 0, err
		}
		return len(snaps), nil
	}

	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"]
	if !ok {
		return 0, errors.New("firestore: count aggregation returned no value")
	}
	switch n := v.(type) {
	case *firestorepb.Value:
		return int(n.GetIntegerValue()), nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("firestore: unexpected count type %T", v)
	}
}

// maxOffset is the largest offset the Firestore query API carries (int32).
const maxOffset = math.MaxInt32

// findDocs returns one page of snapshots. Without residual predicates the
// page is cut server-side with Offset/Limit.
func findDocs(ctx context.Context, q firestore.Query, residual common.Filter, req common.PageRequest) ([]*firestore.DocumentSnapshot, error) {
	if len(residual) == 0 {
		skip := req.Skip()
		if skip < 0 || skip > maxOffset {
			return []*firestore.DocumentSnapshot{}, nil
		}
		if skip > 0 {
			q = q.Offset(skip)
		}
		if req.Limit > 0 {
			q = q.Limit(req.Limit)
		}
		return collect(q.Documents(ctx))
	}

	snaps, err := scanDocs(ctx, q, residual)
	if err != nil {
		return nil, err
	}
	skip := req.Skip()
	if skip < 0 || skip >= len(snaps) {
		return []*firestore.DocumentSnapshot{}, nil
	}
	snaps = snaps[skip:]
	if req.Limit > 0 && len(snaps) > req.Limit {
		snaps = snaps[:req.Limit]
	}
	return snaps, nil
}

func scanDocs(ctx context.Context, q firestore.Query, residual common.Filter) ([]*firestore.DocumentSnapshot, error) {
	all, err := collect(q.Documents(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]*firestore.DocumentSnapshot, 0, len(all))
	for _, snap := range all {
		ok, err := residual.Match(snap.Data())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, snap)
		}
	}
	return out, nil
}

func collect(iter *firestore.DocumentIterator) ([]*firestore.DocumentSnapshot, error) {
	defer iter.Stop()
	var out []*firestore.DocumentSnapshot
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// getAll fetches documents by id, skipping missing ones.
func getAll(ctx context.Context, client *firestore.Client, col *firestore.CollectionRef, ids []string) ([]*firestore.DocumentSnapshot, error) {
	seen := map[string]struct{}{}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, col.Doc(id))
	}
	if len(refs) == 0 {
		return nil, nil
	}
	snaps, err := client.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := make([]*firestore.DocumentSnapshot, 0, len(snaps))
	for _, s := range snaps {
		if s != nil && s.Exists() {
			out = append(out, s)
		}
	}
	return out, nil
}

// ========================================
// Money
// ========================================

type moneyDoc struct {
	Amount   string `firestore:"amount"`
	Currency string `firestore:"currency"`
}

func moneyToDoc(m common.Money) moneyDoc {
	return moneyDoc{Amount: m.Amount.String(), Currency: m.Currency.String()}
}

func (d moneyDoc) toDomain() (common.Money, error) {
	return common.NewMoney(d.Amount, d.Currency)
}

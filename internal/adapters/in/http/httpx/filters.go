// internal/adapters/in/http/httpx/filters.go
package httpx

import (
	"net/http"
	"strings"
	"time"

	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	odom "storefront/internal/domain/order"
	pdom "storefront/internal/domain/product"
)

// DefaultCurrency prices minPrice/maxPrice when no currency param is sent.
const DefaultCurrency = "USD"

// ProductFilter reads categoryId, featured, search, minPrice, maxPrice,
// currency and ids. Only a malformed price is an error.
func ProductFilter(r *http.Request) (pdom.Filter, error) {
	q := r.URL.Query()
	f := pdom.Filter{
		CategoryID: strings.TrimSpace(q.Get("categoryId")),
		Featured:   QueryBool(r, "featured"),
		Search:     strings.TrimSpace(q.Get("search")),
		IDs:        QueryList(r, "ids"),
	}
	cur := strings.TrimSpace(q.Get("currency"))
	if cur == "" {
		cur = DefaultCurrency
	}
	for key, dst := range map[string]**common.Money{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		m, err := common.NewMoney(raw, cur)
		if err != nil {
			return pdom.Filter{}, err
		}
		*dst = &m
	}
	return f, nil
}

// CategoryFilter reads parentId, roots and search.
func CategoryFilter(r *http.Request) catdom.Filter {
	q := r.URL.Query()
	f := catdom.Filter{
		ParentID: strings.TrimSpace(q.Get("parentId")),
		Search:   strings.TrimSpace(q.Get("search")),
		IDs:      QueryList(r, "ids"),
	}
	if b := QueryBool(r, "roots"); b != nil {
		f.RootsOnly = *b
	}
	return f
}

// OrderFilter reads status (comma separated), email, createdFrom and
// createdTo (RFC 3339). An unknown status or bad timestamp is an error.
func OrderFilter(r *http.Request) (odom.Filter, error) {
	q := r.URL.Query()
	f := odom.Filter{Email: strings.TrimSpace(q.Get("email"))}
	for _, raw := range QueryList(r, "status") {
		s, err := odom.ParseStatus(raw)
		if err != nil {
			return odom.Filter{}, err
		}
		f.Statuses = append(f.Statuses, s)
	}
	for key, dst := range map[string]**time.Time{"createdFrom": &f.CreatedFrom, "createdTo": &f.CreatedTo} {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return odom.Filter{}, invalidParam(key, raw)
		}
		t = t.UTC()
		*dst = &t
	}
	return f, nil
}

// internal/adapters/in/http/httpx/request.go
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"storefront/internal/domain/common"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json field names
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ReadJSON decodes the body into dst and validates it. Every failure wraps
// common.ErrInvalidInput.
func ReadJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", common.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid json: %v", common.ErrInvalidInput, err)
	}
	if err := Validator().Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", common.ErrInvalidInput, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// PageRequest normalizes sortBy/limit/page/populate from the query string.
// It never fails.
func PageRequest(r *http.Request, sortable ...string) common.PageRequest {
	q := r.URL.Query()
	return common.NormalizePageRequest(common.RawPageRequest{
		SortBy:   q.Get("sortBy"),
		Limit:    q.Get("limit"),
		Page:     q.Get("page"),
		Populate: q.Get("populate"),
	}, sortable...)
}

// QueryBool reads an optional boolean query parameter; anything unparsable
// is treated as absent.
func QueryBool(r *http.Request, key string) *bool {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

// QueryList splits a comma separated query parameter.
func QueryList(r *http.Request, key string) []string {
	var out []string
	for _, v := range strings.Split(r.URL.Query().Get(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Populate returns the populate paths of the query string.
func Populate(r *http.Request) []string {
	return QueryList(r, "populate")
}

func invalidParam(key, raw string) error {
	return fmt.Errorf("%w: query parameter %s=%q", common.ErrInvalidInput, key, raw)
}

// internal/domain/cart/owner.go
package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/domain/common"
)

var ErrInvalidOwner = fmt.Errorf("%w: cart owner", common.ErrInvalidInput)

// OwnerKind distinguishes the two ways a cart can be owned.
type OwnerKind string

const (
	OwnerGuest      OwnerKind = "guest"
	OwnerRegistered OwnerKind = "user"
)

// OwnerKey is the stable key a cart is stored under, whether or not the
// shopper is signed in. Construct it with Guest, Registered or ParseOwnerKey.
type OwnerKey struct {
	kind OwnerKind
	id   string
}

// Guest returns the key of an anonymous device. The token must be a UUID
// previously issued by NewGuestToken.
func Guest(deviceToken string) (OwnerKey, error) {
	t := strings.TrimSpace(deviceToken)
	u, err := uuid.Parse(t)
	if err != nil {
		return OwnerKey{}, fmt.Errorf("%w: guest token is not a valid token", ErrInvalidOwner)
	}
	return OwnerKey{kind: OwnerGuest, id: u.String()}, nil
}

// Registered returns the key of a signed-in user.
func Registered(userID string) (OwnerKey, error) {
	id := strings.TrimSpace(userID)
	if id == "" || strings.ContainsAny(id, "/:") {
		return OwnerKey{}, fmt.Errorf("%w: user id %q", ErrInvalidOwner, userID)
	}
	return OwnerKey{kind: OwnerRegistered, id: id}, nil
}

// NewGuestToken issues a fresh device token.
func NewGuestToken() string {
	return uuid.NewString()
}

// ParseOwnerKey is the inverse of OwnerKey.String.
func ParseOwnerKey(s string) (OwnerKey, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return OwnerKey{}, fmt.Errorf("%w: %q", ErrInvalidOwner, s)
	}
	switch OwnerKind(kind) {
	case OwnerGuest:
		return Guest(id)
	case OwnerRegistered:
		return Registered(id)
	}
	return OwnerKey{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidOwner, kind)
}

func (k OwnerKey) Kind() OwnerKind { return k.kind }
func (k OwnerKey) ID() string      { return k.id }
func (k OwnerKey) IsZero() bool    { return k.id == "" }
func (k OwnerKey) IsGuest() bool   { return k.kind == OwnerGuest }

// String renders "guest:<token>" or "user:<uid>". Stores use it as the
// document id.
func (k OwnerKey) String() string {
	if k.IsZero() {
		return ""
	}
	return string(k.kind) + ":" + k.id
}

func (k OwnerKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *OwnerKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*k = OwnerKey{}
		return nil
	}
	parsed, err := ParseOwnerKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

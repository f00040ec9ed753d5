package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storefront/internal/adapters/out/memory"
	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	odom "storefront/internal/domain/order"
	pdom "storefront/internal/domain/product"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ---- image store ----

type fakeImageStore struct {
	mu        sync.Mutex
	uploaded  []common.Image
	deleted   []string
	uploadErr error
}

func (s *fakeImageStore) Upload(_ context.Context, folder, filename, _ string, r io.Reader) (common.Image, error) {
	if s.uploadErr != nil {
		return common.Image{}, s.uploadErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return common.Image{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	img := common.Image{PublicID: folder + "/" + filename, URL: "https://img.test/" + folder + "/" + filename}
	s.uploaded = append(s.uploaded, img)
	return img, nil
}

func (s *fakeImageStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, publicID)
	return nil
}

func imageBody() io.Reader { return bytes.NewReader([]byte("\x89PNG")) }

// ---- events and mail ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []odom.Envelope
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, env odom.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, env)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// failingOrders wraps an order repository and fails Create.
type failingOrders struct {
	odom.Repository
}

var errStoreDown = errors.New("store unavailable")

func (failingOrders) Create(context.Context, *odom.Order) (*odom.Order, error) {
	return nil, errStoreDown
}

// ---- store fixture ----

type stores struct {
	categories *memory.CategoryRepository
	products   *memory.ProductRepository
	orders     *memory.OrderRepository
	carts      *memory.CartRepository
	idem       *memory.IdempotencyStore
	cache      *memory.StatusCache
	clock      *fixedClock
}

func newStores() *stores {
	cats := memory.NewCategoryRepository()
	products := memory.NewProductRepository(cats)
	return &stores{
		categories: cats,
		products:   products,
		orders:     memory.NewOrderRepository(products),
		carts:      memory.NewCartRepository(),
		idem:       memory.NewIdempotencyStore(),
		cache:      memory.NewStatusCache(),
		clock:      &fixedClock{now: t0},
	}
}

func usd(t *testing.T, amount string) common.Money {
	t.Helper()
	m, err := common.NewMoney(amount, "USD")
	require.NoError(t, err)
	return m
}

func (s *stores) addProduct(t *testing.T, id, name, price string) *pdom.Product {
	t.Helper()
	axes := []pdom.VariantAxis{
		{Name: "color", Options: []string{"Black", "White"}},
		{Name: "size", Options: []string{"S", "M", "L"}},
	}
	p, err := pdom.New(id, name, "", usd(t, price), "", axes, false, t0)
	require.NoError(t, err)
	created, err := s.products.Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

func guestOwner(t *testing.T) cartdom.OwnerKey {
	t.Helper()
	k, err := cartdom.Guest(cartdom.NewGuestToken())
	require.NoError(t, err)
	return k
}

func userOwner(t *testing.T, uid string) cartdom.OwnerKey {
	t.Helper()
	k, err := cartdom.Registered(uid)
	require.NoError(t, err)
	return k
}

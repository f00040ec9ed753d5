package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	odom "storefront/internal/domain/order"
)

func TestNotifierUsecase_OrderCreatedMail(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifierUsecase(mailer, "Shop")
	s := newStores()
	p := s.addProduct(t, "tee", "Tee", "12.50")

	o, err := odom.New("o-1", guestOwner(t), "a@b.co", testAddress,
		[]odom.Item{odom.SnapshotItem(*p, cartdom.Variants{"size": "M", "color": "Black"}, 2)}, "", t0)
	require.NoError(t, err)
	env, err := odom.NewCreatedEvent(o, "mall", t0)
	require.NoError(t, err)

	require.NoError(t, n.Handle(context.Background(), env))
	require.Len(t, mailer.sent, 1)
	m := mailer.sent[0]
	assert.Equal(t, "a@b.co", m.To)
	assert.Equal(t, "[Shop] Order o-1 received", m.Subject)
	assert.Contains(t, m.Body, "2 x Tee (color: Black, size: M)")
	assert.Contains(t, m.Body, "Total: 25.00 USD")
}

func TestNotifierUsecase_StatusChangedMail(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifierUsecase(mailer, "")
	s := newStores()
	p := s.addProduct(t, "tee", "Tee", "12.50")

	o, err := odom.New("o-2", guestOwner(t), "a@b.co", testAddress, []odom.Item{odom.SnapshotItem(*p, nil, 1)}, "", t0)
	require.NoError(t, err)
	require.NoError(t, o.Transition(odom.StatusPaid, "admin", t0))
	env, err := odom.NewStatusChangedEvent(o, "console", t0)
	require.NoError(t, err)

	require.NoError(t, n.Handle(context.Background(), env))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "[Storefront] Order o-2 is now paid", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Body, "from pending to paid")
}

func TestNotifierUsecase_SkipsAndRetries(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifierUsecase(mailer, "Shop")
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, odom.Envelope{EventType: "Unrelated"}))
	require.NoError(t, n.Handle(ctx, odom.Envelope{EventType: odom.EventOrderCreated, Payload: []byte("{")}))
	assert.Empty(t, mailer.sent)

	mailer.err = errors.New("smtp down")
	err := n.Handle(ctx, odom.Envelope{
		EventType:     odom.EventOrderStatusChanged,
		CorrelationID: "o-3",
		Payload:       []byte(`{"order_id":"o-3","email":"a@b.co","from":"paid","to":"shipped"}`),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, mailer.err)
}

func TestInlinePublisher_DeliversToNotifier(t *testing.T) {
	mailer := &recordingMailer{}
	pub := NewInlinePublisher(NewNotifierUsecase(mailer, "Shop"))

	err := pub.Publish(context.Background(), odom.Envelope{
		EventType: odom.EventOrderStatusChanged,
		Payload:   []byte(`{"order_id":"o-4","email":"a@b.co","from":"shipped","to":"completed"}`),
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	var nilPub *InlinePublisher
	assert.NoError(t, nilPub.Publish(context.Background(), odom.Envelope{}))
}

// internal/platform/di/notifier/container.go
package notifier

import (
	"context"
	"errors"

	"storefront/internal/adapters/out/kafka"
	"storefront/internal/application/usecase"
	odom "storefront/internal/domain/order"
	shared "storefront/internal/platform/di/shared"
)

var (
	errNilInfra  = errors.New("di.notifier: infra is nil")
	errNoBrokers = errors.New("di.notifier: KAFKA_BROKERS is required")
)

// Workers is the number of concurrent message handlers.
const Workers = 4

// Container wires the order-event consumer to the e-mail notifier.
type Container struct {
	Infra *shared.Infra

	NotifierUC *usecase.NotifierUsecase
	Consumer   *kafka.Consumer
}

func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil {
		return nil, errNilInfra
	}
	cfg := infra.Config
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errNoBrokers
	}

	topics := odom.Topics()
	if cfg.KafkaTopicOrders != "" {
		topics = []string{cfg.KafkaTopicOrders}
	}
	return &Container{
		Infra:      infra,
		NotifierUC: usecase.NewNotifierUsecase(shared.NewMailer(ctx, infra), cfg.ShopName),
		Consumer:   kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, topics, Workers),
	}, nil
}

// Run consumes until ctx is cancelled.
func (c *Container) Run(ctx context.Context) error {
	return c.Consumer.Start(ctx, kafka.EnvelopeHandler(c.NotifierUC.Handle))
}

package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
)

// maxInFlight ограничивает число одновременно обрабатываемых сообщений.
const maxInFlight = 10

// ConsumerMessage запускает потребителя очереди queueName. Успешно
// обработанные сообщения подтверждаются. При ошибке обработчика сообщение
// возвращается в очередь один раз, повторная ошибка его отбрасывает.
// Потребитель останавливается при отмене ctx, дождавшись начатых обработчиков.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	go consume(ctx, log, delivery, handler)
	return nil
}

// consume читает deliveries до их закрытия или отмены ctx и ждет
// завершения уже запущенных обработчиков.
func consume(ctx context.Context, log *slog.Logger, deliveries <-chan amqp.Delivery, handler func([]byte) error) {
	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, maxInFlight)
	for {
		var d amqp.Delivery
		select {
		case msg, ok := <-deliveries:
			if !ok {
				return
			}
			d = msg
		case <-ctx.Done():
			return
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// Неподтвержденное сообщение брокер вернет в очередь сам.
			return
		}

		wg.Add(1)
		go func(d amqp.Delivery) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := handler(d.Body); err != nil {
				log.Error("handler failed", sl.Err(err), slog.Bool("requeue", !d.Redelivered))
				if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
					log.Error("failed to nack message", sl.Err(nackErr))
				}
				return
			}
			if ackErr := d.Ack(false); ackErr != nil {
				log.Error("failed to ack message", sl.Err(ackErr))
			}
		}(d)
	}
}

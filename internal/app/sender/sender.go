// Package sender собирает отправщик писем: читает очереди уведомлений и
// пересылает их администратору по SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/lib/smtp"
	"github.com/magabrotheeeer/storefront/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/storefront/internal/services/sender"
)

// App приложение отправщика.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	workers       int
	logger        *slog.Logger
}

// New подключается к брокеру и объявляет очереди.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(transport, cfg.AdminEmail, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		workers:       cfg.RabbitMQWorkers,
		logger:        logger,
	}, nil
}

// Run читает обе очереди до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	handlers := map[string]rabbitmq.Handler{
		rabbitmq.RoutingCredentialAlert: a.senderService.SendCredentialAlert,
		rabbitmq.RoutingExpiringClient:  a.senderService.SendExpiringClient,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range rabbitmq.NotificationQueues() {
		handler, ok := handlers[q.RoutingKey]
		if !ok {
			continue
		}
		queue := q.QueueName
		g.Go(func() error {
			a.logger.Info("consumer started", slog.String("queue", queue))
			if err := rabbitmq.ConsumerMessage(gctx, a.logger, a.ch, queue, a.workers, handler); err != nil {
				a.logger.Error("consumer stopped with error", slog.String("queue", queue), sl.Err(err))
				return err
			}
			return nil
		})
	}

	err := g.Wait()
	a.logger.Info("sender service shutting down gracefully")

	if cerr := a.ch.Close(); cerr != nil {
		a.logger.Error("failed to close channel", sl.Err(cerr))
	}
	if cerr := a.conn.Close(); cerr != nil {
		a.logger.Error("failed to close connection", sl.Err(cerr))
	}

	return err
}

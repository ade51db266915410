package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/config"
	"github.com/hobbyhub/gateway/pkg/helpers"
	"github.com/hobbyhub/gateway/pkg/mailer"
)

const prefetch = 16

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; notify worker idle")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	deliveries, err := helpers.ConsumeQueue(ch, cfg.RabbitMQNotifyQueue, cfg.AppName+"-notify", prefetch)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
	done := make(chan struct{})
	go func() {
		defer close(done)
		// in-flight sends finish after a shutdown signal
		sendCtx := context.WithoutCancel(ctx)
		for d := range deliveries {
			handle(sendCtx, mg, logger, d)
		}
	}()

	logger.WithField("queue", cfg.RabbitMQNotifyQueue).Info("notify worker listening")
	<-ctx.Done()
	logger.Info("shutting down")
	_ = ch.Cancel(cfg.AppName+"-notify", false)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("in-flight notifications abandoned")
	}
}

// handle delivers one job. Undecodable or unrenderable jobs go straight to the
// dead-letter queue; a failed send is retried once.
func handle(ctx context.Context, mg *mailer.Mailgun, logger *logrus.Logger, d amqp.Delivery) {
	entry := logger.WithField("message_id", d.MessageId)
	var job mailer.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		entry.WithError(err).Warn("undecodable notification")
		_ = d.Nack(false, false)
		return
	}
	entry = entry.WithFields(logrus.Fields{"to": job.To, "template": job.Template})
	if _, _, _, err := mailer.Render(*job.WithRecipient()); err != nil {
		entry.WithError(err).Warn("render failed")
		_ = d.Nack(false, false)
		return
	}
	id, err := mg.Deliver(ctx, job)
	if err != nil {
		entry.WithError(err).Error("send failed")
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	entry.WithField("mailgun_id", id).Info("notification sent")
	_ = d.Ack(false)
}

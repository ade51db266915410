package mailer

import (
	"context"
	"errors"
	"strings"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// Mailgun sends rendered notification jobs.
type Mailgun struct {
	client *mg.MailgunImpl
	sender string
}

// NewMailgun builds a client for domain. apiBase may be empty for the
// default US region.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, sender: sender}
}

// Deliver renders job and sends it, tagging the message with its template
// name. It returns the Mailgun message id.
func (m *Mailgun) Deliver(ctx context.Context, job EmailJob) (string, error) {
	if strings.TrimSpace(job.To) == "" {
		return "", errors.New("job has no recipient")
	}
	subject, text, html, err := Render(*job.WithRecipient())
	if err != nil {
		return "", err
	}
	msg := m.client.NewMessage(m.sender, subject, text, job.To)
	if html != "" {
		msg.SetHtml(html)
	}
	if job.Template != "" {
		if err := msg.AddTag(strings.ToLower(job.Template)); err != nil {
			return "", err
		}
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, id, err := m.client.Send(ctx, msg)
	return id, err
}

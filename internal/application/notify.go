package application

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/pkg/mailer"
)

// Publisher enqueues a JSON message for the notification worker.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier queues emails to creators when someone interacts with their content.
type Notifier struct {
	Pub     Publisher
	SiteURL string
	Logger  *logrus.Logger
}

func NewNotifier(pub Publisher, siteURL string, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, SiteURL: strings.TrimRight(siteURL, "/"), Logger: logger}
}

func (n *Notifier) enabled() bool { return n != nil && n.Pub != nil }

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) {
	if err := n.Pub.PublishJSON(ctx, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithField("template", job.Template).Warn("failed to publish notification")
	}
}

// GroupJoined tells the group creator that member joined.
func (n *Notifier) GroupJoined(ctx context.Context, g entity.Group, member *entity.User) {
	if !n.enabled() || member == nil || g.UserEmail == "" || g.OwnedBy(member.Email) {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       g.UserEmail,
		Template: mailer.TemplateGroupJoined,
		Data: map[string]any{
			"RecipientName": g.CreatorName,
			"GroupName":     g.GroupName,
			"MemberName":    member.Name(),
			"MemberEmail":   member.Email,
			"GroupURL":      n.SiteURL + "/group/" + url.PathEscape(g.ID),
		},
	})
}

// ArticleCommented tells the article author about a new comment.
func (n *Notifier) ArticleCommented(ctx context.Context, a entity.Article, c entity.Comment) {
	if !n.enabled() || a.AuthorEmail == "" || a.OwnedBy(c.AuthorEmail) {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       a.AuthorEmail,
		Template: mailer.TemplateArticleCommented,
		Data: map[string]any{
			"RecipientName": a.AuthorName,
			"ArticleTitle":  a.Title,
			"CommenterName": c.AuthorName,
			"CommentText":   c.Text,
			"ArticleURL":    n.SiteURL + "/articles/" + url.PathEscape(a.ID),
		},
	})
}

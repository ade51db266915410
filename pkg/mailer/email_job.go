package mailer

// Notification kinds carried in EmailJob.Template.
const (
	TemplateGroupJoined      = "group_joined"
	TemplateArticleCommented = "article_commented"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (with Data) or Subject with Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// WithRecipient backfills Data["RecipientEmail"] from To when it is missing.
func (j *EmailJob) WithRecipient() *EmailJob {
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	if v, ok := j.Data["RecipientEmail"].(string); !ok || v == "" {
		j.Data["RecipientEmail"] = j.To
	}
	return j
}

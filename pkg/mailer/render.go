package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
)

type notificationTemplate struct {
	subject string
	text    *texttpl.Template
	html    *htmpl.Template
}

var notificationTemplates = map[string]notificationTemplate{
	TemplateGroupJoined: {
		subject: "{{.MemberName}} joined {{.GroupName}}",
		text: texttpl.Must(texttpl.New("group_joined.txt").Parse(
			"Hi {{.RecipientName}},\n\n{{.MemberName}} ({{.MemberEmail}}) just joined your group \"{{.GroupName}}\".\n\nSee who is coming: {{.GroupURL}}\n")),
		html: htmpl.Must(htmpl.New("group_joined.html").Parse(
			`<p>Hi {{.RecipientName}},</p><p><strong>{{.MemberName}}</strong> ({{.MemberEmail}}) just joined your group <em>{{.GroupName}}</em>.</p><p><a href="{{.GroupURL}}">See who is coming</a></p>`)),
	},
	TemplateArticleCommented: {
		subject: "New comment on \"{{.ArticleTitle}}\"",
		text: texttpl.Must(texttpl.New("article_commented.txt").Parse(
			"Hi {{.RecipientName}},\n\n{{.CommenterName}} commented on \"{{.ArticleTitle}}\":\n\n{{.CommentText}}\n\nReply: {{.ArticleURL}}\n")),
		html: htmpl.Must(htmpl.New("article_commented.html").Parse(
			`<p>Hi {{.RecipientName}},</p><p><strong>{{.CommenterName}}</strong> commented on <em>{{.ArticleTitle}}</em>:</p><blockquote>{{.CommentText}}</blockquote><p><a href="{{.ArticleURL}}">Reply</a></p>`)),
	},
}

// Render fills in subject, text and html for a templated job. Jobs that already
// carry a subject and body are returned unchanged.
func Render(job EmailJob) (subject, text, html string, err error) {
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", fmt.Errorf("job for %s has neither template nor body", job.To)
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	tpl, ok := notificationTemplates[strings.ToLower(job.Template)]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", job.Template)
	}
	data := job.Data
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["RecipientName"]; !ok {
		data["RecipientName"] = "there"
	}

	var sb, tb, hb bytes.Buffer
	subj := texttpl.Must(texttpl.New("subject").Parse(tpl.subject))
	if err := subj.Execute(&sb, data); err != nil {
		return "", "", "", err
	}
	if err := tpl.text.Execute(&tb, data); err != nil {
		return "", "", "", err
	}
	if err := tpl.html.Execute(&hb, data); err != nil {
		return "", "", "", err
	}
	return sb.String(), tb.String(), hb.String(), nil
}

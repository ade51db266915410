package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_GroupJoined(t *testing.T) {
	subject, text, html, err := Render(EmailJob{
		To:       "alice@example.com",
		Template: TemplateGroupJoined,
		Data: map[string]any{
			"RecipientName": "Alice",
			"GroupName":     "Hikers",
			"MemberName":    "Bob",
			"MemberEmail":   "bob@example.com",
			"GroupURL":      "https://hobbyhub.example.com/group/g-3",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob joined Hikers", subject)
	assert.Contains(t, text, "Hi Alice,")
	assert.Contains(t, text, "https://hobbyhub.example.com/group/g-3")
	assert.Contains(t, html, `<a href="https://hobbyhub.example.com/group/g-3">`)
}

func TestRender_EscapesCommentHTML(t *testing.T) {
	_, text, html, err := Render(EmailJob{
		To:       "alice@example.com",
		Template: "Article_Commented",
		Data: map[string]any{
			"ArticleTitle":  "Knots",
			"CommenterName": "Eve",
			"CommentText":   "<script>alert(1)</script>",
			"ArticleURL":    "https://hobbyhub.example.com/articles/a1",
		},
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Hi there,")
	assert.Contains(t, text, "<script>alert(1)</script>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRender_PlainJob(t *testing.T) {
	subject, text, html, err := Render(EmailJob{To: "a@example.com", Subject: "Hi", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, "Hi", subject)
	assert.Equal(t, "body", text)
	assert.Empty(t, html)

	_, _, _, err = Render(EmailJob{To: "a@example.com"})
	assert.Error(t, err)

	_, _, _, err = Render(EmailJob{To: "a@example.com", Template: "weekly_digest"})
	assert.EqualError(t, err, `unknown template "weekly_digest"`)
}

package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/go-ddd-todo/pkg/mailer/templates"
)

func TestCompose_RawBody(t *testing.T) {
	s, txt, html, err := Compose(EmailJob{To: "a@example.com", Subject: "hi", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	assert.Equal(t, "body", txt)
	assert.Empty(t, html)
}

func TestCompose_Template(t *testing.T) {
	job := EmailJob{
		To:       "a@example.com",
		Template: mailtpl.DueReminder,
		Data:     mailtpl.NewDueReminderData("Todo", "", "A", "a@example.com", []mailtpl.DueItem{{Title: "x", Due: time.Now()}}),
	}
	s, _, html, err := Compose(job)
	require.NoError(t, err)
	assert.Contains(t, s, "1 task is due soon")
	assert.Contains(t, html, "x")
}

func TestCompose_Rejects(t *testing.T) {
	_, _, _, err := Compose(EmailJob{Subject: "no recipient", Text: "x"})
	assert.Error(t, err)

	_, _, _, err = Compose(EmailJob{To: "a@example.com"})
	assert.Error(t, err)
}

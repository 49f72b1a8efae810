package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_DueReminder(t *testing.T) {
	due := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	data := NewDueReminderData("Todo", "http://localhost:3000", "Ada", "ada@example.com", []DueItem{
		{Title: "Pay rent", Due: due},
		{Title: "<b>Call</b> mom", Due: due},
	})

	subject, text, html, err := Render(DueReminder, data)
	require.NoError(t, err)

	assert.Equal(t, "[Todo] 2 tasks are due soon", subject)
	assert.Contains(t, text, "Hi Ada,")
	assert.Contains(t, text, "- Pay rent (due Mon 04 May 2026, 09:30 UTC)")
	assert.Contains(t, html, "&lt;b&gt;Call&lt;/b&gt; mom")
	assert.NotContains(t, html, "<b>Call</b>")
}

func TestRender_SingularSubjectAndDefaults(t *testing.T) {
	data := NewDueReminderData("", "", "", "x@example.com", []DueItem{{Title: "One", Due: time.Now()}})

	subject, text, _, err := Render(DueReminder, data)
	require.NoError(t, err)

	assert.Equal(t, "[To-do] 1 task is due soon", subject)
	assert.Contains(t, text, "Hi there,")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
}

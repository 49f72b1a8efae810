package templates

import "time"

const dueLayout = "Mon 02 Jan 2006, 15:04 MST"

// DueItem is one task line in a reminder digest.
type DueItem struct {
	Title   string    `json:"Title"`
	Due     time.Time `json:"Due"`
	DueText string    `json:"DueText"`
}

// NewDueReminderData builds the job data for the due_reminder template.
func NewDueReminderData(appName, appURL, name, email string, items []DueItem) map[string]any {
	tasks := make([]DueItem, 0, len(items))
	for _, it := range items {
		it.Due = it.Due.UTC()
		it.DueText = it.Due.Format(dueLayout)
		tasks = append(tasks, it)
	}
	return ToMap(EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           DueReminder,
		AppName:        appName,
		AppURL:         appURL,
		Tasks:          tasks,
	})
}

package mailer

// EmailJob is the JSON payload put on the RabbitMQ email queue.
// Either set Subject/Text/HTML directly or name a Template with its Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "due_reminder"
	Data     map[string]any `json:"data,omitempty"`
}

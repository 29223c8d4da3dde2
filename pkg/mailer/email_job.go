package mailer

// Template names understood by the email worker.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplateResetPassword = "reset_password"
	TemplateEmailChanged  = "email_changed"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending
// email. Template selects one of the embedded templates; Data is the
// small key-value payload it renders with (link, name, addresses).
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}

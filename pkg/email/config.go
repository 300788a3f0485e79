package email

// Config holds email service configuration.
// Without Postmark tokens New returns a DevSender writing into DevDir.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@shutterdesk.app"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@shutterdesk.app"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"tmp/emails"`
}

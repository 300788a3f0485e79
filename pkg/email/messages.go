package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Tags attached to outgoing messages.
const (
	TagPasswordReset = "password-reset"
	TagWelcome       = "welcome"
)

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`<!doctype html>
<html>
<body>
<p>Hi {{.Name}},</p>
<p>Someone asked to reset the password for your {{.Studio}} account.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link expires in {{.ExpiresIn}}. If you did not ask for this, ignore this message.</p>
</body>
</html>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!doctype html>
<html>
<body>
<p>Hi {{.Name}},</p>
<p>An account was created for you at {{.Studio}}.</p>
<p><a href="{{.Link}}">Sign in</a></p>
</body>
</html>`))

type messageData struct {
	Name      string
	Studio    string
	Link      string
	ExpiresIn string
}

// PasswordResetEmail builds the message carrying a password reset link.
func PasswordResetEmail(to, name, studio, link string, ttl time.Duration) (SendEmailParams, error) {
	body, err := render(passwordResetTmpl, messageData{
		Name:      name,
		Studio:    studio,
		Link:      link,
		ExpiresIn: ttl.Round(time.Minute).String(),
	})
	if err != nil {
		return SendEmailParams{}, err
	}
	return SendEmailParams{
		SendTo:     to,
		SenderName: studio,
		Subject:    fmt.Sprintf("Reset your %s password", studio),
		BodyHTML:   body,
		Tag:        TagPasswordReset,
	}, nil
}

// WelcomeEmail builds the message sent to a newly created user.
func WelcomeEmail(to, name, studio, link string) (SendEmailParams, error) {
	body, err := render(welcomeTmpl, messageData{Name: name, Studio: studio, Link: link})
	if err != nil {
		return SendEmailParams{}, err
	}
	return SendEmailParams{
		SendTo:     to,
		SenderName: studio,
		Subject:    fmt.Sprintf("Welcome to %s", studio),
		BodyHTML:   body,
		Tag:        TagWelcome,
	}, nil
}

func render(t *template.Template, data messageData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("email: render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// Package email sends transactional messages through Postmark, or writes them
// to disk in development.
//
// New picks the implementation from Config:
//
//	sender, err := email.New(cfg)
//	msg, err := email.PasswordResetEmail(u.Email, u.FirstName, t.Name, link, time.Hour)
//	err = sender.SendEmail(ctx, msg)
//
// Every sender validates SendEmailParams first and reports failures wrapped in
// ErrInvalidParams or ErrFailedToSendEmail.
package email

package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/mrz1836/postmark"
)

type postmarkClient struct {
	client  *postmark.Client
	from    string
	replyTo string
}

func (cfg Config) validatePostmark() error {
	switch {
	case cfg.PostmarkServerToken == "":
		return fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", ErrInvalidConfig)
	case cfg.PostmarkAccountToken == "":
		return fmt.Errorf("%w: POSTMARK_ACCOUNT_TOKEN is required", ErrInvalidConfig)
	case !emailRegex.MatchString(cfg.SenderEmail):
		return fmt.Errorf("%w: SENDER_EMAIL must be a valid email address", ErrInvalidConfig)
	case !emailRegex.MatchString(cfg.SupportEmail):
		return fmt.Errorf("%w: SUPPORT_EMAIL must be a valid email address", ErrInvalidConfig)
	}
	return nil
}

// NewPostmarkClient returns a sender backed by the Postmark API. Messages go
// out from cfg.SenderEmail under the studio's name and replies reach
// cfg.SupportEmail.
func NewPostmarkClient(cfg Config) (EmailSender, error) {
	if err := cfg.validatePostmark(); err != nil {
		return nil, err
	}
	return &postmarkClient{
		client:  postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:    cfg.SenderEmail,
		replyTo: cfg.SupportEmail,
	}, nil
}

func (c *postmarkClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	from := c.from
	if params.SenderName != "" {
		from = (&mail.Address{Name: params.SenderName, Address: c.from}).String()
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:       from,
		ReplyTo:    c.replyTo,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TrackOpens: false,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("postmark: %d %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

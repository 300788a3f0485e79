package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// DevSender stores every message as one JSON file in dir so local setups can
// follow reset and welcome links without a mail provider.
type DevSender struct {
	dir string
	seq atomic.Uint64
	now func() time.Time
}

// NewDevSender returns a sender writing into dir, created on first send.
func NewDevSender(dir string) EmailSender {
	return &DevSender{dir: dir, now: time.Now}
}

type devMessage struct {
	SentAt     time.Time `json:"sent_at"`
	SenderName string    `json:"sender_name,omitempty"`
	SendTo     string    `json:"send_to"`
	Subject    string    `json:"subject"`
	Tag        string    `json:"tag,omitempty"`
	BodyHTML   string    `json:"body_html"`
}

func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrFailedToSendEmail, err)
	}

	now := d.now().UTC()
	label := params.Tag
	if label == "" {
		label = params.Subject
	}
	name := fmt.Sprintf("%s_%04d_%s.json", now.Format("20060102T150405"), d.seq.Add(1), slugify(label))

	data, err := json.MarshalIndent(devMessage{
		SentAt:     now,
		SenderName: params.SenderName,
		SendTo:     params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		BodyHTML:   params.BodyHTML,
	}, "", "  ")
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("%w: write message: %v", ErrFailedToSendEmail, err)
	}
	return nil
}

// slugify keeps ASCII letters and digits, joins everything else with single
// underscores and caps the result at 60 bytes.
func slugify(s string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			gap = false
			continue
		}
		gap = true
	}
	out := b.String()
	if len(out) > 60 {
		out = strings.TrimRight(out[:60], "_")
	}
	if out == "" {
		return "message"
	}
	return out
}

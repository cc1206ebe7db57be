package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSend struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	Enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSend {
	m := &MailerSend{
		Enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *MailerSend) Send(toEmail, toName, subject, text, html string) (string, error) {
	if !m.Enabled {
		return "", errors.New("mailer disabled (missing MAILERSEND_API_KEY or SMTP_FROM)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	// MailerSend uses X-Message-Id
	return res.Header.Get("X-Message-Id"), nil
}

func (m *MailerSend) SendWelcome(toEmail, toName, discountCode string, discountPercent int) error {
	subject := "Welcome to Lumiskin"
	text := fmt.Sprintf("Hi %s, welcome to Lumiskin! Use code %s for %d%% off your first order.", toName, discountCode, discountPercent)
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Welcome to Lumiskin! Use code <b>%s</b> for %d%% off your first order.</p>`, toName, discountCode, discountPercent)
	_, err := m.Send(toEmail, toName, subject, text, html)
	return err
}

func (m *MailerSend) SendReferralReward(toEmail, toName, discountCode string, discountPercent int) error {
	subject := "You earned a referral reward"
	text := fmt.Sprintf("Hi %s, a friend just joined with your code. Use %s for %d%% off.", toName, discountCode, discountPercent)
	html := fmt.Sprintf(`<p>Hi %s,</p><p>A friend just joined with your code. Use <b>%s</b> for %d%% off.</p>`, toName, discountCode, discountPercent)
	_, err := m.Send(toEmail, toName, subject, text, html)
	return err
}

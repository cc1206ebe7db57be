package mailer

import (
	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

// DevMailer prints mail to the log instead of sending it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("[DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return "dev", nil
}

func (d *DevMailer) SendWelcome(toEmail, toName, discountCode string, discountPercent int) error {
	logger.Info("[DEV MAIL] Welcome Email",
		"to", toEmail,
		"name", toName,
		"discount_code", discountCode,
		"discount_percent", discountPercent,
	)
	return nil
}

func (d *DevMailer) SendReferralReward(toEmail, toName, discountCode string, discountPercent int) error {
	logger.Info("[DEV MAIL] Referral Reward Email",
		"to", toEmail,
		"name", toName,
		"discount_code", discountCode,
		"discount_percent", discountPercent,
	)
	return nil
}

package mailer

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendWelcome(toEmail, toName, discountCode string, discountPercent int) error
	SendReferralReward(toEmail, toName, discountCode string, discountPercent int) error
}

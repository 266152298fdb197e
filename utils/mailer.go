package utils

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"civex/config"
)

// SendRegistrationReceived emails the team contact that the submission
// arrived and is waiting for verification. No-op when SMTP is not
// configured; callers treat failures as non-fatal.
func SendRegistrationReceived(to, event, teamName string) error {
	if config.AppConfig.SMTPHost == "" {
		return nil
	}

	subject := fmt.Sprintf("[%s] Registration received", strings.ToUpper(event))
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Registration received</h2>
			<p>Your registration <b>%s</b> for %s has been received.</p>
			<p>Our committee will verify your payment proof and documents.
			You will be contacted at this address once verification is done.</p>
		</body>
		</html>
	`, teamName, strings.ToUpper(event))

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	return d.DialAndSend(m)
}

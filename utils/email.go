package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendContactEmail forwards a contact-form message to the support
// inbox. Best effort; the message is already persisted when this runs.
func SendContactEmail(name, lastName, fromEmail, message string) error {
	from := os.Getenv("EMAIL_FROM")
	pass := os.Getenv("EMAIL_PASS")
	support := os.Getenv("SUPPORT_EMAIL")
	if from == "" || pass == "" || support == "" {
		return fmt.Errorf("email not configured")
	}

	msg := fmt.Sprintf(`Subject: FixIt - Mesazh i ri nga %s %s

Nga: %s %s <%s>

%s

FixIt
`, name, lastName, name, lastName, fromEmail, message)

	return smtp.SendMail(
		"smtp.gmail.com:587",
		smtp.PlainAuth("", from, pass, "smtp.gmail.com"),
		from,
		[]string{support},
		[]byte(msg),
	)
}

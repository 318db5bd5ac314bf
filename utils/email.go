package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

// SendWelcomeEmail sends a greeting to a newly signed-up user. Delivery is
// best effort; with no SMTP host configured it is a no-op.
func SendWelcomeEmail(email, handle string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		return nil
	}

	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to SocialApe")
	m.SetBody("text/plain", fmt.Sprintf("Hi %s,\n\nYour account is ready. Happy posting!\n\nThe SocialApe team", handle))

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send welcome email to %s: %v", email, err)
		return err
	}
	return nil
}

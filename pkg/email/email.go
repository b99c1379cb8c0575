package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Send delivers one plain-text message to each recipient.
func Send(server string, port int, username, password string, to []string, subject, body string) error {
	for _, addr := range to {
		if !strings.Contains(addr, "@") {
			return fmt.Errorf("invalid email address: %s", addr)
		}
	}

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		strings.Join(to, ", "), subject, body))
	auth := smtp.PlainAuth("", username, password, server)
	addr := fmt.Sprintf("%s:%d", server, port)
	return smtp.SendMail(addr, auth, username, to, msg)
}

package smtp

import (
	"fmt"
	smtpPkg "net/smtp"
	"os"
)

type ItfSmtp interface {
	SendEscalationNotice(conversationID string, message string) error
}

type smtp struct {
	auth    smtpPkg.Auth
	mail    string
	inbox   string
	host    string
	address string
}

func New() ItfSmtp {
	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")
	inbox := os.Getenv("SUPPORT_INBOX")

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}

	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &smtp{
		auth:    auth,
		mail:    mail,
		inbox:   inbox,
		host:    host,
		address: host + ":587",
	}
}

// SendEscalationNotice mails the support inbox when a turn escalates so a
// human can pick up the conversation.
func (s *smtp) SendEscalationNotice(conversationID string, message string) error {
	if s.inbox == "" {
		return fmt.Errorf("SUPPORT_INBOX not configured")
	}

	to := []string{s.inbox}

	body := []byte(fmt.Sprintf(
		"To: %s\r\nSubject: Escalated support conversation %s\r\n\r\nThe intake bot could not resolve an intent for conversation %s.\r\n\r\nLast user message:\r\n%s\r\n",
		s.inbox, conversationID, conversationID, message))

	if err := smtpPkg.SendMail(s.address, s.auth, s.mail, to, body); err != nil {
		return err
	}

	return nil
}

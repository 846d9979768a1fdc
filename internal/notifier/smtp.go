package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier emails issued credentials to the student. Students without an
// email address fall through to the log channel.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	fallback Notifier
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		host:     strings.TrimSpace(host),
		port:     port,
		username: strings.TrimSpace(username),
		password: password,
		from:     strings.TrimSpace(from),
		fallback: LogNotifier{},
	}
}

func (s *SMTPNotifier) Enabled() bool {
	return s.host != "" && s.port > 0 && s.from != ""
}

func (s *SMTPNotifier) NotifyCredentialIssued(ctx context.Context, cred Credential) error {
	to := strings.TrimSpace(cred.Email)
	if !s.Enabled() || to == "" {
		return s.fallback.NotifyCredentialIssued(ctx, cred)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	subject := "Your student portal account"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour student portal account has been created.\n\nUsername: %s\nTemporary password: %s\n\nPlease sign in and change your password immediately.\n",
		cred.FullName, cred.Username, cred.Password,
	)
	message := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
		body)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, message); err != nil {
		return fmt.Errorf("send credential mail: %w", err)
	}
	return nil
}

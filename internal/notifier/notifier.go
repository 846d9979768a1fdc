package notifier

import (
	"context"
	"log"
)

// Credential describes a freshly provisioned login. It carries the plaintext
// password exactly once, on its way to the delivery channel; it is never
// persisted.
type Credential struct {
	Email    string
	Username string
	Password string
	FullName string
}

// Notifier delivers new-account credentials to the student.
type Notifier interface {
	NotifyCredentialIssued(ctx context.Context, cred Credential) error
}

// LogNotifier writes credential notices to the process log. It is the
// fallback channel when SMTP is not configured; the password itself is
// withheld from the log line.
type LogNotifier struct{}

func (LogNotifier) NotifyCredentialIssued(_ context.Context, cred Credential) error {
	log.Printf("credential issued for %s (username=%s, password withheld from logs)", cred.FullName, cred.Username)
	return nil
}

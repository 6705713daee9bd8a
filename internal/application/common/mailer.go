// Package common holds ports shared by the application packages.
package common

import (
	"context"
	"errors"
)

// ErrNoRecipient is returned when a message has nobody to go to.
var ErrNoRecipient = errors.New("contact has no email address")

type Email struct {
	To       string
	ToName   string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

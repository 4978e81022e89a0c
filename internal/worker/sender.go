package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/geonotify/internal/email"
	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/sms"
)

// FatalError marks a delivery failure that retrying cannot fix. The
// worker marks the record failed without consuming its retry budget.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as non-retriable.
func Fatal(err error) error {
	return &FatalError{Err: err}
}

// IsFatal reports whether err is non-retriable.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// Sender renders and delivers one notification over a channel's
// provider.
type Sender interface {
	Send(ctx context.Context, user *model.User, n *model.Notification) error
}

type emailSender struct {
	provider email.Service
	renderer *Renderer
}

func NewEmailSender(provider email.Service, renderer *Renderer) Sender {
	return &emailSender{provider: provider, renderer: renderer}
}

func (s *emailSender) Send(ctx context.Context, user *model.User, n *model.Notification) error {
	subject, body, err := s.renderer.Email(n)
	if err != nil {
		return err
	}
	return s.provider.Send(ctx, user.Email, subject, body)
}

type smsSender struct {
	provider sms.Service
	renderer *Renderer
}

func NewSMSSender(provider sms.Service, renderer *Renderer) Sender {
	return &smsSender{provider: provider, renderer: renderer}
}

func (s *smsSender) Send(ctx context.Context, user *model.User, n *model.Notification) error {
	// No phone on file means there is nothing to retry against.
	if user.Phone == "" {
		return Fatal(fmt.Errorf("recipient has no phone number on file"))
	}
	return s.provider.Send(ctx, user.Phone, s.renderer.SMS(n))
}

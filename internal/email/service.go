package email

import (
	"context"
)

// Service is the mail transmission provider boundary.
type Service interface {
	Send(ctx context.Context, to, subject, body string) error
}

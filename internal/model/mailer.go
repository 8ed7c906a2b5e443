package model

import "context"

// Mailer delivers magic-link emails. Send failures surface to the caller;
// there are no retries.
type Mailer interface {
	SendMagicLink(ctx context.Context, user User, token string) error
}

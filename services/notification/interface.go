package notification

import (
	"context"
	"errors"
)

// Channels understood by the router.
const (
	ChannelPush  = "push"
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

var (
	ErrUnknownChannel  = errors.New("notification: unknown channel")
	ErrUnknownTemplate = errors.New("notification: unknown template")
	ErrNoRecipient     = errors.New("notification: no recipient")
	ErrNotConfigured   = errors.New("notification: channel is not configured")
)

// Dispatcher sends a templated notification on one channel. Params carry the
// template data; "to" holds the recipient for sms and email.
type Dispatcher interface {
	Notify(ctx context.Context, channel, template string, params map[string]string) error
}

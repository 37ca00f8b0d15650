package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type PushChannel interface {
	SendTopic(ctx context.Context, title, body string, data map[string]string) error
}

type SMSChannel interface {
	SendSMS(ctx context.Context, to, body string) error
}

type EmailChannel interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Router renders a template and hands it to the sender of the channel.
// A nil sender leaves its channel unconfigured.
type Router struct {
	push   PushChannel
	sms    SMSChannel
	email  EmailChannel
	logger *zap.Logger
}

func NewRouter(push PushChannel, sms SMSChannel, email EmailChannel, logger *zap.Logger) *Router {
	return &Router{push: push, sms: sms, email: email, logger: logger}
}

func (r *Router) Notify(ctx context.Context, channel, template string, params map[string]string) error {
	title, body, err := Render(template, params)
	if err != nil {
		return err
	}

	switch channel {
	case ChannelPush:
		if r.push == nil {
			return fmt.Errorf("push: %w", ErrNotConfigured)
		}
		data := map[string]string{"type": template}
		if n, ok := params["number"]; ok {
			data["reservationNumber"] = n
		}
		err = r.push.SendTopic(ctx, title, body, data)
	case ChannelSMS:
		if r.sms == nil {
			return fmt.Errorf("sms: %w", ErrNotConfigured)
		}
		err = r.sms.SendSMS(ctx, params["to"], body)
	case ChannelEmail:
		if r.email == nil {
			return fmt.Errorf("email: %w", ErrNotConfigured)
		}
		err = r.email.SendEmail(ctx, params["to"], title, body)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}

	if err != nil {
		return err
	}
	r.logger.Debug("Notification sent", zap.String("channel", channel), zap.String("template", template))
	return nil
}

package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// fcmClient is the part of *messaging.Client used here.
type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSender publishes to an FCM topic the back-office apps subscribe to.
type PushSender struct {
	client fcmClient
	topic  string
}

func NewPushSender(client *messaging.Client, topic string) *PushSender {
	if client == nil {
		return &PushSender{topic: topic}
	}
	return &PushSender{client: client, topic: topic}
}

func (p *PushSender) SendTopic(ctx context.Context, title, body string, data map[string]string) error {
	if p.client == nil {
		return fmt.Errorf("push: %w", ErrNotConfigured)
	}
	msg := &messaging.Message{
		Topic: p.topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	if _, err := p.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("push: failed to send FCM message: %w", err)
	}
	return nil
}

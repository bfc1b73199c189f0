// Package notify delivers push notifications between users through FCM.
package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Sender delivers a push notification to a registered device token.
type Sender interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}

// FCMSender sends notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender initializes the messaging client from a service-account
// credentials JSON blob.
func NewFCMSender(ctx context.Context, credentialsJSON string) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging client: %w", err)
	}
	return &FCMSender{client: client}, nil
}

// Send pushes one notification to the given device token.
func (s *FCMSender) Send(ctx context.Context, deviceToken, title, body string) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	return err
}

var _ Sender = (*FCMSender)(nil)

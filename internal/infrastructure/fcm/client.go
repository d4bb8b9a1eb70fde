package fcm

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// ChannelID is the Android notification channel signal alerts are posted to.
const ChannelID = "signal_alerts"

var ErrDisabled = errors.New("fcm: client not initialized")

type Client struct {
	client *messaging.Client
	logger zerolog.Logger
}

// NewClient initializes Firebase Cloud Messaging. Credentials come from a file path or,
// failing that, an inline JSON document. Without either the client is returned disabled.
func NewClient(ctx context.Context, credentialsPath, credentialsJSON string, logger zerolog.Logger) (*Client, error) {
	logger = logger.With().Str("component", "fcm").Logger()

	var opt option.ClientOption
	switch {
	case credentialsPath != "":
		opt = option.WithCredentialsFile(credentialsPath)
	case credentialsJSON != "":
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	default:
		logger.Warn().Msg("no Firebase credentials found, push notifications disabled")
		return &Client{logger: logger}, nil
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	logger.Info().Msg("Firebase Cloud Messaging initialized")
	return &Client{client: client, logger: logger}, nil
}

// SendMulticast delivers one notification to every token and returns how many succeeded.
// It fails only when no token could be reached.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
	if c.client == nil {
		return 0, ErrDisabled
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: ChannelID,
				Priority:  messaging.PriorityHigh,
			},
		},
	}

	response, err := c.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, fmt.Errorf("error sending multicast: %w", err)
	}

	c.logger.Debug().
		Int("success", response.SuccessCount).
		Int("failure", response.FailureCount).
		Msg("multicast sent")

	if response.SuccessCount == 0 {
		return 0, fmt.Errorf("multicast reached none of %d devices", len(tokens))
	}
	return response.SuccessCount, nil
}

// IsEnabled returns true if FCM client is initialized
func (c *Client) IsEnabled() bool {
	return c.client != nil
}

package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

const DefaultResendURL = "https://api.resend.com/"

var ErrDisabled = errors.New("email: no Resend API key configured")

// ResendClient sends transactional mail through Resend.
type ResendClient struct {
	client  *resend.Client
	from    string
	enabled bool
}

// NewResendClient builds a client for apiKey. baseURL overrides the API root and is
// mostly useful in tests; an empty or unparsable value keeps the SDK default.
func NewResendClient(apiKey, from, baseURL string) *ResendClient {
	client := resend.NewCustomClient(&http.Client{Timeout: 10 * time.Second}, apiKey)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		if u, err := url.Parse(baseURL); err == nil {
			client.BaseURL = u
		}
	}
	return &ResendClient{client: client, from: from, enabled: apiKey != ""}
}

func (c *ResendClient) IsEnabled() bool {
	return c.enabled
}

type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Send posts msg and returns the Resend message id.
func (c *ResendClient) Send(ctx context.Context, msg Message) (string, error) {
	if !c.IsEnabled() {
		return "", ErrDisabled
	}
	if len(msg.To) == 0 {
		return "", errors.New("email: no recipients")
	}

	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend send: %w", err)
	}
	return sent.Id, nil
}

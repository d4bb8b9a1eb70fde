package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
	"signal-backend/internal/infrastructure/cache"
	"signal-backend/internal/infrastructure/email"
)

// Alert is what a channel delivers for one notifiable change.
type Alert struct {
	Signal domain.Signal
	Change domain.SignalChange
}

// Channel is one notification transport.
type Channel interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, alert Alert) error
}

// NotificationService fans alerts out to every enabled channel, records each attempt and
// suppresses repeats of the same symbol and decision inside the cooldown window.
type NotificationService struct {
	channels []Channel
	alerts   domain.AlertRepository
	cooldown time.Duration
	clock    cache.Clock
	logger   zerolog.Logger

	lastSent map[string]time.Time // symbol:decision -> last delivery
	mu       sync.Mutex
}

func NewNotificationService(alerts domain.AlertRepository, cooldown time.Duration, clock cache.Clock, logger zerolog.Logger, channels ...Channel) *NotificationService {
	if clock == nil {
		clock = cache.SystemClock
	}
	return &NotificationService{
		channels: channels,
		alerts:   alerts,
		cooldown: cooldown,
		clock:    clock,
		logger:   logger.With().Str("component", "notifier").Logger(),
		lastSent: make(map[string]time.Time),
	}
}

// Notify reports whether at least one channel delivered the alert. Failures are recorded
// and logged, never returned.
func (s *NotificationService) Notify(ctx context.Context, sig domain.Signal, change domain.SignalChange) bool {
	key := change.CoinSymbol + ":" + string(change.NewDecision)
	now := s.clock.Now()

	// The slot is claimed before delivery so a concurrent call for the same key is
	// suppressed, and released again if nothing was delivered.
	s.mu.Lock()
	last, seen := s.lastSent[key]
	if seen && now.Sub(last) < s.cooldown {
		s.mu.Unlock()
		s.logger.Debug().Str("symbol", change.CoinSymbol).Str("decision", string(change.NewDecision)).Msg("alert suppressed by cooldown")
		return false
	}
	s.lastSent[key] = now
	s.mu.Unlock()

	alert := Alert{Signal: sig, Change: change}
	delivered := false
	for _, ch := range s.channels {
		if !ch.Enabled() {
			continue
		}

		record := domain.SignalAlert{
			Channel:   ch.Name(),
			Change:    change,
			Price:     sig.Coin.CurrentPrice,
			CreatedAt: now,
		}
		if err := ch.Send(ctx, alert); err != nil {
			record.Error = err.Error()
			s.logger.Error().Err(err).Str("channel", ch.Name()).Str("symbol", change.CoinSymbol).Msg("alert delivery failed")
		} else {
			sentAt := s.clock.Now()
			record.SentAt = &sentAt
			delivered = true
		}

		if err := s.alerts.SaveAlert(ctx, &record); err != nil {
			s.logger.Error().Err(err).Str("channel", ch.Name()).Msg("failed to record alert")
		}
	}

	s.mu.Lock()
	if !delivered {
		if seen {
			s.lastSent[key] = last
		} else {
			delete(s.lastSent, key)
		}
	}
	for k, t := range s.lastSent {
		if now.Sub(t) > 2*s.cooldown {
			delete(s.lastSent, k)
		}
	}
	s.mu.Unlock()

	return delivered
}

// EmailSender is satisfied by email.ResendClient.
type EmailSender interface {
	IsEnabled() bool
	Send(ctx context.Context, msg email.Message) (string, error)
}

type EmailChannel struct {
	sender     EmailSender
	recipients []string
}

func NewEmailChannel(sender EmailSender, recipients []string) *EmailChannel {
	return &EmailChannel{sender: sender, recipients: recipients}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Enabled() bool {
	return c.sender.IsEnabled() && len(c.recipients) > 0
}

func (c *EmailChannel) Send(ctx context.Context, alert Alert) error {
	subject, body, err := renderEmail(alert)
	if err != nil {
		return err
	}
	_, err = c.sender.Send(ctx, email.Message{To: c.recipients, Subject: subject, HTML: body})
	return err
}

var emailTemplate = template.Must(template.New("signal").Parse(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e5e7eb; border-radius: 8px;">
  <h2 style="color: {{.Color}}; margin-top: 0;">New {{.Decision}} signal on {{.Symbol}}</h2>
  <p><strong>Decision:</strong> <span style="color: {{.Color}}; font-weight: bold;">{{.Decision}}</span></p>
  <p><strong>Score:</strong> {{.Score}}/100</p>
  <p><strong>Price:</strong> {{.Price}}</p>
  {{- with .Levels}}
  <p><strong>Stop loss:</strong> {{printf "%.6g" .StopLoss}} &middot; <strong>Take profit:</strong> {{printf "%.6g" .TakeProfit}}</p>
  {{- end}}
  <h3 style="font-size: 16px;">Summary</h3>
  <p style="color: #4b5563; line-height: 1.5;">{{.Justification}}</p>
</div>`))

func decisionColor(d domain.Decision) string {
	switch d {
	case domain.DecisionLong:
		return "#10b981"
	case domain.DecisionShort:
		return "#ef4444"
	}
	return "#6b7280"
}

func renderEmail(alert Alert) (subject, body string, err error) {
	sig := alert.Signal
	subject = fmt.Sprintf("[SIGNAL] %s - %s (%d/100)", sig.Coin.Symbol, sig.Decision, sig.Score)

	var buf bytes.Buffer
	err = emailTemplate.Execute(&buf, map[string]any{
		"Symbol":        sig.Coin.Symbol,
		"Decision":      string(sig.Decision),
		"Color":         decisionColor(sig.Decision),
		"Score":         sig.Score,
		"Price":         fmt.Sprintf("$%.6g", sig.Coin.CurrentPrice),
		"Levels":        sig.TradeLevels,
		"Justification": sig.Justification,
	})
	if err != nil {
		return "", "", fmt.Errorf("render alert email: %w", err)
	}
	return subject, buf.String(), nil
}

// PushSender is satisfied by fcm.Client.
type PushSender interface {
	IsEnabled() bool
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error)
}

type PushChannel struct {
	sender PushSender
	tokens domain.DeviceTokenStore
}

func NewPushChannel(sender PushSender, tokens domain.DeviceTokenStore) *PushChannel {
	return &PushChannel{sender: sender, tokens: tokens}
}

func (c *PushChannel) Name() string { return "push" }

func (c *PushChannel) Enabled() bool { return c.sender.IsEnabled() }

func (c *PushChannel) Send(ctx context.Context, alert Alert) error {
	tokens, err := c.tokens.GetAllTokens(ctx)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return fmt.Errorf("no registered devices")
	}

	sig := alert.Signal
	title := fmt.Sprintf("%s %s %s", decisionEmoji(sig.Decision), displaySymbol(sig.Coin.Symbol), sig.Decision)
	body := fmt.Sprintf("Score: %d | Price: $%.5g", sig.Score, sig.Coin.CurrentPrice)
	data := map[string]string{
		"symbol":     sig.Coin.Symbol,
		"decision":   string(sig.Decision),
		"score":      fmt.Sprintf("%d", sig.Score),
		"price":      fmt.Sprintf("%.8g", sig.Coin.CurrentPrice),
		"changeType": string(alert.Change.ChangeType),
	}

	_, err = c.sender.SendMulticast(ctx, tokens, title, body, data)
	return err
}

func decisionEmoji(d domain.Decision) string {
	if d == domain.DecisionShort {
		return "🔻"
	}
	return "🚀"
}

// displaySymbol strips the USDT quote asset.
func displaySymbol(symbol string) string {
	if trimmed := strings.TrimSuffix(symbol, "USDT"); trimmed != "" {
		return trimmed
	}
	return symbol
}

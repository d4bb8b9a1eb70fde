package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
	"signal-backend/internal/infrastructure/email"
	"signal-backend/internal/repository"
)

type stubChannel struct {
	name    string
	enabled bool
	err     error
	sent    int
}

func (c *stubChannel) Name() string  { return c.name }
func (c *stubChannel) Enabled() bool { return c.enabled }
func (c *stubChannel) Send(context.Context, Alert) error {
	c.sent++
	return c.err
}

func longSignal() (domain.Signal, domain.SignalChange) {
	sig := domain.Signal{
		Coin:          domain.Coin{Symbol: "BTCUSDT", CurrentPrice: 115},
		Decision:      domain.DecisionLong,
		Score:         84,
		TradeLevels:   &domain.TradeLevels{EntryPrice: 115, TakeProfit: 120, StopLoss: 111},
		Justification: "Bullish trend <confirmed>",
	}
	change := domain.SignalChange{
		CoinSymbol:  "BTCUSDT",
		ChangeType:  domain.ChangeNewSignal,
		NewScore:    84,
		NewDecision: domain.DecisionLong,
	}
	return sig, change
}

func TestNotificationService_RecordsEveryAttempt(t *testing.T) {
	alerts := repository.NewInMemoryAlertRepository()
	good := &stubChannel{name: "email", enabled: true}
	bad := &stubChannel{name: "push", enabled: true, err: errors.New("fcm down")}
	off := &stubChannel{name: "sms", enabled: false}
	svc := NewNotificationService(alerts, 30*time.Minute, newFakeClock(), zerolog.Nop(), good, bad, off)

	sig, change := longSignal()
	if !svc.Notify(context.Background(), sig, change) {
		t.Fatal("expected delivery through the email channel")
	}
	if off.sent != 0 {
		t.Error("disabled channel was used")
	}

	recorded := alerts.All()
	if len(recorded) != 2 {
		t.Fatalf("recorded %d alerts, want 2", len(recorded))
	}
	for _, a := range recorded {
		switch a.Channel {
		case "email":
			if a.SentAt == nil || a.Error != "" {
				t.Errorf("email alert = %+v", a)
			}
		case "push":
			if a.SentAt != nil || a.Error != "fcm down" {
				t.Errorf("push alert = %+v", a)
			}
		}
		if a.Price != 115 || a.Change.CoinSymbol != "BTCUSDT" {
			t.Errorf("alert payload = %+v", a)
		}
	}
}

func TestNotificationService_Cooldown(t *testing.T) {
	clock := newFakeClock()
	ch := &stubChannel{name: "email", enabled: true}
	svc := NewNotificationService(repository.NewInMemoryAlertRepository(), 30*time.Minute, clock, zerolog.Nop(), ch)
	sig, change := longSignal()
	ctx := context.Background()

	svc.Notify(ctx, sig, change)
	clock.Advance(10 * time.Minute)
	if svc.Notify(ctx, sig, change) {
		t.Error("repeat inside cooldown was delivered")
	}

	short := change
	short.NewDecision = domain.DecisionShort
	if !svc.Notify(ctx, sig, short) {
		t.Error("different decision should not share the cooldown")
	}

	clock.Advance(21 * time.Minute)
	if !svc.Notify(ctx, sig, change) {
		t.Error("delivery after cooldown was suppressed")
	}
	if ch.sent != 3 {
		t.Errorf("channel sent %d, want 3", ch.sent)
	}
}

func TestNotificationService_FailedDeliveryDoesNotStartCooldown(t *testing.T) {
	ch := &stubChannel{name: "email", enabled: true, err: errors.New("timeout")}
	svc := NewNotificationService(repository.NewInMemoryAlertRepository(), time.Hour, newFakeClock(), zerolog.Nop(), ch)
	sig, change := longSignal()

	svc.Notify(context.Background(), sig, change)
	ch.err = nil
	if !svc.Notify(context.Background(), sig, change) {
		t.Error("retry after failed delivery was suppressed")
	}
}

type fakeEmailSender struct {
	enabled bool
	msgs    []email.Message
}

func (s *fakeEmailSender) IsEnabled() bool { return s.enabled }
func (s *fakeEmailSender) Send(_ context.Context, msg email.Message) (string, error) {
	s.msgs = append(s.msgs, msg)
	return "id", nil
}

type blockingChannel struct {
	entered chan struct{}
	release chan struct{}
	sent    int
}

func (c *blockingChannel) Name() string  { return "email" }
func (c *blockingChannel) Enabled() bool { return true }
func (c *blockingChannel) Send(context.Context, Alert) error {
	c.sent++
	c.entered <- struct{}{}
	<-c.release
	return nil
}

func TestNotificationService_ConcurrentDuplicateSuppressed(t *testing.T) {
	ch := &blockingChannel{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewNotificationService(repository.NewInMemoryAlertRepository(), 30*time.Minute, newFakeClock(), zerolog.Nop(), ch)
	sig, change := longSignal()
	ctx := context.Background()

	first := make(chan bool)
	go func() { first <- svc.Notify(ctx, sig, change) }()
	<-ch.entered

	if svc.Notify(ctx, sig, change) {
		t.Error("duplicate alert delivered while the first was in flight")
	}
	close(ch.release)
	if !<-first {
		t.Error("first alert not delivered")
	}
	if ch.sent != 1 {
		t.Errorf("sent = %d, want 1", ch.sent)
	}
}

func TestEmailChannel(t *testing.T) {
	sender := &fakeEmailSender{enabled: true}
	if NewEmailChannel(sender, nil).Enabled() {
		t.Error("channel without recipients should be disabled")
	}

	ch := NewEmailChannel(sender, []string{"ops@example.com"})
	sig, change := longSignal()
	if err := ch.Send(context.Background(), Alert{Signal: sig, Change: change}); err != nil {
		t.Fatal(err)
	}

	msg := sender.msgs[0]
	if msg.Subject != "[SIGNAL] BTCUSDT - LONG (84/100)" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "84/100") || !strings.Contains(msg.HTML, "Take profit") {
		t.Errorf("body missing score or levels: %s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "<confirmed>") {
		t.Error("justification was not escaped")
	}
}

type fakePushSender struct {
	tokens []string
	title  string
}

func (s *fakePushSender) IsEnabled() bool { return true }
func (s *fakePushSender) SendMulticast(_ context.Context, tokens []string, title, _ string, _ map[string]string) (int, error) {
	s.tokens, s.title = tokens, title
	return len(tokens), nil
}

func TestPushChannel(t *testing.T) {
	ctx := context.Background()
	tokens := repository.NewTokenRepository()
	sender := &fakePushSender{}
	ch := NewPushChannel(sender, tokens)
	sig, change := longSignal()

	if err := ch.Send(ctx, Alert{Signal: sig, Change: change}); err == nil {
		t.Error("expected error without registered devices")
	}

	tokens.RegisterToken(ctx, "device-1", "android")
	if err := ch.Send(ctx, Alert{Signal: sig, Change: change}); err != nil {
		t.Fatal(err)
	}
	if len(sender.tokens) != 1 || !strings.Contains(sender.title, "BTC LONG") {
		t.Errorf("sent to %v with title %q", sender.tokens, sender.title)
	}
}

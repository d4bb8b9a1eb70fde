package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type sentEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func TestResendClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("request = %s %s, want POST /emails", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer re_test" {
			t.Errorf("Authorization = %q", got)
		}
		var body sentEmail
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.From != "alerts@example.com" || len(body.To) != 2 || body.Subject != "LONG BTCUSDT" || body.HTML != "<p>hi</p>" {
			t.Errorf("body = %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	c := NewResendClient("re_test", "alerts@example.com", srv.URL)
	id, err := c.Send(context.Background(), Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "LONG BTCUSDT",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "msg_123" {
		t.Errorf("id = %q", id)
	}
}

func TestResendClient_Errors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"invalid from"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	msg := Message{To: []string{"a@example.com"}, Subject: "s"}

	if _, err := NewResendClient("", "x", srv.URL).Send(ctx, msg); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	if _, err := NewResendClient("re_test", "x", srv.URL).Send(ctx, Message{}); err == nil {
		t.Error("expected error without recipients")
	}
	if calls != 0 {
		t.Errorf("rejected sends reached the API %d times", calls)
	}

	if _, err := NewResendClient("re_test", "x", srv.URL).Send(ctx, msg); err == nil {
		t.Error("expected error on 422")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

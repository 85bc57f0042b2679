package messaging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidEmail(t *testing.T) {
	valid := []string{"user@gmail.com", "a.b@corp.example.org", "x@y.io"}
	invalid := []string{"user@gmail", "user.gmail.com", "@x.com", "user@.com", "has space@x.com"}

	for _, s := range valid {
		assert.True(t, ValidEmail(s), s)
	}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), s)
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{"+91 9876543210", "+14155552671", "+44 20 7123 4567"}
	invalid := []string{"9876543210", "+1234", "+1 234", "phone", ""}

	for _, s := range valid {
		assert.True(t, ValidPhone(s), s)
	}
	for _, s := range invalid {
		assert.False(t, ValidPhone(s), s)
	}
}

func TestTrackingURLs(t *testing.T) {
	pixel, tracked := TrackingURLs("http://localhost:8080", "d1", "https://secure-verify-ab12cd.com/verify")

	assert.Equal(t, "http://localhost:8080/api/track?id=d1&type=open", pixel)

	u, err := url.Parse(tracked)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "d1", q.Get("id"))
	assert.Equal(t, "click", q.Get("type"))
	assert.Equal(t, "https://secure-verify-ab12cd.com/verify", q.Get("redirect"))
}

func TestEmailJSSenderConfigured(t *testing.T) {
	var got emailJSRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewEmailJSSender(server.URL, "http://localhost:8080", "IT Security Team", discardLogger())
	cfg := &entities.EmailConfig{
		EmailJS: &entities.EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "pk"},
	}
	msg := Message{
		DrillID: "d1", Contact: "alice@corp.example", Name: "Alice",
		Subject: "Action Required", Content: "Dear Alice,", ScamLink: "https://verify-now-x1y2z3.net/verify",
	}

	simulated, err := sender.Send(context.Background(), cfg, msg)
	require.NoError(t, err)
	assert.False(t, simulated)

	assert.Equal(t, "svc", got.ServiceID)
	assert.Equal(t, "tpl", got.TemplateID)
	assert.Equal(t, "pk", got.UserID)
	assert.Equal(t, "alice@corp.example", got.TemplateParams["to_email"])
	assert.Equal(t, "IT Security Team", got.TemplateParams["from_name"])
	assert.Contains(t, got.TemplateParams["scam_link"], "type=click")
	assert.Contains(t, got.TemplateParams["tracking_pixel"], "type=open")
}

func TestEmailJSSenderSimulatesWhenUnconfigured(t *testing.T) {
	// Incomplete credentials must never reach the network.
	sender := NewEmailJSSender("http://127.0.0.1:1", "http://localhost:8080", "IT Security Team", discardLogger())

	partials := []*entities.EmailConfig{
		nil,
		{},
		{EmailJS: &entities.EmailJSConfig{ServiceID: "svc"}},
		{EmailJS: &entities.EmailJSConfig{ServiceID: "svc", TemplateID: "tpl"}},
	}
	for _, cfg := range partials {
		simulated, err := sender.Send(context.Background(), cfg, Message{DrillID: "d1"})
		require.NoError(t, err)
		assert.True(t, simulated)
	}
}

func TestEmailJSSenderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad template", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	sender := NewEmailJSSender(server.URL, "http://localhost:8080", "IT Security Team", discardLogger())
	cfg := &entities.EmailConfig{
		EmailJS: &entities.EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "pk"},
	}

	_, err := sender.Send(context.Background(), cfg, Message{DrillID: "d1"})
	assert.ErrorIs(t, err, errs.ErrDeliveryFailed)
}

func TestSMSSender(t *testing.T) {
	var gotAuth string
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sender := NewSMSSender(server.URL, "Security Team", 0, discardLogger())
	cfg := &entities.EmailConfig{SMS: &entities.SMSConfig{APIKey: "key", APISecret: "secret"}}
	msg := Message{DrillID: "d1", Contact: "+14155552671", Content: "Dear Alice,", ScamLink: "https://x.com/verify"}

	simulated, err := sender.Send(context.Background(), cfg, msg)
	require.NoError(t, err)
	assert.False(t, simulated)

	// Basic key:secret
	assert.Equal(t, "Basic a2V5OnNlY3JldA==", gotAuth)
	assert.Equal(t, "+14155552671", gotForm.Get("To"))
	assert.Equal(t, "Dear Alice, https://x.com/verify", gotForm.Get("Body"))
	assert.Equal(t, "Security Team", gotForm.Get("From"))
}

func TestSMSSenderSimulatesWhenUnconfigured(t *testing.T) {
	sender := NewSMSSender("http://127.0.0.1:1", "Security Team", 0, discardLogger())

	simulated, err := sender.Send(context.Background(), nil, Message{DrillID: "d1"})
	require.NoError(t, err)
	assert.True(t, simulated)
}

func TestWhatsAppSender(t *testing.T) {
	var gotAuth string
	var got whatsAppRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWhatsAppSender(server.URL, "Security Team", 0, discardLogger())
	cfg := &entities.EmailConfig{WhatsApp: &entities.WhatsAppConfig{APIKey: "wa_key", FromNumber: "+15550001111"}}
	msg := Message{DrillID: "d1", Contact: "+919876543210", Content: "Hello", ScamLink: "https://x.com/verify"}

	simulated, err := sender.Send(context.Background(), cfg, msg)
	require.NoError(t, err)
	assert.False(t, simulated)

	assert.Equal(t, "Bearer wa_key", gotAuth)
	assert.Equal(t, "+919876543210", got.To)
	assert.Equal(t, "Hello https://x.com/verify", got.Body)
	assert.Equal(t, "+15550001111", got.From)
}

func TestBroadcasterRegisterAfterStop(t *testing.T) {
	b := NewTrackBroadcaster(discardLogger())
	go b.Run()
	b.Stop()

	client := &TrackClient{Send: make(chan []byte, 1)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Register(client)
		b.Unregister(client)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after stop")
	}

	// The refused client's send channel is closed so its write pump exits.
	_, open := <-client.Send
	assert.False(t, open)
}

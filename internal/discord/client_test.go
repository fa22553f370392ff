package discord

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"bgswatch/internal/fault"
)

type recordingServer struct {
	mu       sync.Mutex
	messages []Message
	status   int
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	status := s.status
	s.mu.Unlock()
	if status == 0 {
		status = http.StatusNoContent
	}
	w.WriteHeader(status)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientSendEmbedsBatches(t *testing.T) {
	recorder := &recordingServer{}
	server := httptest.NewServer(recorder)
	defer server.Close()

	client := NewClient(server.Client(), time.Second, discardLogger())
	embeds := repeat(23, 100)
	if err := client.SendEmbeds(context.Background(), server.URL, embeds); err != nil {
		t.Fatalf("send embeds: %v", err)
	}

	if len(recorder.messages) != 3 {
		t.Fatalf("requests = %d, want 3", len(recorder.messages))
	}
	total := 0
	for _, msg := range recorder.messages {
		if len(msg.Embeds) > MaxEmbedsPerMessage {
			t.Fatalf("request carried %d embeds", len(msg.Embeds))
		}
		if msg.Content != "" {
			t.Fatalf("unexpected content in embed request")
		}
		total += len(msg.Embeds)
	}
	if total != 23 {
		t.Fatalf("delivered %d embeds, want 23", total)
	}
}

func TestClientSendText(t *testing.T) {
	recorder := &recordingServer{}
	server := httptest.NewServer(recorder)
	defer server.Close()

	client := NewClient(server.Client(), time.Second, discardLogger())
	if err := client.SendText(context.Background(), server.URL, "no activity"); err != nil {
		t.Fatalf("send text: %v", err)
	}
	if len(recorder.messages) != 1 || recorder.messages[0].Content != "no activity" {
		t.Fatalf("unexpected messages: %+v", recorder.messages)
	}
}

func TestClientNon2xxIsNetworkFault(t *testing.T) {
	recorder := &recordingServer{status: http.StatusTooManyRequests}
	server := httptest.NewServer(recorder)
	defer server.Close()

	client := NewClient(server.Client(), time.Second, discardLogger())
	err := client.SendEmbeds(context.Background(), server.URL, repeat(15, 10))
	if err == nil {
		t.Fatalf("expected error")
	}
	if fault.KindOf(err) != fault.KindNetwork {
		t.Fatalf("fault kind = %v, want network", fault.KindOf(err))
	}
	if len(recorder.messages) != 1 {
		t.Fatalf("requests = %d, want delivery to stop after first failed chunk", len(recorder.messages))
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.Client(), 50*time.Millisecond, discardLogger())
	start := time.Now()
	err := client.SendText(context.Background(), server.URL, "hello")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not enforced")
	}
}

type fakeSender struct {
	mu     sync.Mutex
	embeds map[string][][]Embed
	texts  map[string][]string
	fail   map[string]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{embeds: map[string][][]Embed{}, texts: map[string][]string{}, fail: map[string]bool{}}
}

func (f *fakeSender) SendEmbeds(ctx context.Context, url string, embeds []Embed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[url] {
		return fault.Network("posting webhook", errors.New("refused"))
	}
	f.embeds[url] = append(f.embeds[url], embeds)
	return nil
}

func (f *fakeSender) SendText(ctx context.Context, url, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[url] {
		return fault.Network("posting webhook", errors.New("refused"))
	}
	f.texts[url] = append(f.texts[url], content)
	return nil
}

func TestRouterFansOutAndContinuesAfterFailure(t *testing.T) {
	sender := newFakeSender()
	sender.fail["https://hooks/a"] = true
	router := NewRouter(sender, map[Category][]string{
		CategoryConflict: {"https://hooks/a", "https://hooks/b"},
		CategoryDebug:    nil,
	}, discardLogger())

	err := router.SendEmbeds(context.Background(), CategoryConflict, []Embed{{Description: "⚔️ Sol"}})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if !strings.Contains(err.Error(), "conflict webhook 0") {
		t.Fatalf("error %q does not name the failed webhook", err)
	}
	if len(sender.embeds["https://hooks/b"]) != 1 {
		t.Fatalf("second webhook did not receive the message")
	}

	if router.Configured(CategoryDebug) {
		t.Fatalf("debug should not be configured")
	}
	if err := router.SendText(context.Background(), CategoryDebug, "ignored"); err != nil {
		t.Fatalf("unconfigured category should be a no-op, got %v", err)
	}
}

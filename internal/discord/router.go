package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

type Category string

const (
	CategoryBGS      Category = "bgs"
	CategoryConflict Category = "conflict"
	CategoryShoutout Category = "shoutout"
	CategoryDebug    Category = "debug"
)

var errNoWebhooks = errors.New("no webhooks configured")

type sender interface {
	SendEmbeds(ctx context.Context, url string, embeds []Embed) error
	SendText(ctx context.Context, url, content string) error
}

// Router fans a message out to every URL configured for a category.
// A failure on one URL does not stop delivery to the others.
type Router struct {
	client sender
	urls   map[Category][]string
	logger *slog.Logger
}

func NewRouter(client sender, urls map[Category][]string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	copied := make(map[Category][]string, len(urls))
	for category, list := range urls {
		if len(list) == 0 {
			continue
		}
		copied[category] = append([]string(nil), list...)
	}
	return &Router{client: client, urls: copied, logger: logger}
}

func (r *Router) Configured(category Category) bool {
	return len(r.urls[category]) > 0
}

func (r *Router) SendEmbeds(ctx context.Context, category Category, embeds []Embed) error {
	if len(embeds) == 0 {
		return nil
	}
	return r.fanOut(category, func(url string) error {
		return r.client.SendEmbeds(ctx, url, embeds)
	})
}

func (r *Router) SendText(ctx context.Context, category Category, content string) error {
	return r.fanOut(category, func(url string) error {
		return r.client.SendText(ctx, url, content)
	})
}

func (r *Router) fanOut(category Category, send func(url string) error) error {
	urls := r.urls[category]
	if len(urls) == 0 {
		r.logger.Debug("skipping delivery", "category", category, "reason", errNoWebhooks)
		return nil
	}

	var errs []error
	for i, url := range urls {
		if err := send(url); err != nil {
			r.logger.Warn("webhook delivery failed", "category", category, "webhook", i, "error", err)
			errs = append(errs, fmt.Errorf("%s webhook %d: %w", category, i, err))
		}
	}
	return errors.Join(errs...)
}

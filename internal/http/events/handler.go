// Package events streams domain events to HTTP clients as server-sent events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/WOOWTECH/ha-finance/internal/event"
)

const (
	bufferSize        = 32
	keepAliveInterval = 15 * time.Second
)

type Subscriber interface {
	Subscribe(fn event.Handler) (unsubscribe func())
}

type Handler struct {
	bus Subscriber
}

func NewHandler(bus Subscriber) *Handler {
	return &Handler{bus: bus}
}

// ServeHTTP holds the connection open until the client goes away. Events
// that arrive while the client's buffer is full are dropped.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := make(chan event.Event, bufferSize)

	unsubscribe := h.bus.Subscribe(func(_ context.Context, e event.Event) {
		select {
		case ch <- e:
		default:
			slog.Warn("dropping event for slow client", "event", e.Name)
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case e := <-ch:
			if err := writeEvent(w, e); err != nil {
				slog.Error("failed to write event", "error", err)
				return
			}

			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, e event.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	return nil
}

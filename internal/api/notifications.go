package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkamran/campushub/internal/feed"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/store"
)

// BackfillSize is how many recent creations seed a fresh subscription.
const BackfillSize = 5

// keepaliveInterval paces SSE comment lines so idle proxies keep the
// connection open.
const keepaliveInterval = 25 * time.Second

// NotificationsHandler streams lost/found mutation events to clients over
// Server-Sent Events. Each request gets its own subscription handle, closed
// when the request context ends; a client recovers a dropped stream by
// reconnecting, which repeats the backfill. Clients dedupe by record id.
type NotificationsHandler struct {
	DB   *sql.DB
	Feed *feed.Bus
}

// Stream handles GET /api/notifications/stream.
func (h *NotificationsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.Feed.Subscribe(claims.Email)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeSSE(w, "subscribed", map[string]string{"subscription_id": sub.ID()})
	flusher.Flush()

	// Seed the client with the most recent creations by others before any
	// live event. The backfill window may overlap events the client already
	// saw on a previous connection.
	backfill, err := store.ListLostFoundItems(r.Context(), h.DB, store.LostFoundFilter{
		ExcludeOwner: claims.Email,
		Limit:        BackfillSize,
	})
	if err != nil {
		slog.Error("notification backfill failed", "error", err, "subscription", sub.ID())
		return
	}
	if backfill == nil {
		backfill = []model.LostFoundItem{}
	}
	writeSSE(w, "backfill", backfill)
	flusher.Flush()

	events := make(chan feed.Event)
	go func() {
		defer close(events)
		for {
			ev, err := sub.Next(r.Context())
			if err != nil {
				return
			}
			select {
			case events <- ev:
			case <-r.Context().Done():
				return
			}
		}
	}()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			writeSSE(w, "change", ev)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// writeSSE writes one named server-sent event with a JSON payload.
func writeSSE(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("encoding SSE payload", "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}

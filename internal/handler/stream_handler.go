package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"portfolio-catalog/internal/middleware"
	"portfolio-catalog/internal/service/catalog"
)

const heartbeatInterval = 30 * time.Second

type StreamHandler struct {
	ctx       context.Context
	galleries *catalog.Galleries
	log       *slog.Logger
}

func NewStreamHandler(ctx context.Context, galleries *catalog.Galleries, log *slog.Logger) *StreamHandler {
	return &StreamHandler{
		ctx:       ctx,
		galleries: galleries,
		log:       log.With("component", "stream"),
	}
}

type galleryUpdate struct {
	snapshot catalog.Snapshot
	err      error
}

// Stream sends the gallery snapshot on connect and again after every change.
//
//	event: snapshot   data: {"data":[...],"seq":N,"fetched_at":"..."}
//	event: error      data: {"code":"REMOTE_READ_ERROR","message":"..."}
func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	gallery := h.galleries.For(filter)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// Holds only the newest update; the writer never blocks the gallery.
	updates := make(chan galleryUpdate, 1)
	stopWatch := gallery.Watch(func(s catalog.Snapshot, err error) {
		u := galleryUpdate{snapshot: s, err: err}
		select {
		case updates <- u:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- u
		}
	})

	initial, loaded := gallery.Current()
	initialErr := gallery.Err()
	log := h.log.With("filter", filter.String())

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer stopWatch()

		lastSeq := uint64(0)
		if loaded {
			if err := writeSnapshot(w, initial); err != nil {
				return
			}
			lastSeq = initial.Seq
		}
		if initialErr != nil {
			if err := writeReadError(w); err != nil {
				return
			}
		}
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-h.ctx.Done():
				return
			case u := <-updates:
				var err error
				switch {
				case u.err != nil:
					err = writeReadError(w)
				case u.snapshot.Seq > lastSeq:
					err = writeSnapshot(w, u.snapshot)
					lastSeq = u.snapshot.Seq
				default:
					continue
				}
				if err == nil {
					err = w.Flush()
				}
				if err != nil {
					log.Debug("stream client disconnected", "error", err)
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug("stream client disconnected", "error", err)
					return
				}
			}
		}
	}))

	return nil
}

func writeSnapshot(w *bufio.Writer, snapshot catalog.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snapshot.Seq, data)
	return err
}

func writeReadError(w *bufio.Writer) error {
	data, err := json.Marshal(middleware.ErrorResponse{
		Code:    "REMOTE_READ_ERROR",
		Message: "The catalog is temporarily unavailable. Showing the last loaded items.",
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
	return err
}

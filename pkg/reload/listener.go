// Package reload turns dictionary reload requests published on Kafka into
// registry reloads.
package reload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kerem-kaynak/ja-analysis/pkg/config"
	"github.com/kerem-kaynak/ja-analysis/pkg/dictionary"
)

// Request is the message body of a reload request.
type Request struct {
	Dictionary string `json:"dictionary"`
}

// Reloader applies a reload to a named dictionary.
type Reloader interface {
	Reload(name string) (uint64, error)
}

// Decode parses a reload message value.
func Decode(value []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(value, &req); err != nil {
		return req, fmt.Errorf("decoding reload request: %w", err)
	}
	req.Dictionary = strings.TrimSpace(req.Dictionary)
	if req.Dictionary == "" {
		return req, errors.New("reload request without dictionary name")
	}
	return req, nil
}

// Handler applies reload messages to a Reloader.
type Handler struct {
	reloader Reloader
	logger   *slog.Logger
}

// NewHandler creates a handler over reloader.
func NewHandler(reloader Reloader) *Handler {
	return &Handler{
		reloader: reloader,
		logger:   slog.Default().With("component", "reload-handler"),
	}
}

// Handle processes one message. A dictionary nobody uses is skipped rather
// than failed, so the message is committed.
func (h *Handler) Handle(ctx context.Context, key, value []byte) error {
	req, err := Decode(value)
	if err != nil {
		return err
	}
	version, err := h.reloader.Reload(req.Dictionary)
	if errors.Is(err, dictionary.ErrNotLoaded) {
		h.logger.Info("reload skipped, dictionary not in use", "dictionary", req.Dictionary)
		return nil
	}
	if err != nil {
		return err
	}
	h.logger.Info("reload applied", "dictionary", req.Dictionary, "version", version)
	return nil
}

const (
	minFetchBackoff = 100 * time.Millisecond
	maxFetchBackoff = 5 * time.Second
)

// nextBackoff doubles d, capped at maxFetchBackoff.
func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxFetchBackoff {
		return maxFetchBackoff
	}
	return d
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Listener consumes the reload topic.
type Listener struct {
	reader  messageReader
	handler *Handler
	logger  *slog.Logger
	// first delay after a failed fetch; doubled up to maxFetchBackoff
	backoff time.Duration
}

// NewListener subscribes to cfg.ReloadTopic. Every instance must apply every
// reload, so the consumer group is suffixed with the host name.
func NewListener(cfg config.KafkaConfig, reloader Reloader) *Listener {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.ReloadTopic,
		GroupID:     instanceGroup(cfg.ConsumerGroup),
		MinBytes:    1,
		MaxBytes:    1e6,
		StartOffset: kafka.LastOffset,
	})
	return &Listener{
		reader:  r,
		handler: NewHandler(reloader),
		logger:  slog.Default().With("component", "reload-listener", "topic", cfg.ReloadTopic),
		backoff: minFetchBackoff,
	}
}

// Start consumes messages until ctx is cancelled. Failed fetches are retried
// with exponential backoff.
func (l *Listener) Start(ctx context.Context) error {
	l.logger.Info("reload listener started")
	var delay time.Duration
	for {
		msg, err := l.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("reload listener stopping", "reason", ctx.Err())
				return l.reader.Close()
			}
			if delay == 0 {
				delay = l.backoff
			} else {
				delay = nextBackoff(delay)
			}
			l.logger.Error("failed to fetch message", "error", err, "retry_in", delay)
			select {
			case <-ctx.Done():
				l.logger.Info("reload listener stopping", "reason", ctx.Err())
				return l.reader.Close()
			case <-time.After(delay):
			}
			continue
		}
		delay = 0
		if err := l.handler.Handle(ctx, msg.Key, msg.Value); err != nil {
			l.logger.Error("failed to process reload",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			continue
		}
		if err := l.reader.CommitMessages(ctx, msg); err != nil {
			l.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// Close closes the underlying reader.
func (l *Listener) Close() error {
	return l.reader.Close()
}

func instanceGroup(group string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return group
	}
	return group + "-" + host
}

// Publish sends a reload request for name; used by tooling.
func Publish(ctx context.Context, cfg config.KafkaConfig, name string) error {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ReloadTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	defer w.Close()

	value, err := json.Marshal(Request{Dictionary: name})
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{Key: []byte(name), Value: value})
}

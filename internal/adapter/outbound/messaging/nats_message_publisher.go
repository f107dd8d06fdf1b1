// Package messaging publishes segment report events to NATS JetStream.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/config"
	"javasegment/internal/port/outbound"

	"github.com/nats-io/nats.go"
)

const (
	natsConnectionTimeout = 5 * time.Second
	streamMaxAge          = 7 * 24 * time.Hour
)

// MessageMetrics tracks message publishing counts.
type MessageMetrics struct {
	PublishedCount int64 `json:"published_count"`
	FailedCount    int64 `json:"failed_count"`
}

// NATSMessagePublisher publishes SegmentReportEvents to a JetStream stream.
type NATSMessagePublisher struct {
	config config.NATSConfig
	conn   *nats.Conn
	js     nats.JetStreamContext

	mutex   sync.RWMutex
	metrics MessageMetrics
}

// NewNATSMessagePublisher validates cfg and returns an unconnected publisher.
func NewNATSMessagePublisher(cfg config.NATSConfig) (*NATSMessagePublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("NATS URL cannot be empty")
	}
	if !strings.HasPrefix(cfg.URL, "nats://") {
		return nil, errors.New("invalid NATS URL scheme")
	}
	if cfg.Subject == "" {
		return nil, errors.New("NATS subject cannot be empty")
	}
	if cfg.Stream == "" {
		return nil, errors.New("NATS stream cannot be empty")
	}
	if cfg.MaxReconnects < 0 {
		return nil, errors.New("max reconnects cannot be negative")
	}
	if cfg.ReconnectWait < 0 {
		return nil, errors.New("reconnect wait cannot be negative")
	}
	return &NATSMessagePublisher{config: cfg}, nil
}

// Connect establishes the NATS connection and JetStream context.
func (n *NATSMessagePublisher) Connect() error {
	opts := []nats.Option{
		nats.Name("javasegment"),
		nats.MaxReconnects(n.config.MaxReconnects),
		nats.ReconnectWait(n.config.ReconnectWait),
		nats.Timeout(natsConnectionTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slogger.WarnNoCtx("NATS connection lost", slogger.Field("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			slogger.InfoNoCtx("NATS connection restored", slogger.Field("url", conn.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	n.mutex.Lock()
	n.conn = conn
	n.js = js
	n.mutex.Unlock()
	return nil
}

// Disconnect drains and closes the NATS connection.
func (n *NATSMessagePublisher) Disconnect() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	var err error
	if n.conn != nil {
		err = n.conn.Drain()
		n.conn = nil
	}
	n.js = nil
	return err
}

// EnsureStream creates the stream when it does not exist yet.
func (n *NATSMessagePublisher) EnsureStream() error {
	js := n.jetStream()
	if js == nil {
		return errors.New("not connected to NATS server")
	}

	if _, err := js.StreamInfo(n.config.Stream); err == nil {
		return nil
	}

	_, err := js.AddStream(&nats.StreamConfig{
		Name:       n.config.Stream,
		Subjects:   []string{n.config.Subject},
		Storage:    nats.FileStorage,
		Retention:  nats.LimitsPolicy,
		MaxAge:     streamMaxAge,
		Duplicates: 2 * time.Minute,
		Replicas:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", n.config.Stream, err)
	}
	return nil
}

// PublishSegmentReport publishes event as JSON. The message id is derived from the
// run id and segment index so redelivered publishes are deduplicated by the stream.
func (n *NATSMessagePublisher) PublishSegmentReport(ctx context.Context, event outbound.SegmentReportEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	js := n.jetStream()
	if js == nil {
		n.record(false)
		return errors.New("not connected to NATS server")
	}

	data, err := json.Marshal(event)
	if err != nil {
		n.record(false)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := js.Publish(n.config.Subject, data, nats.MsgId(MessageID(event)), nats.Context(ctx)); err != nil {
		n.record(false)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	n.record(true)
	return nil
}

// Ping checks the JetStream account is reachable.
func (n *NATSMessagePublisher) Ping(ctx context.Context) error {
	js := n.jetStream()
	if js == nil {
		return errors.New("not connected to NATS server")
	}
	if _, err := js.AccountInfo(nats.Context(ctx)); err != nil {
		return fmt.Errorf("jetstream unavailable: %w", err)
	}
	return nil
}

// Metrics returns a snapshot of the publish counters.
func (n *NATSMessagePublisher) Metrics() MessageMetrics {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.metrics
}

// MessageID returns the deduplication id of event.
func MessageID(event outbound.SegmentReportEvent) string {
	return fmt.Sprintf("%s-%d", event.RunID, event.Index)
}

func (n *NATSMessagePublisher) jetStream() nats.JetStreamContext {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.js
}

func (n *NATSMessagePublisher) record(success bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if success {
		n.metrics.PublishedCount++
	} else {
		n.metrics.FailedCount++
	}
}


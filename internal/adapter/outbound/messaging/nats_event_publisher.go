package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"codemeta/internal/application/common/logging"
	"codemeta/internal/application/common/slogger"
	"codemeta/internal/config"
	"codemeta/internal/domain/valueobject"
	"codemeta/internal/port/outbound"
)

const (
	// NATS connection timeout.
	natsConnectionTimeoutSeconds = 5

	// Stream configuration.
	streamName      = "CODEMETA"
	streamSubjects  = "codemeta.>"
	streamMaxAgeHrs = 24

	// Subject for file-indexed events.
	fileIndexedSubject = "codemeta.file.indexed"

	// Circuit breaker thresholds.
	circuitMaxFailures  = 3
	circuitOpenDuration = 30 * time.Second
)

// FileIndexedMessage announces that one file's documented items were
// extracted and stored.
type FileIndexedMessage struct {
	MessageID     string    `json:"message_id"`
	CorrelationID string    `json:"correlation_id"`
	FilePath      string    `json:"file_path"`
	Language      string    `json:"language"`
	ItemCount     int       `json:"item_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// messageMetrics tracks message publishing metrics.
type messageMetrics struct {
	publishedCount    int64
	failedCount       int64
	averageLatency    time.Duration
	lastPublishedTime time.Time
}

// NATSEventPublisher provides a NATS JetStream implementation of
// MessagePublisher.
type NATSEventPublisher struct {
	config config.NATSConfig

	mutex          sync.RWMutex
	conn           *nats.Conn
	js             nats.JetStreamContext
	isConnected    bool
	connectedAt    time.Time
	reconnectCount int
	lastError      error
	metrics        messageMetrics

	// Circuit breaker state.
	circuitOpen     bool
	failureCount    int
	lastFailureTime time.Time
}

// NewNATSEventPublisher creates a new NATS event publisher.
func NewNATSEventPublisher(cfg config.NATSConfig) (*NATSEventPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("NATS URL cannot be empty")
	}
	if !strings.HasPrefix(cfg.URL, "nats://") {
		return nil, errors.New("invalid NATS URL scheme")
	}
	if cfg.MaxReconnects < 0 {
		return nil, errors.New("max reconnects cannot be negative")
	}
	if cfg.ReconnectWait < 0 {
		return nil, errors.New("reconnect wait cannot be negative")
	}

	return &NATSEventPublisher{
		config: cfg,
	}, nil
}

// Connect establishes the connection to the NATS server and opens a
// JetStream context.
func (n *NATSEventPublisher) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := []nats.Option{
		nats.MaxReconnects(n.config.MaxReconnects),
		nats.ReconnectWait(n.config.ReconnectWait),
		nats.Timeout(natsConnectionTimeoutSeconds * time.Second),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			n.mutex.Lock()
			n.reconnectCount++
			n.mutex.Unlock()
			n.updateConnectionState(true, nil)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, _ error) {
			n.updateConnectionState(false, errors.New("connection lost"))
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.updateConnectionState(false, err)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		n.updateConnectionState(false, err)
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	n.mutex.Lock()
	n.conn = conn
	n.js = js
	n.mutex.Unlock()
	n.updateConnectionState(true, nil)

	slogger.Info(ctx, "Connected to NATS", slogger.Field("url", n.config.URL))
	return nil
}

// Disconnect closes the NATS connection.
func (n *NATSEventPublisher) Disconnect(_ context.Context) error {
	n.mutex.Lock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.js = nil
	}
	n.mutex.Unlock()

	n.updateConnectionState(false, nil)
	return nil
}

// EnsureStream creates the JetStream stream if it doesn't exist.
func (n *NATSEventPublisher) EnsureStream() error {
	n.mutex.RLock()
	js := n.js
	n.mutex.RUnlock()

	if js == nil {
		return errors.New("not connected to NATS server")
	}

	streamConfig := &nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{streamSubjects},
		Storage:   nats.FileStorage,
		Retention: nats.WorkQueuePolicy,
		MaxAge:    streamMaxAgeHrs * time.Hour,
		Replicas:  1,
	}

	if _, err := js.AddStream(streamConfig); err != nil {
		// AddStream races with other instances; an existing stream is fine.
		if _, infoErr := js.StreamInfo(streamName); infoErr == nil {
			return nil
		}
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// PublishFileIndexed publishes a file-indexed event to JetStream.
func (n *NATSEventPublisher) PublishFileIndexed(
	ctx context.Context,
	filePath string,
	language valueobject.Language,
	itemCount int,
) error {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		n.updateMetrics(false, time.Since(start))
		return err
	}

	if err := validateFileIndexedInputs(filePath, language, itemCount); err != nil {
		return err
	}

	if n.isCircuitOpen() {
		n.updateMetrics(false, time.Since(start))
		return errors.New("circuit breaker open: too many recent failures")
	}

	n.mutex.RLock()
	js := n.js
	n.mutex.RUnlock()

	if js == nil {
		n.updateMetrics(false, time.Since(start))
		return errors.New("publish failed: not connected to NATS")
	}

	msg := newFileIndexedMessage(ctx, filePath, language, itemCount)

	data, err := json.Marshal(msg)
	if err != nil {
		n.updateMetrics(false, time.Since(start))
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := js.PublishAsync(fileIndexedSubject, data, nats.Context(ctx)); err != nil {
		n.updateMetrics(false, time.Since(start))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	n.updateMetrics(true, time.Since(start))
	return nil
}

// newFileIndexedMessage builds the event payload. The correlation ID comes
// from the context, falling back to a fresh one so every published event can
// be traced back to a run.
func newFileIndexedMessage(
	ctx context.Context,
	filePath string,
	language valueobject.Language,
	itemCount int,
) FileIndexedMessage {
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}

	return FileIndexedMessage{
		MessageID:     uuid.New().String(),
		CorrelationID: correlationID,
		FilePath:      filePath,
		Language:      language.Name(),
		ItemCount:     itemCount,
		Timestamp:     time.Now(),
	}
}

func validateFileIndexedInputs(filePath string, language valueobject.Language, itemCount int) error {
	if filePath == "" {
		return errors.New("file path cannot be empty")
	}
	if language.Name() == "" {
		return errors.New("language cannot be empty")
	}
	if itemCount < 0 {
		return errors.New("item count cannot be negative")
	}
	return nil
}

// GetConnectionHealth returns the current connection health status.
func (n *NATSEventPublisher) GetConnectionHealth() outbound.MessagePublisherHealthStatus {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	status := outbound.MessagePublisherHealthStatus{
		Connected:        n.isConnected,
		JetStreamEnabled: n.js != nil,
		Reconnects:       n.reconnectCount,
	}

	if n.isConnected {
		status.Uptime = time.Since(n.connectedAt).String()
	} else {
		status.Uptime = "0s"
	}

	if n.lastError != nil {
		status.LastError = n.lastError.Error()
	}

	if n.circuitOpen {
		status.CircuitBreaker = "open"
	} else {
		status.CircuitBreaker = "closed"
	}

	return status
}

// GetMessageMetrics returns current message publishing metrics.
func (n *NATSEventPublisher) GetMessageMetrics() outbound.MessagePublisherMetrics {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	return outbound.MessagePublisherMetrics{
		PublishedCount: n.metrics.publishedCount,
		FailedCount:    n.metrics.failedCount,
		AverageLatency: n.metrics.averageLatency.String(),
	}
}

func (n *NATSEventPublisher) updateConnectionState(connected bool, err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.isConnected = connected

	if err != nil {
		n.lastError = err
	}

	if connected && n.connectedAt.IsZero() {
		n.connectedAt = time.Now()
	}
	if !connected {
		n.connectedAt = time.Time{}
	}
}

func (n *NATSEventPublisher) updateMetrics(success bool, latency time.Duration) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if success {
		n.metrics.publishedCount++
		n.metrics.lastPublishedTime = time.Now()

		// Exponential moving average with alpha = 0.1.
		if n.metrics.averageLatency == 0 {
			n.metrics.averageLatency = latency
		} else {
			n.metrics.averageLatency = time.Duration(
				0.9*float64(n.metrics.averageLatency) + 0.1*float64(latency),
			)
		}

		n.failureCount = 0
		n.circuitOpen = false
		return
	}

	n.metrics.failedCount++
	n.failureCount++
	n.lastFailureTime = time.Now()

	if n.failureCount >= circuitMaxFailures {
		n.circuitOpen = true
	}
}

func (n *NATSEventPublisher) isCircuitOpen() bool {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	// Half-open after the cool-down so a probe publish can close the circuit.
	if n.circuitOpen && time.Since(n.lastFailureTime) > circuitOpenDuration {
		n.circuitOpen = false
		n.failureCount = 0
	}

	return n.circuitOpen
}

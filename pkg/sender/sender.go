package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bft-labs/telship/pkg/contracts"
	"github.com/bft-labs/telship/pkg/log"
)

// DefaultSendBufferSize is the default maximum number of items per batch.
const DefaultSendBufferSize = 100

// Queue is the upstream buffer the sender drains. Undelivered batches
// are pushed back through Put, one item at a time.
type Queue interface {
	// Put pushes an item back onto the queue for a later attempt.
	Put(item contracts.Telemetry)
}

// outcome classifies the result of one delivery attempt.
type outcome int

const (
	// outcomeDelivered means the service accepted the batch.
	outcomeDelivered outcome = iota

	// outcomeRejected means the service refused the payload outright;
	// retrying the same bytes cannot succeed, so the batch is dropped.
	outcomeRejected

	// outcomeRetry means a transient failure; the batch goes back to
	// the queue.
	outcomeRetry
)

// Sender posts telemetry batches to an ingestion endpoint and returns
// undeliverable batches to its queue.
//
// Endpoint, queue, and buffer size are mutable for the life of the
// sender so a config reload can redirect a running instance. Concurrent
// Send calls are not coordinated beyond that; queue safety is the
// queue's own concern.
type Sender struct {
	mu             sync.RWMutex
	endpoint       string
	queue          Queue
	sendBufferSize int

	// sendTimeout is recorded at construction but not applied to the
	// outbound request. Deadlines come from the HTTP client's own
	// configuration or the caller's context.
	sendTimeout time.Duration

	client HTTPClient
	logger log.Logger
}

// Option configures optional behavior of a Sender.
type Option func(*Sender)

// WithHTTPClient sets a custom HTTP client.
// If not provided, http.DefaultClient is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(s *Sender) {
		s.client = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(s *Sender) {
		s.logger = logger
	}
}

// WithSendTimeout records a per-send timeout. The value is retained for
// callers to inspect but is not currently enforced on the network call.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Sender) {
		s.sendTimeout = d
	}
}

// New creates a sender targeting the given endpoint, with the default
// buffer size and no queue attached.
func New(endpoint string, opts ...Option) *Sender {
	s := &Sender{
		endpoint:       endpoint,
		sendBufferSize: DefaultSendBufferSize,
		client:         http.DefaultClient,
		logger:         log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Endpoint returns the service endpoint URL.
func (s *Sender) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// SetEndpoint updates the service endpoint URL.
func (s *Sender) SetEndpoint(endpoint string) {
	s.mu.Lock()
	s.endpoint = endpoint
	s.mu.Unlock()
}

// Queue returns the queue this sender drains, or nil if none is attached.
func (s *Sender) Queue() Queue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue
}

// SetQueue attaches the queue undelivered batches are returned to.
// The sender does not own the queue.
func (s *Sender) SetQueue(q Queue) {
	s.mu.Lock()
	s.queue = q
	s.mu.Unlock()
}

// SendBufferSize returns the maximum number of items per batch.
func (s *Sender) SendBufferSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sendBufferSize
}

// SetSendBufferSize updates the maximum number of items per batch.
// Values below 1 are clamped to 1.
func (s *Sender) SetSendBufferSize(v int) {
	if v < 1 {
		v = 1
	}
	s.mu.Lock()
	s.sendBufferSize = v
	s.mu.Unlock()
}

// SendTimeout returns the per-send timeout recorded at construction.
// It is not currently enforced on the network call.
func (s *Sender) SendTimeout() time.Duration {
	return s.sendTimeout
}

// Send posts the items to the endpoint as one JSON array. On transient
// failure every item is returned to the queue in its original order; a
// batch the service rejects with status 400 is dropped. Send never
// reports an error to the caller.
//
// The batch is taken as given: callers decide how many items to pass
// and SendBufferSize is not enforced here.
func (s *Sender) Send(ctx context.Context, items []contracts.Telemetry) {
	if len(items) == 0 {
		return
	}

	payload := make([]map[string]interface{}, len(items))
	for i, item := range items {
		payload[i] = item.Serialize()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		// Serialize must produce JSON-compatible values; an item that
		// breaks that contract would fail identically on every retry.
		s.logger.Error("drop unencodable batch", log.Err(err), log.Int("items", len(items)))
		return
	}

	endpoint := s.Endpoint()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("create request", log.Err(err), log.String("endpoint", endpoint))
		s.requeue(items)
		return
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	s.logger.Debug("sending batch",
		log.String("endpoint", endpoint),
		log.Int("items", len(items)),
		log.Int("bytes", len(body)),
	)

	resp, err := s.client.Do(req)
	switch s.classify(resp, err) {
	case outcomeDelivered:
	case outcomeRejected:
	case outcomeRetry:
		s.requeue(items)
	}
}

// classify interprets the transport outcome of one delivery attempt.
func (s *Sender) classify(resp *http.Response, err error) outcome {
	if err != nil {
		s.logger.Warn("send failed", log.Err(err))
		return outcomeRetry
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode/100 == 2:
		s.logger.Debug("batch delivered", log.Int("status", resp.StatusCode))
		return outcomeDelivered
	case resp.StatusCode == http.StatusBadRequest:
		s.logger.Warn("batch rejected by service",
			log.Int("status", resp.StatusCode),
			log.String("response", string(respBody)),
		)
		return outcomeRejected
	default:
		s.logger.Warn("service returned error status",
			log.Int("status", resp.StatusCode),
			log.String("response", string(respBody)),
		)
		return outcomeRetry
	}
}

// requeue pushes the batch back onto the queue in its original order.
func (s *Sender) requeue(items []contracts.Telemetry) {
	q := s.Queue()
	if q == nil {
		s.logger.Error("no queue attached, dropping batch", log.Int("items", len(items)))
		return
	}
	s.logger.Debug("returning batch to queue", log.Int("items", len(items)))
	for _, item := range items {
		q.Put(item)
	}
}

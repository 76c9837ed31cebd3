package queue

import (
	"container/list"
	"sync"

	"github.com/bft-labs/telship/pkg/contracts"
)

// DefaultMaxLength is the queue length at which a flush is signalled.
const DefaultMaxLength = 500

// Queue is a thread-safe FIFO buffer of telemetry items.
type Queue struct {
	mu        sync.Mutex
	items     *list.List
	maxLength int

	flushCh chan struct{}
}

// New creates an empty queue. Values of maxLength below 1 are clamped to 1.
func New(maxLength int) *Queue {
	if maxLength < 1 {
		maxLength = 1
	}
	return &Queue{
		items:     list.New(),
		maxLength: maxLength,
		flushCh:   make(chan struct{}, 1),
	}
}

// Put appends an item to the back of the queue. If the queue reaches its
// maximum length a flush notification is signalled.
func (q *Queue) Put(item contracts.Telemetry) {
	q.mu.Lock()
	q.items.PushBack(item)
	full := q.items.Len() >= q.maxLength
	q.mu.Unlock()

	if full {
		q.signalFlush()
	}
}

// Get removes and returns the front item. It returns false if the queue
// is empty and never blocks.
func (q *Queue) Get() (contracts.Telemetry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.items.Front()
	if front == nil {
		return nil, false
	}
	q.items.Remove(front)
	return front.Value.(contracts.Telemetry), true
}

// Len returns the number of items currently buffered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// MaxLength returns the length at which a flush is signalled.
func (q *Queue) MaxLength() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.maxLength
}

// SetMaxLength updates the flush threshold. Values below 1 are clamped to 1.
func (q *Queue) SetMaxLength(v int) {
	if v < 1 {
		v = 1
	}
	q.mu.Lock()
	q.maxLength = v
	q.mu.Unlock()
}

// FlushNotify returns the channel signalled when the queue fills up.
// Notifications are coalesced: the channel carries at most one pending
// signal regardless of how many puts crossed the threshold.
func (q *Queue) FlushNotify() <-chan struct{} {
	return q.flushCh
}

// Flush signals the flush notification channel explicitly.
func (q *Queue) Flush() {
	q.signalFlush()
}

func (q *Queue) signalFlush() {
	select {
	case q.flushCh <- struct{}{}:
	default:
	}
}

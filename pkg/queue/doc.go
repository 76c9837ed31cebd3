// Package queue provides the in-memory buffer between telemetry
// producers and the sender.
//
// The queue is a thread-safe FIFO of contracts.Telemetry items. Putting
// an item that fills the queue to its maximum length signals the flush
// notification channel so a draining worker can react without polling.
//
// # Usage
//
//	q := queue.New(500)
//	q.Put(item)
//
//	select {
//	case <-q.FlushNotify():
//	    // drain
//	}
package queue

package queue

import (
	"sync"
	"testing"

	"github.com/bft-labs/telship/pkg/contracts"
)

func testItem(name string) contracts.Telemetry {
	return &contracts.Envelope{Ver: 1, Name: name}
}

func TestPutGetOrder(t *testing.T) {
	q := New(DefaultMaxLength)
	names := []string{"a", "b", "c"}
	for _, n := range names {
		q.Put(testItem(n))
	}

	if q.Len() != len(names) {
		t.Fatalf("Len = %d, want %d", q.Len(), len(names))
	}

	for _, want := range names {
		item, ok := q.Get()
		if !ok {
			t.Fatalf("Get returned no item, want %q", want)
		}
		if got := item.(*contracts.Envelope).Name; got != want {
			t.Errorf("Get = %q, want %q", got, want)
		}
	}

	if _, ok := q.Get(); ok {
		t.Error("Get on empty queue returned an item")
	}
}

func TestMaxLengthClamp(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: -5, want: 1},
		{in: 0, want: 1},
		{in: 1, want: 1},
		{in: 250, want: 250},
	}
	for _, tt := range tests {
		q := New(tt.in)
		if got := q.MaxLength(); got != tt.want {
			t.Errorf("New(%d).MaxLength() = %d, want %d", tt.in, got, tt.want)
		}
		q.SetMaxLength(tt.in)
		if got := q.MaxLength(); got != tt.want {
			t.Errorf("SetMaxLength(%d) -> %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFlushNotifyOnFull(t *testing.T) {
	q := New(2)

	q.Put(testItem("a"))
	select {
	case <-q.FlushNotify():
		t.Fatal("flush signalled below max length")
	default:
	}

	q.Put(testItem("b"))
	select {
	case <-q.FlushNotify():
	default:
		t.Fatal("flush not signalled at max length")
	}
}

func TestFlushNotifyCoalesces(t *testing.T) {
	q := New(1)
	for i := 0; i < 10; i++ {
		q.Put(testItem("x"))
	}

	<-q.FlushNotify()
	select {
	case <-q.FlushNotify():
		t.Error("multiple pending flush signals, want coalesced")
	default:
	}
}

func TestConcurrentPut(t *testing.T) {
	q := New(DefaultMaxLength)
	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				q.Put(testItem("x"))
			}
		}()
	}
	wg.Wait()

	if got := q.Len(); got != goroutines*perGoroutine {
		t.Errorf("Len = %d, want %d", got, goroutines*perGoroutine)
	}
}

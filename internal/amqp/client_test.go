package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/log"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped at 30s
		{10, 30 * time.Second},
		{-1, 1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue", logger: log.Discard()}

	if client.isCircuitOpen() {
		t.Fatal("circuit breaker should be closed initially")
	}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	if !client.isCircuitOpen() {
		t.Fatal("circuit breaker should be open after max failures")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("circuit should turn half-open after the timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", client.state)
	}

	// One failure while half-open opens the circuit again.
	client.recordFailure()
	if !client.isCircuitOpen() {
		t.Fatal("failure in half-open state should reopen the circuit")
	}

	client.recordSuccess()
	if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset failures")
	}
}

func TestClient_PublishGuards(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue", logger: log.Discard()}
	ev := NewLedgerEvent("create", "transaction", "id-1", 1)

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()
	err := client.Publish(context.Background(), ev)
	if err == nil || !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Fatalf("expected circuit breaker error, got %v", err)
	}

	atomic.StoreInt32(&client.state, StateClosed)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Publish(ctx, ev); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLedgerEventJSON(t *testing.T) {
	ev := NewLedgerEvent("update", "loan", "Car", 7).ForMonth(2024, 3)
	if ev.Timestamp.IsZero() || time.Since(ev.Timestamp) > time.Minute {
		t.Fatalf("timestamp = %v", ev.Timestamp)
	}
	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	got, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON() error = %v", err)
	}
	if got.Operation != "update" || got.Entity != "loan" || got.Key != "Car" || got.Version != 7 || !got.HasMonth() {
		t.Fatalf("decoded = %+v", got)
	}

	for _, bad := range []string{`{"version": "x"}`, `{"operation": "create"}`, `not json`} {
		if _, err := LedgerEventFromJSON([]byte(bad)); err == nil {
			t.Errorf("LedgerEventFromJSON(%s) should fail", bad)
		}
	}
}

type fakeAck struct {
	acked, nacked, requeued int
}

func (f *fakeAck) Ack(bool) error { f.acked++; return nil }
func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked++
	if requeue {
		f.requeued++
	}
	return nil
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	body, _ := NewLedgerEvent("delete", "transaction", "t1", 2).ToJSON()

	t.Run("success acks", func(t *testing.T) {
		ack := &fakeAck{}
		var seen *LedgerEvent
		dispatch(ctx, log.Discard(), body, ack, func(_ context.Context, ev *LedgerEvent) error {
			seen = ev
			return nil
		})
		if ack.acked != 1 || ack.nacked != 0 || seen == nil || seen.Key != "t1" {
			t.Fatalf("ack=%+v seen=%+v", ack, seen)
		}
	})

	t.Run("handler error requeues", func(t *testing.T) {
		ack := &fakeAck{}
		dispatch(ctx, log.Discard(), body, ack, func(context.Context, *LedgerEvent) error {
			return errors.New("sheets down")
		})
		if ack.requeued != 1 || ack.acked != 0 {
			t.Fatalf("ack=%+v", ack)
		}
	})

	t.Run("garbage is dropped", func(t *testing.T) {
		ack := &fakeAck{}
		called := false
		dispatch(ctx, log.Discard(), []byte("{"), ack, func(context.Context, *LedgerEvent) error {
			called = true
			return nil
		})
		if called || ack.nacked != 1 || ack.requeued != 0 {
			t.Fatalf("ack=%+v called=%v", ack, called)
		}
	})
}

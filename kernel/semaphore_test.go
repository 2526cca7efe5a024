package kernel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestSemaphoreTryTakeEmpty(t *testing.T) {
	s := NewSemaphore()

	if ok := s.TryTake(); ok {
		t.Fatalf("TryTake() ok = true, want false")
	}
}

func TestSemaphoreGiveCoalesces(t *testing.T) {
	s := NewSemaphore()

	if ok := s.Give(); !ok {
		t.Fatalf("first Give() = false, want true")
	}
	if ok := s.Give(); ok {
		t.Fatalf("second Give() = true, want false")
	}
	if ok := s.TryTake(); !ok {
		t.Fatalf("TryTake() = false, want true")
	}
	if ok := s.TryTake(); ok {
		t.Fatalf("second TryTake() = true, want false")
	}
}

func TestSemaphoreTakeBlocksUntilGive(t *testing.T) {
	s := NewSemaphore()

	done := make(chan error, 1)
	go func() {
		done <- s.Take(context.Background())
	}()

	select {
	case err := <-done:
		t.Fatalf("Take() returned %v before Give", err)
	case <-time.After(20 * time.Millisecond):
	}

	s.Give()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Take() = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Take")
	}
	if s.Available() {
		t.Fatal("Available() = true after Take, want false")
	}
}

func TestSemaphoreTakeCanceled(t *testing.T) {
	s := NewSemaphore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := s.Take(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Take() = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestSemaphoreStaleWakeup(t *testing.T) {
	s := NewSemaphore()

	// Leave a wakeup token behind with no pending give.
	s.Give()
	if !s.TryTake() {
		t.Fatal("TryTake() = false, want true")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Take(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Take() = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestSemaphorePingPong(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(2)
	defer runtime.GOMAXPROCS(oldProcs)

	const rounds = 10_000

	ping := NewSemaphore()
	pong := NewSemaphore()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := ping.Take(context.Background()); err != nil {
				t.Errorf("ping.Take() = %v", err)
				return
			}
			pong.Give()
		}
	}()

	for i := 0; i < rounds; i++ {
		if ok := ping.Give(); !ok {
			t.Fatalf("ping.Give() coalesced at round %d", i)
		}
		if err := pong.Take(context.Background()); err != nil {
			t.Fatalf("pong.Take() = %v", err)
		}
	}
	wg.Wait()
}

func TestSlotOverwrite(t *testing.T) {
	var s Slot[int]

	if v := s.Take(); v != nil {
		t.Fatalf("Take() = %v on empty slot, want nil", *v)
	}

	a, b := 1, 2
	if ok := s.Put(&a); !ok {
		t.Fatal("Put() = false on empty slot, want true")
	}
	if ok := s.Put(&b); ok {
		t.Fatal("Put() = true on full slot, want false")
	}
	if got := s.Drops(); got != 1 {
		t.Fatalf("Drops() = %d, want 1", got)
	}
	if v := s.Peek(); v == nil || *v != 2 {
		t.Fatalf("Peek() = %v, want 2", v)
	}
	if v := s.Take(); v == nil || *v != 2 {
		t.Fatalf("Take() = %v, want 2", v)
	}
	if v := s.Take(); v != nil {
		t.Fatalf("second Take() = %v, want nil", *v)
	}
}

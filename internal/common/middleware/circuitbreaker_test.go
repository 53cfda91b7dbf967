package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 50*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	fail := func() error { return boom }
	ok := func() error { return nil }

	if err := cb.Call(ctx, fail); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after first failure")
	}
	if err := cb.Call(ctx, fail); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open after reaching max failures")
	}

	// 熔断期间直接拒绝
	if err := cb.Call(ctx, ok); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("expected ErrBreakerOpen, got %v", err)
	}

	// 重置窗口过后半开，成功调用恢复关闭
	time.Sleep(60 * time.Millisecond)
	if err := cb.Call(ctx, ok); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after successful probe")
	}
}

package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/FleetLink/FleetLink/internal/common/middleware"
	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

func newTestProcStrategy(exec procExecutor) *ProcedureStrategy {
	return &ProcedureStrategy{
		exec:        exec,
		unavailable: make(map[string]bool),
	}
}

func TestProcedureStrategyPrimarySuccess(t *testing.T) {
	execCalls, fallbackCalls := 0, 0
	s := newTestProcStrategy(func(_ context.Context, proc string, _ any, _ []any) error {
		execCalls++
		if proc != ProcListVehicles {
			t.Fatalf("unexpected proc %s", proc)
		}
		return nil
	})

	err := s.Call(context.Background(), Op{
		Proc: ProcListVehicles,
		Fallback: func(context.Context) error {
			fallbackCalls++
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if execCalls != 1 || fallbackCalls != 0 {
		t.Fatalf("expected primary only, got exec=%d fallback=%d", execCalls, fallbackCalls)
	}
}

func TestProcedureStrategyFallsBackWhenProcMissing(t *testing.T) {
	execCalls, fallbackCalls := 0, 0
	s := newTestProcStrategy(func(context.Context, string, any, []any) error {
		execCalls++
		return &mysql.MySQLError{Number: 1305, Message: "PROCEDURE does not exist"}
	})
	op := Op{
		Proc: ProcGetVehicle,
		Fallback: func(context.Context) error {
			fallbackCalls++
			return nil
		},
	}

	if err := s.Call(context.Background(), op); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if execCalls != 1 || fallbackCalls != 1 {
		t.Fatalf("expected one primary attempt then fallback, got exec=%d fallback=%d", execCalls, fallbackCalls)
	}

	// 不可用的过程被记住，后续调用不再碰存储过程
	if err := s.Call(context.Background(), op); err != nil {
		t.Fatalf("second Call: %v", err)
	}
	if execCalls != 1 || fallbackCalls != 2 {
		t.Fatalf("expected memoized fallback, got exec=%d fallback=%d", execCalls, fallbackCalls)
	}
}

func TestProcedureStrategyRetriesTransientViaFallback(t *testing.T) {
	fallbackCalls := 0
	s := newTestProcStrategy(func(context.Context, string, any, []any) error {
		return driver.ErrBadConn
	})

	err := s.Call(context.Background(), Op{
		Proc: ProcListBlocks,
		Fallback: func(context.Context) error {
			fallbackCalls++
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if fallbackCalls != 1 {
		t.Fatalf("expected one fallback retry, got %d", fallbackCalls)
	}
	// 瞬时错误不应把过程标记为不可用
	if s.isUnavailable(ProcListBlocks) {
		t.Fatalf("transient error must not memoize procedure as unavailable")
	}
}

func TestProcedureStrategyWrapsDoubleFailureAsTransient(t *testing.T) {
	s := newTestProcStrategy(func(context.Context, string, any, []any) error {
		return driver.ErrBadConn
	})

	err := s.Call(context.Background(), Op{
		Proc: ProcListBlocks,
		Fallback: func(context.Context) error {
			return errors.New("replica also down")
		},
	})
	if !fleeterr.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestProcedureStrategyPropagatesBusinessErrors(t *testing.T) {
	boom := &mysql.MySQLError{Number: 1644, Message: "custom signal from procedure"}
	fallbackCalls := 0
	s := newTestProcStrategy(func(context.Context, string, any, []any) error {
		return boom
	})

	err := s.Call(context.Background(), Op{
		Proc: ProcSearchVehicles,
		Fallback: func(context.Context) error {
			fallbackCalls++
			return nil
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected business error propagated, got %v", err)
	}
	if fallbackCalls != 0 {
		t.Fatalf("business errors must not trigger the fallback, got %d calls", fallbackCalls)
	}
}

func TestProcedureStrategyFallsBackWhileBreakerOpen(t *testing.T) {
	execCalls := 0
	s := newTestProcStrategy(func(context.Context, string, any, []any) error {
		execCalls++
		return &mysql.MySQLError{Number: 1644, Message: "failing procedure"}
	})
	s.breaker = middleware.NewCircuitBreaker("test", 1, time.Minute)
	ctx := context.Background()

	op := Op{
		Proc:     ProcListVehicles,
		Fallback: func(context.Context) error { return nil },
	}

	// 第一次失败打开熔断器
	if err := s.Call(ctx, op); err == nil {
		t.Fatalf("expected first call to fail")
	}
	// 熔断打开期间不再执行存储过程，降级到组合查询
	if err := s.Call(ctx, op); err != nil {
		t.Fatalf("expected fallback while breaker open, got %v", err)
	}
	if execCalls != 1 {
		t.Fatalf("expected primary skipped while breaker open, exec=%d", execCalls)
	}
}

func TestQueryStrategyAlwaysUsesFallback(t *testing.T) {
	fallbackCalls := 0
	s := QueryStrategy{}
	err := s.Call(context.Background(), Op{
		Proc: ProcListVehicles,
		Fallback: func(context.Context) error {
			fallbackCalls++
			return nil
		},
	})
	if err != nil || fallbackCalls != 1 {
		t.Fatalf("expected fallback once, err=%v calls=%d", err, fallbackCalls)
	}

	if err := s.Call(context.Background(), Op{Proc: ProcListVehicles}); err == nil {
		t.Fatalf("expected error for op without fallback")
	}
}

func TestCallExpr(t *testing.T) {
	if got := callExpr("sp_list_vehicles_with_drivers", 0); got != "CALL sp_list_vehicles_with_drivers()" {
		t.Fatalf("unexpected call expr: %s", got)
	}
	if got := callExpr("sp_blocks_in_range", 2); got != "CALL sp_blocks_in_range(?, ?)" {
		t.Fatalf("unexpected call expr: %s", got)
	}
}

// 同一个策略实例被多个服务跨并发 handler 共享，
// 一边记忆缺失过程、一边分发其他过程不允许出现数据竞争（go test -race）。
func TestProcedureStrategyConcurrentMemoization(t *testing.T) {
	s := newTestProcStrategy(func(_ context.Context, proc string, _ any, _ []any) error {
		if proc == ProcGetVehicle {
			return &mysql.MySQLError{Number: 1305, Message: "PROCEDURE does not exist"}
		}
		return nil
	})

	missing := Op{
		Proc:     ProcGetVehicle,
		Fallback: func(context.Context) error { return nil },
	}
	present := Op{
		Proc:     ProcListVehicles,
		Fallback: func(context.Context) error { return nil },
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := s.Call(context.Background(), missing); err != nil {
				t.Errorf("missing proc Call: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := s.Call(context.Background(), present); err != nil {
				t.Errorf("present proc Call: %v", err)
			}
		}()
	}
	wg.Wait()

	if !s.isUnavailable(ProcGetVehicle) {
		t.Fatalf("missing procedure should be memoized")
	}
	if s.isUnavailable(ProcListVehicles) {
		t.Fatalf("healthy procedure must not be memoized")
	}
}

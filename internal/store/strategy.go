package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/FleetLink/FleetLink/internal/common/logger"
	"github.com/FleetLink/FleetLink/internal/common/middleware"
	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

// Op 描述一次远程数据操作的两条等价执行路径：
// - Proc/Args/Dest: 存储过程调用（primary）
// - Fallback:       由基础 CRUD 查询组合出的等价效果（fallback）
//
// 约束：两条路径对调用方必须产生相同形状的结果；Fallback 不允许在 primary
// 尝试之前被执行（严格 primary-then-fallback，绝不两者都做副作用）。
type Op struct {
	Proc     string
	Args     []any
	Dest     any
	Fallback func(ctx context.Context) error
}

// Strategy 数据访问策略。启动时通过能力探测选定一个实现，调用点不再分支。
type Strategy interface {
	Call(ctx context.Context, op Op) error
	// Name 返回策略名，仅用于日志。
	Name() string
}

// procExecutor 执行一次存储过程调用并把结果扫进 dest。
// 抽出来是为了让单测能注入假的执行器。
type procExecutor func(ctx context.Context, proc string, dest any, args []any) error

// ProcedureStrategy 优先走存储过程，按错误分类决定是否退回 fallback：
// - 过程不存在 / 无执行权限 / 熔断器打开 -> 走 fallback，并记住该过程不可用
// - 基础设施瞬时错误                     -> 用 fallback 重试一次
// - 其他错误（如过程内 SIGNAL 校验失败） -> 原样上抛，不吞掉
type ProcedureStrategy struct {
	exec    procExecutor
	breaker *middleware.CircuitBreaker
	log     logger.Logger

	// 单个策略实例被 Directory/Scheduler/Calendar 跨并发 handler 共享，
	// 不可用过程的记忆必须加锁。
	mu          sync.RWMutex
	unavailable map[string]bool // 运行期发现不可用的过程（探测结果的补充）
}

func (s *ProcedureStrategy) isUnavailable(proc string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unavailable[proc]
}

func (s *ProcedureStrategy) markUnavailable(proc string) {
	s.mu.Lock()
	s.unavailable[proc] = true
	s.mu.Unlock()
}

// NewProcedureStrategy 构造存储过程优先策略。
func NewProcedureStrategy(db *gorm.DB, breaker *middleware.CircuitBreaker, log logger.Logger) *ProcedureStrategy {
	return &ProcedureStrategy{
		exec:        gormProcExecutor(db),
		breaker:     breaker,
		log:         log,
		unavailable: make(map[string]bool),
	}
}

func (s *ProcedureStrategy) Name() string { return "procedure" }

func (s *ProcedureStrategy) Call(ctx context.Context, op Op) error {
	if op.Fallback == nil {
		return fmt.Errorf("store: op %q has no fallback", op.Proc)
	}
	if op.Proc == "" || s.isUnavailable(op.Proc) {
		return op.Fallback(ctx)
	}

	primary := func() error {
		return s.exec(ctx, op.Proc, op.Dest, op.Args)
	}

	var err error
	if s.breaker != nil {
		err = s.breaker.Call(ctx, primary)
	} else {
		err = primary()
	}
	if err == nil {
		return nil
	}

	switch {
	case err == middleware.ErrBreakerOpen || err == middleware.ErrBreakerHalfOpenLimit:
		// 熔断中不去碰存储过程，直接降级
		if s.log != nil {
			s.log.Debugf("procedure breaker %s, serving %s via fallback", s.breaker.GetState(), op.Proc)
		}
		return op.Fallback(ctx)
	case IsProcedureUnavailable(err):
		if s.log != nil {
			s.log.Warnf("procedure %s unavailable, falling back to composed queries: %v", op.Proc, err)
		}
		s.markUnavailable(op.Proc)
		return op.Fallback(ctx)
	case IsTransientStoreError(err):
		if s.log != nil {
			s.log.Warnf("procedure %s hit transient store error, retrying once via fallback: %v", op.Proc, err)
		}
		if ferr := op.Fallback(ctx); ferr != nil {
			return fleeterr.Transient(op.Proc, ferr)
		}
		return nil
	default:
		// 业务性错误（过程内校验拒绝等）必须上抛给调用方
		return err
	}
}

// QueryStrategy 永远走组合查询路径（探测到存储过程不可用时选用）。
type QueryStrategy struct{}

func (QueryStrategy) Name() string { return "query" }

func (QueryStrategy) Call(ctx context.Context, op Op) error {
	if op.Fallback == nil {
		return fmt.Errorf("store: op %q has no fallback", op.Proc)
	}
	return op.Fallback(ctx)
}

// gormProcExecutor 通过 GORM Raw 执行 `CALL proc(?, ...)` 并扫描结果。
func gormProcExecutor(db *gorm.DB) procExecutor {
	return func(ctx context.Context, proc string, dest any, args []any) error {
		if db == nil {
			return fmt.Errorf("store: db is nil")
		}
		tx := db.WithContext(ctx).Raw(callExpr(proc, len(args)), args...)
		if dest != nil {
			return tx.Scan(dest).Error
		}
		return tx.Error
	}
}

func callExpr(proc string, argc int) string {
	if argc == 0 {
		return fmt.Sprintf("CALL %s()", proc)
	}
	ph := strings.Repeat("?, ", argc)
	return fmt.Sprintf("CALL %s(%s)", proc, strings.TrimSuffix(ph, ", "))
}

package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/FleetLink/FleetLink/internal/common/config"
	"github.com/FleetLink/FleetLink/internal/common/logger"
	"github.com/FleetLink/FleetLink/internal/common/middleware"
)

// FleetLink 依赖的存储过程清单。探测只看这些名字。
const (
	ProcListVehicles     = "sp_list_vehicles_with_drivers"
	ProcGetVehicle       = "sp_get_vehicle_with_driver"
	ProcSearchVehicles   = "sp_search_vehicles_with_drivers"
	ProcListBlocks       = "sp_list_blocks_enriched"
	ProcBlocksForVehicle = "sp_blocks_for_vehicle"
	ProcBlocksForRange   = "sp_blocks_in_range"
)

// KnownProcedures 返回全部已知过程名。
func KnownProcedures() []string {
	return []string{
		ProcListVehicles,
		ProcGetVehicle,
		ProcSearchVehicles,
		ProcListBlocks,
		ProcBlocksForVehicle,
		ProcBlocksForRange,
	}
}

// Select 在启动时做一次能力探测并选定策略：
// - 配置关闭存储过程、探测失败、或一个过程都没有 -> QueryStrategy
// - 至少存在一个已知过程                         -> ProcedureStrategy（缺席的过程逐个降级）
//
// 调用点之后不再做 primary/fallback 分支，这是设计约束而不是优化。
func Select(db *gorm.DB, cfg config.StoreConfig, log logger.Logger) Strategy {
	if !cfg.EnableProcedures {
		if log != nil {
			log.Info("store: procedures disabled by config, using query strategy")
		}
		return QueryStrategy{}
	}

	timeout := time.Duration(cfg.ProbeTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	found, err := probeProcedures(ctx, db, KnownProcedures())
	if err != nil {
		if log != nil {
			log.Warnf("store: capability probe failed, using query strategy: %v", err)
		}
		return QueryStrategy{}
	}
	if len(found) == 0 {
		if log != nil {
			log.Info("store: no stored procedures found, using query strategy")
		}
		return QueryStrategy{}
	}

	failures := cfg.BreakerFailures
	if failures <= 0 {
		failures = 5
	}
	reset := time.Duration(cfg.BreakerResetSec) * time.Second
	if reset <= 0 {
		reset = 30 * time.Second
	}
	breaker := middleware.NewCircuitBreaker("store-procedures", failures, reset)

	s := NewProcedureStrategy(db, breaker, log)
	for _, name := range KnownProcedures() {
		if !found[name] {
			s.markUnavailable(name)
		}
	}
	if log != nil {
		log.Infof("store: procedure strategy selected (%d/%d procedures present)", len(found), len(KnownProcedures()))
	}
	return s
}

// probeProcedures 查询 information_schema 里当前库的过程清单。
func probeProcedures(ctx context.Context, db *gorm.DB, names []string) (map[string]bool, error) {
	if db == nil || len(names) == 0 {
		return nil, nil
	}
	var rows []string
	err := db.WithContext(ctx).
		Raw(`SELECT ROUTINE_NAME FROM information_schema.ROUTINES
		     WHERE ROUTINE_SCHEMA = DATABASE() AND ROUTINE_TYPE = 'PROCEDURE' AND ROUTINE_NAME IN ?`, names).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(rows))
	for _, r := range rows {
		found[r] = true
	}
	return found, nil
}

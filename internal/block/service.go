package block

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FleetLink/FleetLink/internal/common/logger"
	"github.com/FleetLink/FleetLink/internal/fleeterr"
	"github.com/FleetLink/FleetLink/internal/store"
	"github.com/FleetLink/FleetLink/internal/vehicle"
)

// Store 是 Scheduler 依赖的封禁存储操作集合，*Repo 实现它。
type Store interface {
	Create(ctx context.Context, b *Block) error
	Save(ctx context.Context, b *Block) error
	FindByID(ctx context.Context, id string) (*Block, error)
	ListEnriched(ctx context.Context) ([]Block, error)
	ListForVehicleEnriched(ctx context.Context, vehicleID string) ([]Block, error)
	ActiveOverlapExists(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) (bool, error)
	ActiveHoldExists(ctx context.Context, vehicleID string) (bool, error)
	ActiveInRangeEnriched(ctx context.Context, start, end time.Time) ([]Block, error)
}

// VehicleFinder 校验封禁目标车辆存在，由 vehicle.Repo 实现。
type VehicleFinder interface {
	FindByID(ctx context.Context, id string) (*vehicle.Vehicle, error)
}

// StatusSync 封禁创建/结束后需要联动的车辆状态写入，由 vehicle.Synchronizer 实现。
type StatusSync interface {
	SetBlocked(ctx context.Context, vehicleID string) error
	SetAvailable(ctx context.Context, vehicleID string, expectedPrior vehicle.Status) error
}

// Result 带软告警的操作结果：封禁记录本身已落库（它是事实源），
// 但配套的车辆状态写入失败时 Warning 非空，等待 Reconcile 自愈。
type Result struct {
	Block   *Block
	Warning string
}

// Scheduler 封禁排期用例。
type Scheduler struct {
	blocks   Store
	vehicles VehicleFinder
	sync     StatusSync
	strategy store.Strategy
	log      logger.Logger
}

func NewScheduler(blocks Store, vehicles VehicleFinder, sync StatusSync, strategy store.Strategy, log logger.Logger) *Scheduler {
	if strategy == nil {
		strategy = store.QueryStrategy{}
	}
	return &Scheduler{blocks: blocks, vehicles: vehicles, sync: sync, strategy: strategy, log: log}
}

// CreateInput 创建封禁入参。ActorID 为空表示操作者未知。
type CreateInput struct {
	VehicleID string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	ActorID   string
}

// ListAll 全部封禁（含历史），按开始时间倒序。
func (s *Scheduler) ListAll(ctx context.Context) ([]Block, error) {
	var out []Block
	err := s.strategy.Call(ctx, store.Op{
		Proc: store.ProcListBlocks,
		Dest: &out,
		Fallback: func(ctx context.Context) error {
			bs, ferr := s.blocks.ListEnriched(ctx)
			if ferr != nil {
				return ferr
			}
			out = bs
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListForVehicle 某辆车的全部封禁，按开始时间倒序。
func (s *Scheduler) ListForVehicle(ctx context.Context, vehicleID string) ([]Block, error) {
	vehicleID = strings.TrimSpace(vehicleID)
	if vehicleID == "" {
		return nil, fleeterr.Validationf("vehicle_id", "vehicle id is required")
	}
	var out []Block
	err := s.strategy.Call(ctx, store.Op{
		Proc: store.ProcBlocksForVehicle,
		Args: []any{vehicleID},
		Dest: &out,
		Fallback: func(ctx context.Context) error {
			bs, ferr := s.blocks.ListForVehicleEnriched(ctx, vehicleID)
			if ferr != nil {
				return ferr
			}
			out = bs
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create 创建封禁：
//  1. 校验时间段 / 原因 / 车辆存在
//  2. 重叠检查：与该车任一 active 封禁相交则 Conflict（半开区间，首尾相接放行）
//  3. 插入 active 封禁记录
//  4. 联动 Synchronizer 把车辆置为 blocked
//
// 第 4 步失败不回滚第 3 步：封禁记录是事实源，失败以软告警返回，
// 后续由 Reconcile 收敛车辆状态。
func (s *Scheduler) Create(ctx context.Context, in CreateInput) (*Result, error) {
	in.VehicleID = strings.TrimSpace(in.VehicleID)
	if in.VehicleID == "" {
		return nil, fleeterr.Validationf("vehicle_id", "vehicle id is required")
	}
	if err := ValidateInterval(in.StartDate, in.EndDate, in.Reason); err != nil {
		return nil, err
	}
	v, err := s.vehicles.FindByID(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}

	overlap, err := s.blocks.ActiveOverlapExists(ctx, in.VehicleID, in.StartDate, in.EndDate, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, fleeterr.Conflictf("overlap", "This vehicle already has an active block in that period")
	}

	b := &Block{
		ID:        uuid.NewString(),
		VehicleID: in.VehicleID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Reason:    strings.TrimSpace(in.Reason),
		Status:    StatusActive,
		BlockedBy: optionalID(in.ActorID),
	}
	if err := s.blocks.Create(ctx, b); err != nil {
		return nil, err
	}

	res := &Result{Block: b}
	if s.sync != nil {
		if serr := s.sync.SetBlocked(ctx, in.VehicleID); serr != nil {
			if s.log != nil {
				s.log.Errorf("block %s created but status sync failed for vehicle %s: %v", b.ID, v.PlateNumber, serr)
			}
			res.Warning = "Block created, but the vehicle status update failed; reconciliation will repair it"
		}
	}
	return res, nil
}

// Update 编辑生效中的封禁：同 Create 的校验，重叠检查排除自身；
// 车辆归属不可变；已完成的封禁是只读历史。
func (s *Scheduler) Update(ctx context.Context, blockID string, start, end time.Time, reason string) (*Block, error) {
	b, err := s.blocks.FindByID(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCompleted {
		return nil, fleeterr.Conflictf("already_completed", "This block is completed and can no longer be edited")
	}
	if err := ValidateInterval(start, end, reason); err != nil {
		return nil, err
	}

	overlap, err := s.blocks.ActiveOverlapExists(ctx, b.VehicleID, start, end, b.ID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, fleeterr.Conflictf("overlap", "This vehicle already has an active block in that period")
	}

	b.StartDate = start
	b.EndDate = end
	b.Reason = strings.TrimSpace(reason)
	if err := s.blocks.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Complete 提前结束封禁：
//  1. 已完成的封禁再次 Complete 是 Conflict，不做幂等静默
//  2. status=completed，end_date=now
//  3. 联动 Synchronizer 把车辆置回 available；仅当其状态仍是 blocked
//     且没有其他 active 封禁才真正写入，守卫逻辑在 Synchronizer.SetAvailable 内
//
// 第 3 步失败同 Create：软告警 + Reconcile 自愈。
func (s *Scheduler) Complete(ctx context.Context, blockID string) (*Result, error) {
	b, err := s.blocks.FindByID(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCompleted {
		return nil, fleeterr.Conflictf("already_completed", "This block is already completed")
	}

	b.Status = StatusCompleted
	b.EndDate = time.Now()
	if err := s.blocks.Save(ctx, b); err != nil {
		return nil, err
	}

	res := &Result{Block: b}
	if s.sync != nil {
		if serr := s.sync.SetAvailable(ctx, b.VehicleID, vehicle.StatusBlocked); serr != nil {
			if s.log != nil {
				s.log.Errorf("block %s completed but status sync failed for vehicle %s: %v", b.ID, b.VehicleID, serr)
			}
			res.Warning = "Block completed, but the vehicle status update failed; reconciliation will repair it"
		}
	}
	return res, nil
}

func optionalID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}

package vehicle

import (
	"context"
	"time"

	"github.com/FleetLink/FleetLink/internal/common/logger"
	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

// Store 是 Synchronizer / Directory 依赖的车辆存储操作集合，*Repo 实现它。
// 收窄成接口是为了让服务层可以用内存假实现做单测。
type Store interface {
	Create(ctx context.Context, v *Vehicle) error
	UpdateDetails(ctx context.Context, id, plate, model string, year int) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*Vehicle, error)
	GetEnriched(ctx context.Context, id string) (*Vehicle, error)
	ListEnriched(ctx context.Context) ([]Vehicle, error)
	SearchEnriched(ctx context.Context, text string) ([]Vehicle, error)
	SetStatusField(ctx context.Context, id string, st Status) error
	SetAssignee(ctx context.Context, id string, driverID *string) error
}

// HoldChecker 查询某辆车当前是否存在生效中的封禁，由 block.Repo 实现。
type HoldChecker interface {
	ActiveHoldExists(ctx context.Context, vehicleID string) (bool, error)
}

// DriverFinder 判断指派目标是否为合法司机，由 user.Repo 实现。
type DriverFinder interface {
	IsEligibleDriver(ctx context.Context, id string) (bool, error)
}

// Synchronizer 是 Vehicle.status / Vehicle.assigned_to 的唯一写入者。
//
// 底层存储没有跨表事务，每个操作是尽力而为的两步写（status 列、assigned_to 列）；
// 单步失败只记日志、不回滚已成功的那步，可能留下短暂的不一致（例如封禁记录已
// 插入但车辆仍显示 available）。Reconcile 是为此设计的补偿手段：按权威关系重算
// 应有状态并纠偏，幂等、可独立调用，不只是 create/complete 的私有助手。
type Synchronizer struct {
	vehicles Store
	holds    HoldChecker
	drivers  DriverFinder
	log      logger.Logger
}

func NewSynchronizer(vehicles Store, holds HoldChecker, drivers DriverFinder, log logger.Logger) *Synchronizer {
	return &Synchronizer{vehicles: vehicles, holds: holds, drivers: drivers, log: log}
}

// SetBlocked 把车辆置为 blocked。清空 assigned_to（不变量：仅 assigned 状态持有指派）。
func (s *Synchronizer) SetBlocked(ctx context.Context, vehicleID string) error {
	v, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if err := ApplyStatus(v, StatusBlocked, nil, time.Now()); err != nil {
		return fleeterr.Validationf("status", "%v", err)
	}
	return s.writeBoth(ctx, v)
}

// SetAvailable 把车辆置回 available。
// expectedPrior 非空时做守卫：当前状态已不是 expectedPrior 说明途中被并发改过
// （例如封禁期间被重新指派），跳过写入，交给 Reconcile 收敛。
// 若车辆仍有其他生效封禁，同样跳过（blocked 仍是应有状态）。
func (s *Synchronizer) SetAvailable(ctx context.Context, vehicleID string, expectedPrior Status) error {
	v, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if expectedPrior != "" && v.Status != expectedPrior {
		if s.log != nil {
			s.log.Warnf("skip set-available for vehicle %s: status is %s, expected %s", vehicleID, v.Status, expectedPrior)
		}
		return nil
	}
	if s.holds != nil {
		held, herr := s.holds.ActiveHoldExists(ctx, vehicleID)
		if herr != nil {
			return herr
		}
		if held {
			if s.log != nil {
				s.log.Infof("vehicle %s keeps blocked: another active block exists", vehicleID)
			}
			return nil
		}
	}
	if err := ApplyStatus(v, StatusAvailable, nil, time.Now()); err != nil {
		return fleeterr.Validationf("status", "%v", err)
	}
	return s.writeBoth(ctx, v)
}

// SetAssigned 把车辆指派给司机。目标必须是 driver 角色用户；封禁中的车辆不可指派。
func (s *Synchronizer) SetAssigned(ctx context.Context, vehicleID, driverID string) error {
	if driverID == "" {
		return fleeterr.Validationf("driver_id", "driver id is required")
	}
	if s.drivers != nil {
		ok, err := s.drivers.IsEligibleDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if !ok {
			return fleeterr.Validationf("driver_id", "user %s is not an eligible driver", driverID)
		}
	}

	v, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if s.holds != nil {
		held, herr := s.holds.ActiveHoldExists(ctx, vehicleID)
		if herr != nil {
			return herr
		}
		if held {
			return fleeterr.Conflictf("vehicle_in_use", "vehicle %s has an active block and cannot be assigned", v.PlateNumber)
		}
	}
	if err := ApplyStatus(v, StatusAssigned, &driverID, time.Now()); err != nil {
		return fleeterr.Validationf("status", "%v", err)
	}
	return s.writeBoth(ctx, v)
}

// Reconcile 重算车辆应有状态并纠偏：
// - 存在生效封禁            -> blocked
// - assigned_to 非空且无封禁 -> assigned
// - 其余                     -> available
// 返回纠偏后的车辆（含司机信息）。
func (s *Synchronizer) Reconcile(ctx context.Context, vehicleID string) (*Vehicle, error) {
	v, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	held := false
	if s.holds != nil {
		held, err = s.holds.ActiveHoldExists(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
	}

	want := StatusAvailable
	keepDriver := v.AssignedTo
	switch {
	case held:
		want = StatusBlocked
		keepDriver = nil
	case v.AssignedTo != nil && *v.AssignedTo != "":
		want = StatusAssigned
	default:
		keepDriver = nil
	}

	if v.Status != want || !sameAssignee(v.AssignedTo, keepDriver) {
		if s.log != nil {
			s.log.Infof("reconcile vehicle %s: status %s -> %s", vehicleID, v.Status, want)
		}
		if err := ApplyStatus(v, want, keepDriver, time.Now()); err != nil {
			return nil, fleeterr.Validationf("status", "%v", err)
		}
		if werr := s.writeBoth(ctx, v); werr != nil {
			return nil, werr
		}
	}
	return s.vehicles.GetEnriched(ctx, vehicleID)
}

// writeBoth 两步写：先 status 列，再 assigned_to 列。任一步失败都记日志并继续，
// 最后把首个错误返回给调用方（作为软告警，不代表另一步被回滚）。
func (s *Synchronizer) writeBoth(ctx context.Context, v *Vehicle) error {
	var first error
	if err := s.vehicles.SetStatusField(ctx, v.ID, v.Status); err != nil {
		first = err
		if s.log != nil {
			s.log.Errorf("status write failed for vehicle %s (continuing): %v", v.ID, err)
		}
	}
	if err := s.vehicles.SetAssignee(ctx, v.ID, v.AssignedTo); err != nil {
		if first == nil {
			first = err
		}
		if s.log != nil {
			s.log.Errorf("assignee write failed for vehicle %s: %v", v.ID, err)
		}
	}
	return first
}

func sameAssignee(a, b *string) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}

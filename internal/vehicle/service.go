package vehicle

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FleetLink/FleetLink/internal/common/logger"
	"github.com/FleetLink/FleetLink/internal/fleeterr"
	"github.com/FleetLink/FleetLink/internal/store"
)

// Directory 车辆目录用例：查询走数据访问策略（存储过程优先），写入走存储；
// 一切状态变更都交给 Synchronizer，这里绝不直接写 status / assigned_to。
type Directory struct {
	vehicles Store
	holds    HoldChecker
	sync     *Synchronizer
	strategy store.Strategy
	log      logger.Logger
}

func NewDirectory(vehicles Store, holds HoldChecker, sync *Synchronizer, strategy store.Strategy, log logger.Logger) *Directory {
	if strategy == nil {
		strategy = store.QueryStrategy{}
	}
	return &Directory{vehicles: vehicles, holds: holds, sync: sync, strategy: strategy, log: log}
}

// CreateInput 创建车辆入参。
type CreateInput struct {
	PlateNumber string
	Model       string
	Year        int
}

// UpdateInput 更新车辆入参；nil 表示该字段不改。
// Status 变更不在这里落库，而是转交 Synchronizer。
type UpdateInput struct {
	PlateNumber *string
	Model       *string
	Year        *int
	Status      *Status
	DriverID    *string // Status 变为 assigned 时必填
}

// List 全部车辆（含司机信息），按车牌排序。
func (d *Directory) List(ctx context.Context) ([]Vehicle, error) {
	var out []Vehicle
	err := d.strategy.Call(ctx, store.Op{
		Proc: store.ProcListVehicles,
		Dest: &out,
		Fallback: func(ctx context.Context) error {
			vs, ferr := d.vehicles.ListEnriched(ctx)
			if ferr != nil {
				return ferr
			}
			out = vs
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get 单辆车（含司机信息）。
func (d *Directory) Get(ctx context.Context, id string) (*Vehicle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fleeterr.Validationf("id", "vehicle id is required")
	}
	var out []Vehicle
	err := d.strategy.Call(ctx, store.Op{
		Proc: store.ProcGetVehicle,
		Args: []any{id},
		Dest: &out,
		Fallback: func(ctx context.Context) error {
			v, ferr := d.vehicles.GetEnriched(ctx, id)
			if ferr != nil {
				return ferr
			}
			out = []Vehicle{*v}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fleeterr.ErrNotFound
	}
	return &out[0], nil
}

// Search 车牌/型号子串匹配；空白文本等价于 List。
func (d *Directory) Search(ctx context.Context, text string) ([]Vehicle, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return d.List(ctx)
	}
	var out []Vehicle
	err := d.strategy.Call(ctx, store.Op{
		Proc: store.ProcSearchVehicles,
		Args: []any{text},
		Dest: &out,
		Fallback: func(ctx context.Context) error {
			vs, ferr := d.vehicles.SearchEnriched(ctx, text)
			if ferr != nil {
				return ferr
			}
			out = vs
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create 校验并创建车辆，初始状态恒为 available、未指派。
func (d *Directory) Create(ctx context.Context, in CreateInput) (*Vehicle, error) {
	plate := NormalizePlate(in.PlateNumber)
	if err := validateVehicleFields(plate, in.Model, in.Year); err != nil {
		return nil, err
	}

	// 预检重复车牌（唯一索引在 repo 层兜底并发竞争）
	if _, err := d.vehicles.FindByPlate(ctx, plate); err == nil {
		return nil, fleeterr.Conflictf("duplicate_plate", "plate number %s already exists", plate)
	} else if !fleeterr.IsNotFound(err) {
		return nil, err
	}

	v := &Vehicle{
		ID:          uuid.NewString(),
		PlateNumber: plate,
		Model:       strings.TrimSpace(in.Model),
		Year:        in.Year,
		Status:      StatusAvailable,
	}
	if err := d.vehicles.Create(ctx, v); err != nil {
		return nil, err
	}
	return d.vehicles.GetEnriched(ctx, v.ID)
}

// Update 更新车辆字段；status 字段的变化转交 Synchronizer。
func (d *Directory) Update(ctx context.Context, id string, in UpdateInput) (*Vehicle, error) {
	v, err := d.vehicles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plate := v.PlateNumber
	if in.PlateNumber != nil {
		plate = NormalizePlate(*in.PlateNumber)
	}
	model := v.Model
	if in.Model != nil {
		model = strings.TrimSpace(*in.Model)
	}
	year := v.Year
	if in.Year != nil {
		year = *in.Year
	}
	if err := validateVehicleFields(plate, model, year); err != nil {
		return nil, err
	}

	if plate != v.PlateNumber {
		if _, ferr := d.vehicles.FindByPlate(ctx, plate); ferr == nil {
			return nil, fleeterr.Conflictf("duplicate_plate", "plate number %s already exists", plate)
		} else if !fleeterr.IsNotFound(ferr) {
			return nil, ferr
		}
	}

	if err := d.vehicles.UpdateDetails(ctx, v.ID, plate, model, year); err != nil {
		return nil, err
	}

	if in.Status != nil && *in.Status != v.Status {
		if err := d.applyStatusChange(ctx, v.ID, *in.Status, in.DriverID); err != nil {
			return nil, err
		}
	}
	return d.vehicles.GetEnriched(ctx, id)
}

// Delete 删除车辆。使用中（非 available 或仍有生效封禁）的车辆拒绝删除。
func (d *Directory) Delete(ctx context.Context, id string) error {
	v, err := d.vehicles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if v.Status != StatusAvailable {
		return fleeterr.Conflictf("vehicle_in_use", "vehicle %s is %s and cannot be deleted", v.PlateNumber, v.Status)
	}
	if d.holds != nil {
		held, herr := d.holds.ActiveHoldExists(ctx, id)
		if herr != nil {
			return herr
		}
		if held {
			return fleeterr.Conflictf("vehicle_in_use", "vehicle %s has an active block and cannot be deleted", v.PlateNumber)
		}
	}
	return d.vehicles.Delete(ctx, id)
}

// Assign 把车辆指派给司机。
func (d *Directory) Assign(ctx context.Context, vehicleID, driverID string) (*Vehicle, error) {
	if d.sync == nil {
		return nil, fleeterr.Validationf("", "synchronizer not configured")
	}
	if err := d.sync.SetAssigned(ctx, vehicleID, driverID); err != nil {
		return nil, err
	}
	return d.vehicles.GetEnriched(ctx, vehicleID)
}

// Unassign 取消指派，车辆回到 available。
func (d *Directory) Unassign(ctx context.Context, vehicleID string) (*Vehicle, error) {
	if d.sync == nil {
		return nil, fleeterr.Validationf("", "synchronizer not configured")
	}
	if err := d.sync.SetAvailable(ctx, vehicleID, StatusAssigned); err != nil {
		return nil, err
	}
	return d.vehicles.GetEnriched(ctx, vehicleID)
}

// Reconcile 暴露同步器的对账修复操作。
func (d *Directory) Reconcile(ctx context.Context, vehicleID string) (*Vehicle, error) {
	if d.sync == nil {
		return nil, fleeterr.Validationf("", "synchronizer not configured")
	}
	return d.sync.Reconcile(ctx, vehicleID)
}

func (d *Directory) applyStatusChange(ctx context.Context, vehicleID string, to Status, driverID *string) error {
	if d.sync == nil {
		return fleeterr.Validationf("", "synchronizer not configured")
	}
	switch to {
	case StatusBlocked:
		return d.sync.SetBlocked(ctx, vehicleID)
	case StatusAvailable:
		return d.sync.SetAvailable(ctx, vehicleID, "")
	case StatusAssigned:
		if driverID == nil || *driverID == "" {
			return fleeterr.Validationf("driver_id", "driver id is required to set status assigned")
		}
		return d.sync.SetAssigned(ctx, vehicleID, *driverID)
	default:
		return fleeterr.Validationf("status", "unknown status %q", to)
	}
}

// validateVehicleFields 车牌 2-20 位、型号 2-100 位、年份 1900..明年。
// 长度按字符数算，不按字节数，中文车牌/型号不能多算。
func validateVehicleFields(plate, model string, year int) error {
	if n := utf8.RuneCountInString(plate); n < 2 || n > 20 {
		return fleeterr.Validationf("plate_number", "plate number must be 2-20 characters")
	}
	model = strings.TrimSpace(model)
	if n := utf8.RuneCountInString(model); n < 2 || n > 100 {
		return fleeterr.Validationf("model", "model must be 2-100 characters")
	}
	maxYear := time.Now().Year() + 1
	if year < 1900 || year > maxYear {
		return fleeterr.Validationf("year", "year must be between 1900 and %d", maxYear)
	}
	return nil
}

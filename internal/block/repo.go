package block

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

// enrichSelect 把车辆与创建者信息一起带出来（fallback 查询路径）。
const enrichSelect = "blocks.*, v.plate_number AS vehicle_plate, v.model AS vehicle_model, u.name AS blocked_by_name"
const enrichJoins = "LEFT JOIN vehicles v ON v.id = blocks.vehicle_id LEFT JOIN users u ON u.id = blocks.blocked_by"

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, b *Block) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if err := db.Create(b).Error; err != nil {
		return fleeterr.Transient("block.create", err)
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, b *Block) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if err := db.Save(b).Error; err != nil {
		return fleeterr.Transient("block.save", err)
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Block, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var b Block
	err := db.Where("id = ?", id).First(&b).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fleeterr.ErrNotFound
	}
	if err != nil {
		return nil, fleeterr.Transient("block.find", err)
	}
	return &b, nil
}

// ListEnriched 全部封禁（含历史），按开始时间倒序。等价于存储过程
// sp_list_blocks_enriched 的组合查询实现。
func (r *Repo) ListEnriched(ctx context.Context) ([]Block, error) {
	return r.listEnrichedWhere(ctx, "", nil)
}

// ListForVehicleEnriched 某辆车的全部封禁，按开始时间倒序。
func (r *Repo) ListForVehicleEnriched(ctx context.Context, vehicleID string) ([]Block, error) {
	return r.listEnrichedWhere(ctx, "blocks.vehicle_id = ?", []any{vehicleID})
}

func (r *Repo) listEnrichedWhere(ctx context.Context, cond string, args []any) ([]Block, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	q := db.Model(&Block{}).
		Select(enrichSelect).
		Joins(enrichJoins).
		Order("blocks.start_date DESC")
	if cond != "" {
		q = q.Where(cond, args...)
	}
	var blocks []Block
	if err := q.Find(&blocks).Error; err != nil {
		return nil, fleeterr.Transient("block.list", err)
	}
	return blocks, nil
}

// ActiveOverlapExists 判断某车辆是否已有 active 封禁与 [start, end) 相交。
// excludeID 非空时排除指定封禁（编辑场景下排除自身）。
// 半开区间语义：已有封禁恰好结束于 start、或恰好开始于 end，不算相交。
func (r *Repo) ActiveOverlapExists(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	q := db.Model(&Block{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, StatusActive).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fleeterr.Transient("block.overlap_check", err)
	}
	return count > 0, nil
}

// ActiveHoldExists 判断某车辆当前是否有生效封禁（vehicle.HoldChecker 实现）。
func (r *Repo) ActiveHoldExists(ctx context.Context, vehicleID string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	err := db.Model(&Block{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, StatusActive).
		Count(&count).Error
	if err != nil {
		return false, fleeterr.Transient("block.active_check", err)
	}
	return count > 0, nil
}

// ActiveInRangeEnriched 与 [start, end] 相交的 active 封禁（日历投影用），
// 按开始时间升序。等价于存储过程 sp_blocks_in_range。
func (r *Repo) ActiveInRangeEnriched(ctx context.Context, start, end time.Time) ([]Block, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var blocks []Block
	err := db.Model(&Block{}).
		Select(enrichSelect).
		Joins(enrichJoins).
		Where("blocks.status = ?", StatusActive).
		Where("blocks.start_date <= ? AND blocks.end_date >= ?", end, start).
		Order("blocks.start_date").
		Find(&blocks).Error
	if err != nil {
		return nil, fleeterr.Transient("block.range", err)
	}
	return blocks, nil
}

package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

// driverSelect 把 assigned_to 关联的司机联系方式一起带出来（fallback 查询路径）。
const driverSelect = "vehicles.*, u.name AS driver_name, u.email AS driver_email, u.phone AS driver_phone"
const driverJoin = "LEFT JOIN users u ON u.id = vehicles.assigned_to"

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

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if err := db.Create(v).Error; err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			// 唯一索引兜底：并发下 FindByPlate 预检可能双双通过
			return fleeterr.Conflictf("duplicate_plate", "plate number %s already exists", v.PlateNumber)
		}
		return fleeterr.Transient("vehicle.create", err)
	}
	return nil
}

// UpdateDetails 只更新基础信息列，status / assigned_to 永远不在此路径写入。
func (r *Repo) UpdateDetails(ctx context.Context, id, plate, model string, year int) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := db.Model(&Vehicle{}).Where("id = ?", id).Updates(map[string]any{
		"plate_number": plate,
		"model":        model,
		"year":         year,
	})
	if res.Error != nil {
		var me *mysql.MySQLError
		if errors.As(res.Error, &me) && me.Number == 1062 {
			return fleeterr.Conflictf("duplicate_plate", "plate number %s already exists", plate)
		}
		return fleeterr.Transient("vehicle.update", res.Error)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := db.Where("id = ?", id).Delete(&Vehicle{})
	if res.Error != nil {
		return fleeterr.Transient("vehicle.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return fleeterr.ErrNotFound
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	err := db.Where("id = ?", id).First(&v).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fleeterr.ErrNotFound
	}
	if err != nil {
		return nil, fleeterr.Transient("vehicle.find", err)
	}
	return &v, nil
}

func (r *Repo) FindByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	err := db.Where("plate_number = ?", NormalizePlate(plate)).First(&v).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fleeterr.ErrNotFound
	}
	if err != nil {
		return nil, fleeterr.Transient("vehicle.find_by_plate", err)
	}
	return &v, nil
}

// ListEnriched 全量车辆 + 司机联系信息，按车牌排序。等价于存储过程
// sp_list_vehicles_with_drivers 的组合查询实现。
func (r *Repo) ListEnriched(ctx context.Context) ([]Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var vehicles []Vehicle
	err := db.Model(&Vehicle{}).
		Select(driverSelect).
		Joins(driverJoin).
		Order("vehicles.plate_number").
		Find(&vehicles).Error
	if err != nil {
		return nil, fleeterr.Transient("vehicle.list", err)
	}
	return vehicles, nil
}

// SearchEnriched 车牌或型号的大小写不敏感子串匹配；空白等价于 ListEnriched。
func (r *Repo) SearchEnriched(ctx context.Context, text string) ([]Vehicle, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return r.ListEnriched(ctx)
	}
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	pattern := "%" + strings.ToLower(text) + "%"
	var vehicles []Vehicle
	err := db.Model(&Vehicle{}).
		Select(driverSelect).
		Joins(driverJoin).
		Where("LOWER(vehicles.plate_number) LIKE ? OR LOWER(vehicles.model) LIKE ?", pattern, pattern).
		Order("vehicles.plate_number").
		Find(&vehicles).Error
	if err != nil {
		return nil, fleeterr.Transient("vehicle.search", err)
	}
	return vehicles, nil
}

func (r *Repo) GetEnriched(ctx context.Context, id string) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	err := db.Model(&Vehicle{}).
		Select(driverSelect).
		Joins(driverJoin).
		Where("vehicles.id = ?", id).
		First(&v).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fleeterr.ErrNotFound
	}
	if err != nil {
		return nil, fleeterr.Transient("vehicle.get", err)
	}
	return &v, nil
}

// SetStatusField 只更新 status 列。Synchronizer 两步写的第一步。
func (r *Repo) SetStatusField(ctx context.Context, id string, st Status) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	// 注意：MySQL 对“值未变化”的 UPDATE 返回 0 行，不能据此判定 NotFound，
	// 存在性由调用方在读取阶段保证。
	res := db.Model(&Vehicle{}).Where("id = ?", id).Update("status", st)
	if res.Error != nil {
		return fleeterr.Transient("vehicle.set_status", res.Error)
	}
	return nil
}

// SetAssignee 只更新 assigned_to 列。Synchronizer 两步写的第二步。
func (r *Repo) SetAssignee(ctx context.Context, id string, driverID *string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := db.Model(&Vehicle{}).Where("id = ?", id).Update("assigned_to", driverID)
	if res.Error != nil {
		return fleeterr.Transient("vehicle.set_assignee", res.Error)
	}
	return nil
}

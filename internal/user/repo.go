package user

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, u *User) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fleeterr.Transient("user.create", err)
	}
	return nil
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var u User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fleeterr.ErrNotFound
	}
	if err != nil {
		return nil, fleeterr.Transient("user.find_by_username", err)
	}
	return &u, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fleeterr.ErrNotFound
	}
	if err != nil {
		return nil, fleeterr.Transient("user.find", err)
	}
	return &u, nil
}

// IsEligibleDriver 判断指派目标是否存在且持有 driver 角色
// （vehicle.DriverFinder 实现）。用户不存在不视为错误，返回 false。
func (r *Repo) IsEligibleDriver(ctx context.Context, id string) (bool, error) {
	u, err := r.FindByID(ctx, id)
	if fleeterr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.HasRole(RoleDriver), nil
}

// List 用户分页，按创建时间倒序。role 非空时只返回持有该角色的用户。
func (r *Repo) List(ctx context.Context, role string, offset, limit int) ([]User, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := r.db.WithContext(ctx).Model(&User{})
	if role != "" {
		// roles 是逗号分隔串，用 FIND_IN_SET 精确匹配单个角色
		q = q.Where("FIND_IN_SET(?, roles) > 0", role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fleeterr.Transient("user.count", err)
	}
	var users []User
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fleeterr.Transient("user.list", err)
	}
	return users, total, nil
}

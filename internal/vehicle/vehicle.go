package vehicle

import (
	"strings"
	"time"
)

// Status 车辆状态枚举（持久化为字符串）。
type Status string

const (
	StatusAvailable Status = "available" // 空闲可用
	StatusAssigned  Status = "assigned"  // 已指派给司机
	StatusBlocked   Status = "blocked"   // 维保/管理原因封禁中
)

// Vehicle 是 vehicles 表的 GORM 模型。
// 不变量：AssignedTo 非空 当且仅当 Status == assigned；
// 两个字段只允许 Synchronizer 写入，业务侧不得直接改。
type Vehicle struct {
	ID          string    `gorm:"primaryKey;size:36"`
	PlateNumber string    `gorm:"uniqueIndex;size:20;not null"`
	Model       string    `gorm:"size:100;not null"`
	Year        int       `gorm:"not null"`
	Status      Status    `gorm:"type:varchar(16);index;not null"`
	AssignedTo  *string   `gorm:"index;size:36"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	// 司机联系信息：由 assigned_to 关联 users 表得到，仅查询时填充，不落库。
	DriverName  string `gorm:"<-:false;-:migration"`
	DriverEmail string `gorm:"<-:false;-:migration"`
	DriverPhone string `gorm:"<-:false;-:migration"`
}

// NormalizePlate 车牌统一大写、去空白。
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

package block

import (
	"strings"
	"time"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

// Status 封禁状态枚举（持久化为字符串）。
type Status string

const (
	StatusActive    Status = "active"    // 生效中
	StatusCompleted Status = "completed" // 已结束，进入只读历史
)

// Block 是 blocks 表的 GORM 模型：一段对车辆生效的时间封禁（维保/行政原因）。
// 不变量：同一车辆的 active 封禁两两不重叠（半开区间，首尾相接不算重叠）；
// completed 封禁是历史，允许任意重叠。
type Block struct {
	ID        string    `gorm:"primaryKey;size:36"`
	VehicleID string    `gorm:"index;size:36;not null"`
	StartDate time.Time `gorm:"not null;index"`
	EndDate   time.Time `gorm:"not null;index"`
	Reason    string    `gorm:"size:500;not null"`
	Status    Status    `gorm:"type:varchar(16);index;not null"`
	BlockedBy *string   `gorm:"size:36"` // 操作者未知时为空
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// 展示字段：车辆与创建者信息，仅查询时填充，不落库。
	VehiclePlate  string `gorm:"<-:false;-:migration"`
	VehicleModel  string `gorm:"<-:false;-:migration"`
	BlockedByName string `gorm:"<-:false;-:migration"`
}

// Overlaps 半开区间 [StartDate, EndDate) 与 [start, end) 是否相交。
// 一条封禁恰好结束于另一条开始的时刻不算重叠。
func (b *Block) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && b.EndDate.After(start)
}

const minReasonLen = 10

// ValidateInterval 校验时间段与原因文本。reason 去除首尾空白后至少 10 个字符。
func ValidateInterval(start, end time.Time, reason string) error {
	if start.IsZero() || end.IsZero() {
		return fleeterr.Validationf("dates", "start and end dates are required")
	}
	if !end.After(start) {
		return fleeterr.Validationf("end_date", "End date must be after start date")
	}
	if len(strings.TrimSpace(reason)) < minReasonLen {
		return fleeterr.Validationf("reason", "Reason must be at least %d characters", minReasonLen)
	}
	return nil
}

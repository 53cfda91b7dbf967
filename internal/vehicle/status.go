package vehicle

import (
	"fmt"
	"time"
)

// allowTransition 定义车辆状态机的允许流转关系。
// 三个状态两两可达；价值在于拦截未知状态值，以及给 ApplyStatus 一个统一入口。
var allowTransition = map[Status][]Status{
	StatusAvailable: {StatusAssigned, StatusBlocked},
	StatusAssigned:  {StatusAvailable, StatusBlocked},
	StatusBlocked:   {StatusAvailable, StatusAssigned},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := allowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyStatus 对车辆应用状态变更，并同步维护 AssignedTo 不变量：
// - 流转到 assigned 必须携带 driverID
// - 流转到其他状态一律清空 AssignedTo
// 仅 Synchronizer 调用。
func ApplyStatus(v *Vehicle, to Status, driverID *string, now time.Time) error {
	if v == nil {
		return fmt.Errorf("vehicle is nil")
	}
	from := v.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid vehicle status transition: %s -> %s", from, to)
	}

	v.Status = to
	v.UpdatedAt = now

	if to == StatusAssigned {
		if driverID == nil || *driverID == "" {
			return fmt.Errorf("transition to assigned requires driver id")
		}
		v.AssignedTo = driverID
	} else {
		v.AssignedTo = nil
	}
	return nil
}

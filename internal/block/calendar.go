package block

import (
	"context"
	"fmt"
	"time"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
	"github.com/FleetLink/FleetLink/internal/store"
)

// Event 日历视图里的一条封禁。只读投影，无额外不变量。
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	VehicleID    string    `json:"vehicleId"`
	VehiclePlate string    `json:"vehiclePlate"`
	Reason       string    `json:"reason"`
	CreatedBy    string    `json:"createdBy"`
}

// Calendar 把 active 封禁投影到日期区间上，供排期页面渲染。
type Calendar struct {
	blocks   Store
	strategy store.Strategy
}

func NewCalendar(blocks Store, strategy store.Strategy) *Calendar {
	if strategy == nil {
		strategy = store.QueryStrategy{}
	}
	return &Calendar{blocks: blocks, strategy: strategy}
}

// BlocksBetween 返回与 [start, end]（闭区间）相交的全部 active 封禁。
func (c *Calendar) BlocksBetween(ctx context.Context, start, end time.Time) ([]Event, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fleeterr.Validationf("dates", "start and end dates are required")
	}
	if end.Before(start) {
		return nil, fleeterr.Validationf("end_date", "End date must be after start date")
	}

	var rows []Block
	err := c.strategy.Call(ctx, store.Op{
		Proc: store.ProcBlocksForRange,
		Args: []any{start, end},
		Dest: &rows,
		Fallback: func(ctx context.Context) error {
			bs, ferr := c.blocks.ActiveInRangeEnriched(ctx, start, end)
			if ferr != nil {
				return ferr
			}
			rows = bs
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(rows))
	for i := range rows {
		events = append(events, toEvent(&rows[i]))
	}
	return events, nil
}

func toEvent(b *Block) Event {
	title := b.Reason
	if b.VehiclePlate != "" {
		title = fmt.Sprintf("%s: %s", b.VehiclePlate, b.Reason)
	}
	return Event{
		ID:           b.ID,
		Title:        title,
		Start:        b.StartDate,
		End:          b.EndDate,
		VehicleID:    b.VehicleID,
		VehiclePlate: b.VehiclePlate,
		Reason:       b.Reason,
		CreatedBy:    b.BlockedByName,
	}
}

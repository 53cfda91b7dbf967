package block

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
	"github.com/FleetLink/FleetLink/internal/store"
	"github.com/FleetLink/FleetLink/internal/vehicle"
)

// fakeBlockStore 内存封禁存储，重叠判断走 Block.Overlaps。
type fakeBlockStore struct {
	blocks map[string]*Block
}

func newFakeBlockStore(bs ...*Block) *fakeBlockStore {
	m := make(map[string]*Block, len(bs))
	for _, b := range bs {
		m[b.ID] = b
	}
	return &fakeBlockStore{blocks: m}
}

func (f *fakeBlockStore) Create(_ context.Context, b *Block) error {
	f.blocks[b.ID] = b
	return nil
}

func (f *fakeBlockStore) Save(_ context.Context, b *Block) error {
	f.blocks[b.ID] = b
	return nil
}

func (f *fakeBlockStore) FindByID(_ context.Context, id string) (*Block, error) {
	b, ok := f.blocks[id]
	if !ok {
		return nil, fleeterr.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBlockStore) ListEnriched(_ context.Context) ([]Block, error) {
	out := make([]Block, 0, len(f.blocks))
	for _, b := range f.blocks {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBlockStore) ListForVehicleEnriched(_ context.Context, vehicleID string) ([]Block, error) {
	var out []Block
	for _, b := range f.blocks {
		if b.VehicleID == vehicleID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBlockStore) ActiveOverlapExists(_ context.Context, vehicleID string, start, end time.Time, excludeID string) (bool, error) {
	for _, b := range f.blocks {
		if b.VehicleID != vehicleID || b.Status != StatusActive || b.ID == excludeID {
			continue
		}
		if b.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBlockStore) ActiveHoldExists(_ context.Context, vehicleID string) (bool, error) {
	for _, b := range f.blocks {
		if b.VehicleID == vehicleID && b.Status == StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBlockStore) ActiveInRangeEnriched(_ context.Context, start, end time.Time) ([]Block, error) {
	var out []Block
	for _, b := range f.blocks {
		if b.Status == StatusActive && !b.StartDate.After(end) && !b.EndDate.Before(start) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type vehicleFinderFunc func(ctx context.Context, id string) (*vehicle.Vehicle, error)

func (f vehicleFinderFunc) FindByID(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	return f(ctx, id)
}

func knownVehicle(_ context.Context, id string) (*vehicle.Vehicle, error) {
	return &vehicle.Vehicle{ID: id, PlateNumber: "AB-123", Status: vehicle.StatusAvailable}, nil
}

// fakeSync 记录状态联动调用，可注入错误。
type fakeSync struct {
	blockedCalls   []string
	availableCalls []string
	priors         []vehicle.Status
	err            error
}

func (f *fakeSync) SetBlocked(_ context.Context, vehicleID string) error {
	f.blockedCalls = append(f.blockedCalls, vehicleID)
	return f.err
}

func (f *fakeSync) SetAvailable(_ context.Context, vehicleID string, expectedPrior vehicle.Status) error {
	f.availableCalls = append(f.availableCalls, vehicleID)
	f.priors = append(f.priors, expectedPrior)
	return f.err
}

const testReason = "scheduled maintenance window"

func TestCreateBlockHappyPath(t *testing.T) {
	st := newFakeBlockStore()
	sync := &fakeSync{}
	s := NewScheduler(st, vehicleFinderFunc(knownVehicle), sync, nil, nil)

	res, err := s.Create(context.Background(), CreateInput{
		VehicleID: "v1",
		StartDate: day(1),
		EndDate:   day(5),
		Reason:    testReason,
		ActorID:   "admin-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Warning != "" {
		t.Fatalf("unexpected warning: %s", res.Warning)
	}
	if res.Block.Status != StatusActive {
		t.Fatalf("expected active block, got %s", res.Block.Status)
	}
	if res.Block.BlockedBy == nil || *res.Block.BlockedBy != "admin-1" {
		t.Fatalf("expected blocked_by admin-1, got %v", res.Block.BlockedBy)
	}
	if len(sync.blockedCalls) != 1 || sync.blockedCalls[0] != "v1" {
		t.Fatalf("expected SetBlocked(v1), got %v", sync.blockedCalls)
	}
}

func TestCreateBlockOverlapConflict(t *testing.T) {
	existing := &Block{ID: "b1", VehicleID: "v1", StartDate: day(10), EndDate: day(20), Status: StatusActive}
	st := newFakeBlockStore(existing)
	s := NewScheduler(st, vehicleFinderFunc(knownVehicle), &fakeSync{}, nil, nil)
	ctx := context.Background()

	if _, err := s.Create(ctx, CreateInput{VehicleID: "v1", StartDate: day(15), EndDate: day(25), Reason: testReason}); !fleeterr.IsConflict(err, "overlap") {
		t.Fatalf("expected overlap conflict, got %v", err)
	}

	// 首尾相接不算重叠
	if _, err := s.Create(ctx, CreateInput{VehicleID: "v1", StartDate: day(20), EndDate: day(25), Reason: testReason}); err != nil {
		t.Fatalf("back-to-back block rejected: %v", err)
	}

	// completed 的历史封禁不参与重叠检查
	st2 := newFakeBlockStore(&Block{ID: "b2", VehicleID: "v1", StartDate: day(10), EndDate: day(20), Status: StatusCompleted})
	s2 := NewScheduler(st2, vehicleFinderFunc(knownVehicle), &fakeSync{}, nil, nil)
	if _, err := s2.Create(ctx, CreateInput{VehicleID: "v1", StartDate: day(12), EndDate: day(15), Reason: testReason}); err != nil {
		t.Fatalf("overlap with completed block rejected: %v", err)
	}
}

func TestCreateBlockSurvivesStatusSyncFailure(t *testing.T) {
	st := newFakeBlockStore()
	sync := &fakeSync{err: errors.New("vehicle table unavailable")}
	s := NewScheduler(st, vehicleFinderFunc(knownVehicle), sync, nil, nil)

	res, err := s.Create(context.Background(), CreateInput{
		VehicleID: "v1", StartDate: day(1), EndDate: day(5), Reason: testReason,
	})
	if err != nil {
		t.Fatalf("expected block creation to succeed despite sync failure, got %v", err)
	}
	if res.Warning == "" {
		t.Fatalf("expected warning about failed status update")
	}
	if _, ok := st.blocks[res.Block.ID]; !ok {
		t.Fatalf("expected block persisted")
	}
}

func TestUpdateBlockRules(t *testing.T) {
	active := &Block{ID: "b1", VehicleID: "v1", StartDate: day(1), EndDate: day(5), Status: StatusActive, Reason: testReason}
	other := &Block{ID: "b2", VehicleID: "v1", StartDate: day(10), EndDate: day(20), Status: StatusActive, Reason: testReason}
	done := &Block{ID: "b3", VehicleID: "v1", StartDate: day(30), EndDate: day(40), Status: StatusCompleted, Reason: testReason}
	st := newFakeBlockStore(active, other, done)
	s := NewScheduler(st, vehicleFinderFunc(knownVehicle), &fakeSync{}, nil, nil)
	ctx := context.Background()

	// 重叠检查排除自身：原地扩展到 day(8) 合法
	b, err := s.Update(ctx, "b1", day(1), day(8), testReason)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !b.EndDate.Equal(day(8)) {
		t.Fatalf("expected end date day(8), got %v", b.EndDate)
	}

	// 与另一条 active 封禁相交
	if _, err := s.Update(ctx, "b1", day(1), day(15), testReason); !fleeterr.IsConflict(err, "overlap") {
		t.Fatalf("expected overlap conflict, got %v", err)
	}

	// 已完成的封禁只读
	if _, err := s.Update(ctx, "b3", day(30), day(41), testReason); !fleeterr.IsConflict(err, "already_completed") {
		t.Fatalf("expected already_completed conflict, got %v", err)
	}
}

func TestCompleteBlockLifecycle(t *testing.T) {
	start := time.Now().Add(-48 * time.Hour)
	end := time.Now().Add(72 * time.Hour)
	b := &Block{ID: "b1", VehicleID: "v1", StartDate: start, EndDate: end, Status: StatusActive, Reason: testReason}
	st := newFakeBlockStore(b)
	sync := &fakeSync{}
	s := NewScheduler(st, vehicleFinderFunc(knownVehicle), sync, nil, nil)
	ctx := context.Background()

	res, err := s.Complete(ctx, "b1")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Block.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", res.Block.Status)
	}
	// 提前结束时把 end_date 截断到当前时刻
	if res.Block.EndDate.After(time.Now().Add(time.Minute)) {
		t.Fatalf("expected end date truncated to now, got %v", res.Block.EndDate)
	}
	if len(sync.availableCalls) != 1 || sync.priors[0] != vehicle.StatusBlocked {
		t.Fatalf("expected SetAvailable with prior blocked, got %v %v", sync.availableCalls, sync.priors)
	}

	// 二次 Complete 是冲突，不做幂等静默
	if _, err := s.Complete(ctx, "b1"); !fleeterr.IsConflict(err, "already_completed") {
		t.Fatalf("expected already_completed conflict, got %v", err)
	}
}

func TestCompleteBlockSurvivesStatusSyncFailure(t *testing.T) {
	b := &Block{ID: "b1", VehicleID: "v1", StartDate: day(1), EndDate: day(5), Status: StatusActive, Reason: testReason}
	st := newFakeBlockStore(b)
	sync := &fakeSync{err: errors.New("vehicle table unavailable")}
	s := NewScheduler(st, vehicleFinderFunc(knownVehicle), sync, nil, nil)

	res, err := s.Complete(context.Background(), "b1")
	if err != nil {
		t.Fatalf("expected completion to succeed despite sync failure, got %v", err)
	}
	if !strings.Contains(res.Warning, "reconciliation") {
		t.Fatalf("expected reconciliation warning, got %q", res.Warning)
	}
	if st.blocks["b1"].Status != StatusCompleted {
		t.Fatalf("expected block persisted as completed")
	}
}

// recordingStrategy 记录经过策略分发的过程名，再走 fallback。
type recordingStrategy struct {
	procs []string
}

func (r *recordingStrategy) Name() string { return "recording" }

func (r *recordingStrategy) Call(ctx context.Context, op store.Op) error {
	r.procs = append(r.procs, op.Proc)
	return op.Fallback(ctx)
}

func TestListForVehicleRoutesThroughStrategy(t *testing.T) {
	b := &Block{
		ID: "b-1", VehicleID: "v-1",
		StartDate: day(1), EndDate: day(5),
		Reason: testReason, Status: StatusActive,
	}
	st := newFakeBlockStore(b)
	rec := &recordingStrategy{}
	s := NewScheduler(st, vehicleFinderFunc(knownVehicle), &fakeSync{}, rec, nil)
	ctx := context.Background()

	got, err := s.ListForVehicle(ctx, "v-1")
	if err != nil {
		t.Fatalf("ListForVehicle: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b-1" {
		t.Fatalf("unexpected blocks: %+v", got)
	}
	if len(rec.procs) != 1 || rec.procs[0] != store.ProcBlocksForVehicle {
		t.Fatalf("expected dispatch via %s, got %v", store.ProcBlocksForVehicle, rec.procs)
	}

	// 入参校验先于分发
	if _, err := s.ListForVehicle(ctx, "  "); !fleeterr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(rec.procs) != 1 {
		t.Fatalf("invalid input must not reach the strategy")
	}
}

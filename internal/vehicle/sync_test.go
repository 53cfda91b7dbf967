package vehicle

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

// fakeStore 内存车辆存储，可对单列写入注入错误。
type fakeStore struct {
	vehicles map[string]*Vehicle

	statusErr   error
	assigneeErr error

	statusWrites   int
	assigneeWrites int
}

func newFakeStore(vs ...*Vehicle) *fakeStore {
	m := make(map[string]*Vehicle, len(vs))
	for _, v := range vs {
		m[v.ID] = v
	}
	return &fakeStore{vehicles: m}
}

func (f *fakeStore) Create(_ context.Context, v *Vehicle) error {
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeStore) UpdateDetails(_ context.Context, id, plate, model string, year int) error {
	v, ok := f.vehicles[id]
	if !ok {
		return fleeterr.ErrNotFound
	}
	v.PlateNumber, v.Model, v.Year = plate, model, year
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.vehicles[id]; !ok {
		return fleeterr.ErrNotFound
	}
	delete(f.vehicles, id)
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, fleeterr.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeStore) FindByPlate(_ context.Context, plate string) (*Vehicle, error) {
	for _, v := range f.vehicles {
		if v.PlateNumber == plate {
			cp := *v
			return &cp, nil
		}
	}
	return nil, fleeterr.ErrNotFound
}

func (f *fakeStore) GetEnriched(ctx context.Context, id string) (*Vehicle, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeStore) ListEnriched(_ context.Context) ([]Vehicle, error) {
	out := make([]Vehicle, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		out = append(out, *v)
	}
	// 与真实仓储一致：按车牌排序
	sort.Slice(out, func(i, j int) bool { return out[i].PlateNumber < out[j].PlateNumber })
	return out, nil
}

func (f *fakeStore) SearchEnriched(ctx context.Context, _ string) ([]Vehicle, error) {
	return f.ListEnriched(ctx)
}

func (f *fakeStore) SetStatusField(_ context.Context, id string, st Status) error {
	f.statusWrites++
	if f.statusErr != nil {
		return f.statusErr
	}
	v, ok := f.vehicles[id]
	if !ok {
		return fleeterr.ErrNotFound
	}
	v.Status = st
	return nil
}

func (f *fakeStore) SetAssignee(_ context.Context, id string, driverID *string) error {
	f.assigneeWrites++
	if f.assigneeErr != nil {
		return f.assigneeErr
	}
	v, ok := f.vehicles[id]
	if !ok {
		return fleeterr.ErrNotFound
	}
	v.AssignedTo = driverID
	return nil
}

type holdsFunc func(ctx context.Context, vehicleID string) (bool, error)

func (f holdsFunc) ActiveHoldExists(ctx context.Context, vehicleID string) (bool, error) {
	return f(ctx, vehicleID)
}

type driversFunc func(ctx context.Context, id string) (bool, error)

func (f driversFunc) IsEligibleDriver(ctx context.Context, id string) (bool, error) {
	return f(ctx, id)
}

func noHolds(context.Context, string) (bool, error)  { return false, nil }
func allHolds(context.Context, string) (bool, error) { return true, nil }

func strPtr(s string) *string { return &s }

func TestSetBlockedClearsAssignee(t *testing.T) {
	st := newFakeStore(&Vehicle{ID: "v1", Status: StatusAssigned, AssignedTo: strPtr("d1")})
	s := NewSynchronizer(st, holdsFunc(allHolds), nil, nil)

	if err := s.SetBlocked(context.Background(), "v1"); err != nil {
		t.Fatalf("SetBlocked: %v", err)
	}
	v := st.vehicles["v1"]
	if v.Status != StatusBlocked {
		t.Fatalf("expected blocked, got %s", v.Status)
	}
	if v.AssignedTo != nil {
		t.Fatalf("expected assigned_to cleared, got %v", *v.AssignedTo)
	}
}

func TestSetAvailableSkipsOnPriorMismatch(t *testing.T) {
	// 封禁结束时车辆已被改成 assigned；带 expectedPrior=blocked 的写入应跳过
	st := newFakeStore(&Vehicle{ID: "v1", Status: StatusAssigned, AssignedTo: strPtr("d1")})
	s := NewSynchronizer(st, holdsFunc(noHolds), nil, nil)

	if err := s.SetAvailable(context.Background(), "v1", StatusBlocked); err != nil {
		t.Fatalf("SetAvailable: %v", err)
	}
	if got := st.vehicles["v1"].Status; got != StatusAssigned {
		t.Fatalf("expected status untouched (assigned), got %s", got)
	}
	if st.statusWrites != 0 {
		t.Fatalf("expected no status writes, got %d", st.statusWrites)
	}
}

func TestSetAvailableSkipsWhenAnotherHoldActive(t *testing.T) {
	st := newFakeStore(&Vehicle{ID: "v1", Status: StatusBlocked})
	s := NewSynchronizer(st, holdsFunc(allHolds), nil, nil)

	if err := s.SetAvailable(context.Background(), "v1", StatusBlocked); err != nil {
		t.Fatalf("SetAvailable: %v", err)
	}
	if got := st.vehicles["v1"].Status; got != StatusBlocked {
		t.Fatalf("expected vehicle to stay blocked, got %s", got)
	}
}

func TestSetAssignedChecksDriverAndHolds(t *testing.T) {
	st := newFakeStore(&Vehicle{ID: "v1", PlateNumber: "AB-123", Status: StatusAvailable})
	eligible := driversFunc(func(_ context.Context, id string) (bool, error) {
		return id == "d1", nil
	})

	s := NewSynchronizer(st, holdsFunc(noHolds), eligible, nil)
	if err := s.SetAssigned(context.Background(), "v1", "nobody"); !fleeterr.IsValidation(err) {
		t.Fatalf("expected validation error for non-driver, got %v", err)
	}
	if err := s.SetAssigned(context.Background(), "v1", "d1"); err != nil {
		t.Fatalf("SetAssigned: %v", err)
	}
	if v := st.vehicles["v1"]; v.Status != StatusAssigned || v.AssignedTo == nil || *v.AssignedTo != "d1" {
		t.Fatalf("unexpected vehicle state: %+v", v)
	}

	// 有生效封禁的车不可指派
	blocked := newFakeStore(&Vehicle{ID: "v2", PlateNumber: "CD-456", Status: StatusBlocked})
	s2 := NewSynchronizer(blocked, holdsFunc(allHolds), eligible, nil)
	if err := s2.SetAssigned(context.Background(), "v2", "d1"); !fleeterr.IsConflict(err, "vehicle_in_use") {
		t.Fatalf("expected vehicle_in_use conflict, got %v", err)
	}
}

func TestReconcileMatrix(t *testing.T) {
	cases := []struct {
		name       string
		status     Status
		assignedTo *string
		held       bool
		wantStatus Status
		wantDriver *string
	}{
		{"hold wins over assignment", StatusAssigned, strPtr("d1"), true, StatusBlocked, nil},
		{"stale available with assignee", StatusAvailable, strPtr("d1"), false, StatusAssigned, strPtr("d1")},
		{"stale blocked without hold", StatusBlocked, nil, false, StatusAvailable, nil},
		{"consistent state untouched", StatusAvailable, nil, false, StatusAvailable, nil},
	}

	for _, c := range cases {
		st := newFakeStore(&Vehicle{ID: "v1", Status: c.status, AssignedTo: c.assignedTo})
		held := c.held
		s := NewSynchronizer(st, holdsFunc(func(context.Context, string) (bool, error) {
			return held, nil
		}), nil, nil)

		got, err := s.Reconcile(context.Background(), "v1")
		if err != nil {
			t.Fatalf("%s: Reconcile: %v", c.name, err)
		}
		if got.Status != c.wantStatus {
			t.Fatalf("%s: expected status %s, got %s", c.name, c.wantStatus, got.Status)
		}
		if !sameAssignee(got.AssignedTo, c.wantDriver) {
			t.Fatalf("%s: unexpected assignee %v", c.name, got.AssignedTo)
		}
	}
}

func TestWriteBothContinuesAfterStatusFailure(t *testing.T) {
	boom := errors.New("column write failed")
	st := newFakeStore(&Vehicle{ID: "v1", Status: StatusAssigned, AssignedTo: strPtr("d1")})
	st.statusErr = boom

	s := NewSynchronizer(st, holdsFunc(allHolds), nil, nil)
	err := s.SetBlocked(context.Background(), "v1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected first write error returned, got %v", err)
	}
	// status 写失败也要继续写 assigned_to
	if st.assigneeWrites != 1 {
		t.Fatalf("expected assignee write attempted, got %d", st.assigneeWrites)
	}
	if st.vehicles["v1"].AssignedTo != nil {
		t.Fatalf("expected assignee cleared despite status failure")
	}
}

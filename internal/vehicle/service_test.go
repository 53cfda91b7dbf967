package vehicle

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

func newTestDirectory(st *fakeStore, holds HoldChecker, drivers DriverFinder) *Directory {
	sync := NewSynchronizer(st, holds, drivers, nil)
	return NewDirectory(st, holds, sync, nil, nil)
}

func TestCreateVehicleValidation(t *testing.T) {
	d := newTestDirectory(newFakeStore(), holdsFunc(noHolds), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"short plate", CreateInput{PlateNumber: "A", Model: "Transit", Year: 2020}},
		{"short model", CreateInput{PlateNumber: "AB-123", Model: "T", Year: 2020}},
		{"year too old", CreateInput{PlateNumber: "AB-123", Model: "Transit", Year: 1899}},
		{"year in future", CreateInput{PlateNumber: "AB-123", Model: "Transit", Year: time.Now().Year() + 2}},
	}
	for _, c := range cases {
		if _, err := d.Create(ctx, c.in); !fleeterr.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", c.name, err)
		}
	}
}

func TestCreateVehicleNormalizesAndDetectsDuplicate(t *testing.T) {
	st := newFakeStore()
	d := newTestDirectory(st, holdsFunc(noHolds), nil)
	ctx := context.Background()

	v, err := d.Create(ctx, CreateInput{PlateNumber: "  ab-123 ", Model: "Transit", Year: 2021})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.PlateNumber != "AB-123" {
		t.Fatalf("expected normalized plate AB-123, got %s", v.PlateNumber)
	}
	if v.Status != StatusAvailable || v.AssignedTo != nil {
		t.Fatalf("expected new vehicle available and unassigned, got %+v", v)
	}

	// 大小写不同的同一车牌也是重复
	if _, err := d.Create(ctx, CreateInput{PlateNumber: "AB-123", Model: "Sprinter", Year: 2022}); !fleeterr.IsConflict(err, "duplicate_plate") {
		t.Fatalf("expected duplicate_plate conflict, got %v", err)
	}
}

func TestUpdateVehicleRoutesStatusThroughSynchronizer(t *testing.T) {
	st := newFakeStore(&Vehicle{ID: "v1", PlateNumber: "AB-123", Model: "Transit", Year: 2021, Status: StatusAvailable})
	eligible := driversFunc(func(_ context.Context, id string) (bool, error) { return id == "d1", nil })
	d := newTestDirectory(st, holdsFunc(noHolds), eligible)
	ctx := context.Background()

	status := StatusAssigned
	v, err := d.Update(ctx, "v1", UpdateInput{Status: &status, DriverID: strPtr("d1")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if v.Status != StatusAssigned || v.AssignedTo == nil || *v.AssignedTo != "d1" {
		t.Fatalf("unexpected vehicle state after update: %+v", v)
	}

	// 变为 assigned 但缺 driver_id
	st2 := newFakeStore(&Vehicle{ID: "v2", PlateNumber: "CD-456", Model: "Transit", Year: 2021, Status: StatusAvailable})
	d2 := newTestDirectory(st2, holdsFunc(noHolds), eligible)
	if _, err := d2.Update(ctx, "v2", UpdateInput{Status: &status}); !fleeterr.IsValidation(err) {
		t.Fatalf("expected validation error without driver id, got %v", err)
	}
}

func TestUpdateVehicleDetectsPlateConflict(t *testing.T) {
	st := newFakeStore(
		&Vehicle{ID: "v1", PlateNumber: "AB-123", Model: "Transit", Year: 2021, Status: StatusAvailable},
		&Vehicle{ID: "v2", PlateNumber: "CD-456", Model: "Sprinter", Year: 2022, Status: StatusAvailable},
	)
	d := newTestDirectory(st, holdsFunc(noHolds), nil)

	if _, err := d.Update(context.Background(), "v1", UpdateInput{PlateNumber: strPtr("cd-456")}); !fleeterr.IsConflict(err, "duplicate_plate") {
		t.Fatalf("expected duplicate_plate conflict, got %v", err)
	}
}

func TestDeleteVehicleGuards(t *testing.T) {
	ctx := context.Background()

	assigned := newFakeStore(&Vehicle{ID: "v1", PlateNumber: "AB-123", Status: StatusAssigned, AssignedTo: strPtr("d1")})
	d := newTestDirectory(assigned, holdsFunc(noHolds), nil)
	if err := d.Delete(ctx, "v1"); !fleeterr.IsConflict(err, "vehicle_in_use") {
		t.Fatalf("expected vehicle_in_use for assigned vehicle, got %v", err)
	}

	// 状态是 available 但还有生效封禁（数据漂移）同样拒绝
	drifted := newFakeStore(&Vehicle{ID: "v2", PlateNumber: "CD-456", Status: StatusAvailable})
	d2 := newTestDirectory(drifted, holdsFunc(allHolds), nil)
	if err := d2.Delete(ctx, "v2"); !fleeterr.IsConflict(err, "vehicle_in_use") {
		t.Fatalf("expected vehicle_in_use for held vehicle, got %v", err)
	}

	free := newFakeStore(&Vehicle{ID: "v3", PlateNumber: "EF-789", Status: StatusAvailable})
	d3 := newTestDirectory(free, holdsFunc(noHolds), nil)
	if err := d3.Delete(ctx, "v3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := free.FindByID(ctx, "v3"); !fleeterr.IsNotFound(err) {
		t.Fatalf("expected vehicle gone, got %v", err)
	}
}

func TestGetVehicleRequiresID(t *testing.T) {
	d := newTestDirectory(newFakeStore(), holdsFunc(noHolds), nil)
	if _, err := d.Get(context.Background(), "  "); !fleeterr.IsValidation(err) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}
}

func TestCreateVehicleCountsCharactersNotBytes(t *testing.T) {
	d := newTestDirectory(newFakeStore(), holdsFunc(noHolds), nil)
	ctx := context.Background()

	// 多字节车牌/型号按字符数校验：字节数早已超限，字符数没有
	plate := "京A-12345"                       // 8 字符
	model := strings.Repeat("厢式货车", 10)      // 40 字符，120 字节
	v, err := d.Create(ctx, CreateInput{PlateNumber: plate, Model: model, Year: 2021})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.Model != model {
		t.Fatalf("model mismatch: %s", v.Model)
	}

	// 超过 20 个字符的车牌仍然被拒
	long := strings.Repeat("京", 21)
	if _, err := d.Create(ctx, CreateInput{PlateNumber: long, Model: "Transit", Year: 2021}); !fleeterr.IsValidation(err) {
		t.Fatalf("expected validation error for 21-character plate, got %v", err)
	}
}

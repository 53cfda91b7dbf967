package fleet

import (
	"io"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
	"github.com/FleetLink/FleetLink/internal/vehicle"
)

func TestToStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"not found", fleeterr.ErrNotFound, codes.NotFound},
		{"validation", fleeterr.Validationf("plate", "too short"), codes.InvalidArgument},
		{"duplicate plate", fleeterr.Conflictf("duplicate_plate", "plate in use"), codes.AlreadyExists},
		{"overlap", fleeterr.Conflictf("overlap", "blocks overlap"), codes.FailedPrecondition},
		{"transient", fleeterr.Transient("list", io.EOF), codes.Unavailable},
		{"unknown", io.EOF, codes.Internal},
	}

	for _, tc := range cases {
		st, ok := status.FromError(toStatus(tc.err))
		if !ok {
			t.Fatalf("%s: expected grpc status", tc.name)
		}
		if st.Code() != tc.want {
			t.Fatalf("%s: code = %s, want %s", tc.name, st.Code(), tc.want)
		}
	}

	if toStatus(nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

func TestFromUnix(t *testing.T) {
	if !fromUnix(0).IsZero() {
		t.Fatalf("zero seconds should map to zero time")
	}
	sec := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Unix()
	if got := fromUnix(sec).Unix(); got != sec {
		t.Fatalf("round trip mismatch: %d != %d", got, sec)
	}
}

func TestToAPIVehicleHandlesNilAssignee(t *testing.T) {
	driver := "u-9"
	v := &vehicle.Vehicle{
		ID:          "v-1",
		PlateNumber: "AB-123",
		Model:       "Transit",
		Year:        2022,
		Status:      vehicle.StatusAssigned,
		AssignedTo:  &driver,
	}

	got := toAPIVehicle(v)
	if got.AssignedTo != "u-9" {
		t.Fatalf("assigned_to = %q", got.AssignedTo)
	}

	v.AssignedTo = nil
	v.Status = vehicle.StatusAvailable
	if got := toAPIVehicle(v); got.AssignedTo != "" {
		t.Fatalf("nil assignee should render empty, got %q", got.AssignedTo)
	}

	if toAPIVehicle(nil) != nil {
		t.Fatalf("nil vehicle should map to nil")
	}
}

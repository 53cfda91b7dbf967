package block

import (
	"context"
	"testing"
	"time"

	"github.com/FleetLink/FleetLink/internal/fleeterr"
)

func TestBlocksBetweenProjectsEvents(t *testing.T) {
	inRange := &Block{
		ID: "b1", VehicleID: "v1",
		StartDate: day(10), EndDate: day(12),
		Reason: "brake inspection due", Status: StatusActive,
		VehiclePlate: "AB-123", BlockedByName: "Dispatcher",
	}
	outOfRange := &Block{
		ID: "b2", VehicleID: "v2",
		StartDate: day(40), EndDate: day(45),
		Reason: "annual service visit", Status: StatusActive,
	}
	completed := &Block{
		ID: "b3", VehicleID: "v3",
		StartDate: day(10), EndDate: day(12),
		Reason: "finished maintenance", Status: StatusCompleted,
	}

	c := NewCalendar(newFakeBlockStore(inRange, outOfRange, completed), nil)
	events, err := c.BlocksBetween(context.Background(), day(8), day(15))
	if err != nil {
		t.Fatalf("BlocksBetween: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	e := events[0]
	if e.ID != "b1" || e.VehicleID != "v1" {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.Title != "AB-123: brake inspection due" {
		t.Fatalf("unexpected title: %q", e.Title)
	}
	if e.CreatedBy != "Dispatcher" {
		t.Fatalf("unexpected created_by: %q", e.CreatedBy)
	}
	if !e.Start.Equal(day(10)) || !e.End.Equal(day(12)) {
		t.Fatalf("unexpected interval: %v - %v", e.Start, e.End)
	}
}

func TestBlocksBetweenTitleWithoutPlate(t *testing.T) {
	b := &Block{ID: "b1", VehicleID: "v1", StartDate: day(1), EndDate: day(2), Reason: "waiting for spare parts", Status: StatusActive}
	c := NewCalendar(newFakeBlockStore(b), nil)

	events, err := c.BlocksBetween(context.Background(), day(0), day(5))
	if err != nil {
		t.Fatalf("BlocksBetween: %v", err)
	}
	if events[0].Title != "waiting for spare parts" {
		t.Fatalf("expected bare reason title, got %q", events[0].Title)
	}
}

func TestBlocksBetweenValidation(t *testing.T) {
	c := NewCalendar(newFakeBlockStore(), nil)
	ctx := context.Background()

	if _, err := c.BlocksBetween(ctx, time.Time{}, day(1)); !fleeterr.IsValidation(err) {
		t.Fatalf("expected validation error for zero start, got %v", err)
	}
	if _, err := c.BlocksBetween(ctx, day(5), day(1)); !fleeterr.IsValidation(err) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}

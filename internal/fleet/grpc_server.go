package fleet

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/FleetLink/FleetLink/internal/api/fleetv1"
	"github.com/FleetLink/FleetLink/internal/block"
	commonserver "github.com/FleetLink/FleetLink/internal/common/server"
	"github.com/FleetLink/FleetLink/internal/fleeterr"
	"github.com/FleetLink/FleetLink/internal/vehicle"
)

// GRPCServer 把车辆目录 / 封禁排期 / 日历投影挂到 FleetService 上。
// 操作者身份从鉴权上下文取出后以显式参数传入业务层，不走任何进程级全局状态。
type GRPCServer struct {
	fleetv1.UnimplementedFleetServiceServer

	directory *vehicle.Directory
	scheduler *block.Scheduler
	calendar  *block.Calendar
}

func NewGRPCServer(directory *vehicle.Directory, scheduler *block.Scheduler, calendar *block.Calendar) *GRPCServer {
	return &GRPCServer{directory: directory, scheduler: scheduler, calendar: calendar}
}

func (s *GRPCServer) ListVehicles(ctx context.Context, _ *fleetv1.ListVehiclesRequest) (*fleetv1.ListVehiclesResponse, error) {
	vs, err := s.directory.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.ListVehiclesResponse{Vehicles: toAPIVehicles(vs)}, nil
}

func (s *GRPCServer) GetVehicle(ctx context.Context, req *fleetv1.GetVehicleRequest) (*fleetv1.GetVehicleResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is nil")
	}
	v, err := s.directory.Get(ctx, req.Id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.GetVehicleResponse{Vehicle: toAPIVehicle(v)}, nil
}

func (s *GRPCServer) SearchVehicles(ctx context.Context, req *fleetv1.SearchVehiclesRequest) (*fleetv1.SearchVehiclesResponse, error) {
	text := ""
	if req != nil {
		text = req.Text
	}
	vs, err := s.directory.Search(ctx, text)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.SearchVehiclesResponse{Vehicles: toAPIVehicles(vs)}, nil
}

func (s *GRPCServer) CreateVehicle(ctx context.Context, req *fleetv1.CreateVehicleRequest) (*fleetv1.CreateVehicleResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is nil")
	}
	v, err := s.directory.Create(ctx, vehicle.CreateInput{
		PlateNumber: req.PlateNumber,
		Model:       req.Model,
		Year:        req.Year,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.CreateVehicleResponse{Vehicle: toAPIVehicle(v)}, nil
}

func (s *GRPCServer) UpdateVehicle(ctx context.Context, req *fleetv1.UpdateVehicleRequest) (*fleetv1.UpdateVehicleResponse, error) {
	if req == nil || strings.TrimSpace(req.Id) == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	in := vehicle.UpdateInput{
		PlateNumber: req.PlateNumber,
		Model:       req.Model,
		Year:        req.Year,
		DriverID:    req.DriverId,
	}
	if req.Status != nil {
		st := vehicle.Status(*req.Status)
		in.Status = &st
	}
	v, err := s.directory.Update(ctx, req.Id, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.UpdateVehicleResponse{Vehicle: toAPIVehicle(v)}, nil
}

func (s *GRPCServer) DeleteVehicle(ctx context.Context, req *fleetv1.DeleteVehicleRequest) (*fleetv1.DeleteVehicleResponse, error) {
	if req == nil || strings.TrimSpace(req.Id) == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if err := s.directory.Delete(ctx, req.Id); err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.DeleteVehicleResponse{}, nil
}

func (s *GRPCServer) AssignVehicle(ctx context.Context, req *fleetv1.AssignVehicleRequest) (*fleetv1.AssignVehicleResponse, error) {
	if req == nil || strings.TrimSpace(req.VehicleId) == "" {
		return nil, status.Error(codes.InvalidArgument, "vehicle_id required")
	}
	v, err := s.directory.Assign(ctx, req.VehicleId, req.DriverId)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.AssignVehicleResponse{Vehicle: toAPIVehicle(v)}, nil
}

func (s *GRPCServer) UnassignVehicle(ctx context.Context, req *fleetv1.UnassignVehicleRequest) (*fleetv1.UnassignVehicleResponse, error) {
	if req == nil || strings.TrimSpace(req.VehicleId) == "" {
		return nil, status.Error(codes.InvalidArgument, "vehicle_id required")
	}
	v, err := s.directory.Unassign(ctx, req.VehicleId)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.UnassignVehicleResponse{Vehicle: toAPIVehicle(v)}, nil
}

func (s *GRPCServer) ReconcileVehicle(ctx context.Context, req *fleetv1.ReconcileVehicleRequest) (*fleetv1.ReconcileVehicleResponse, error) {
	if req == nil || strings.TrimSpace(req.VehicleId) == "" {
		return nil, status.Error(codes.InvalidArgument, "vehicle_id required")
	}
	v, err := s.directory.Reconcile(ctx, req.VehicleId)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.ReconcileVehicleResponse{Vehicle: toAPIVehicle(v)}, nil
}

func (s *GRPCServer) ListBlocks(ctx context.Context, _ *fleetv1.ListBlocksRequest) (*fleetv1.ListBlocksResponse, error) {
	bs, err := s.scheduler.ListAll(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.ListBlocksResponse{Blocks: toAPIBlocks(bs)}, nil
}

func (s *GRPCServer) ListVehicleBlocks(ctx context.Context, req *fleetv1.ListVehicleBlocksRequest) (*fleetv1.ListVehicleBlocksResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is nil")
	}
	bs, err := s.scheduler.ListForVehicle(ctx, req.VehicleId)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.ListVehicleBlocksResponse{Blocks: toAPIBlocks(bs)}, nil
}

func (s *GRPCServer) CreateBlock(ctx context.Context, req *fleetv1.CreateBlockRequest) (*fleetv1.CreateBlockResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is nil")
	}
	res, err := s.scheduler.Create(ctx, block.CreateInput{
		VehicleID: req.VehicleId,
		StartDate: fromUnix(req.StartDate),
		EndDate:   fromUnix(req.EndDate),
		Reason:    req.Reason,
		ActorID:   actorID(ctx),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.CreateBlockResponse{Block: toAPIBlock(res.Block), Warning: res.Warning}, nil
}

func (s *GRPCServer) UpdateBlock(ctx context.Context, req *fleetv1.UpdateBlockRequest) (*fleetv1.UpdateBlockResponse, error) {
	if req == nil || strings.TrimSpace(req.Id) == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	b, err := s.scheduler.Update(ctx, req.Id, fromUnix(req.StartDate), fromUnix(req.EndDate), req.Reason)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.UpdateBlockResponse{Block: toAPIBlock(b)}, nil
}

func (s *GRPCServer) CompleteBlock(ctx context.Context, req *fleetv1.CompleteBlockRequest) (*fleetv1.CompleteBlockResponse, error) {
	if req == nil || strings.TrimSpace(req.Id) == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	res, err := s.scheduler.Complete(ctx, req.Id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &fleetv1.CompleteBlockResponse{Block: toAPIBlock(res.Block), Warning: res.Warning}, nil
}

func (s *GRPCServer) CalendarBlocks(ctx context.Context, req *fleetv1.CalendarBlocksRequest) (*fleetv1.CalendarBlocksResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is nil")
	}
	events, err := s.calendar.BlocksBetween(ctx, fromUnix(req.StartDate), fromUnix(req.EndDate))
	if err != nil {
		return nil, toStatus(err)
	}
	out := make([]*fleetv1.CalendarEvent, 0, len(events))
	for i := range events {
		e := events[i]
		out = append(out, &fleetv1.CalendarEvent{
			Id:           e.ID,
			Title:        e.Title,
			Start:        e.Start.Unix(),
			End:          e.End.Unix(),
			VehicleId:    e.VehicleID,
			VehiclePlate: e.VehiclePlate,
			Reason:       e.Reason,
			CreatedBy:    e.CreatedBy,
		})
	}
	return &fleetv1.CalendarBlocksResponse{Events: out}, nil
}

// actorID 从鉴权上下文取操作者；匿名调用返回空串（BlockedBy 落 NULL）。
func actorID(ctx context.Context) string {
	if ai, ok := commonserver.AuthFromContext(ctx); ok {
		return strings.TrimSpace(ai.Subject)
	}
	return ""
}

// toStatus 业务错误分类到 gRPC code 的统一映射。
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case fleeterr.IsNotFound(err):
		return status.Error(codes.NotFound, "not found")
	case fleeterr.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case fleeterr.IsConflict(err, "duplicate_plate"):
		return status.Error(codes.AlreadyExists, err.Error())
	case fleeterr.IsConflict(err, ""):
		return status.Error(codes.FailedPrecondition, err.Error())
	case fleeterr.IsTransient(err):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func fromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func toAPIVehicle(v *vehicle.Vehicle) *fleetv1.Vehicle {
	if v == nil {
		return nil
	}
	assigned := ""
	if v.AssignedTo != nil {
		assigned = *v.AssignedTo
	}
	return &fleetv1.Vehicle{
		Id:          v.ID,
		PlateNumber: v.PlateNumber,
		Model:       v.Model,
		Year:        v.Year,
		Status:      string(v.Status),
		AssignedTo:  assigned,
		DriverName:  v.DriverName,
		DriverEmail: v.DriverEmail,
		DriverPhone: v.DriverPhone,
		CreatedAt:   v.CreatedAt.Unix(),
		UpdatedAt:   v.UpdatedAt.Unix(),
	}
}

func toAPIVehicles(vs []vehicle.Vehicle) []*fleetv1.Vehicle {
	out := make([]*fleetv1.Vehicle, 0, len(vs))
	for i := range vs {
		out = append(out, toAPIVehicle(&vs[i]))
	}
	return out
}

func toAPIBlock(b *block.Block) *fleetv1.Block {
	if b == nil {
		return nil
	}
	blockedBy := ""
	if b.BlockedBy != nil {
		blockedBy = *b.BlockedBy
	}
	return &fleetv1.Block{
		Id:            b.ID,
		VehicleId:     b.VehicleID,
		StartDate:     b.StartDate.Unix(),
		EndDate:       b.EndDate.Unix(),
		Reason:        b.Reason,
		Status:        string(b.Status),
		BlockedBy:     blockedBy,
		VehiclePlate:  b.VehiclePlate,
		VehicleModel:  b.VehicleModel,
		BlockedByName: b.BlockedByName,
		CreatedAt:     b.CreatedAt.Unix(),
	}
}

func toAPIBlocks(bs []block.Block) []*fleetv1.Block {
	out := make([]*fleetv1.Block, 0, len(bs))
	for i := range bs {
		out = append(out, toAPIBlock(&bs[i]))
	}
	return out
}

// Package fleetv1 是 FleetService 的手工维护 gRPC 绑定。
//
// protoc 流水线尚未接入（见 api-gateway 的阶段规划），这里先用 JSON codec +
// 手写 ServiceDesc 提供与生成代码等价的服务端绑定；后续补齐 proto 后替换。
// 客户端需以 grpc.CallContentSubtype("json") 发起调用。
package fleetv1

// Vehicle 车辆（含司机联系信息）。时间戳为 Unix 秒。
type Vehicle struct {
	Id          string `json:"id"`
	PlateNumber string `json:"plate_number"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	DriverName  string `json:"driver_name,omitempty"`
	DriverEmail string `json:"driver_email,omitempty"`
	DriverPhone string `json:"driver_phone,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Block 封禁记录（含车辆与创建者展示信息）。时间戳为 Unix 秒。
type Block struct {
	Id            string `json:"id"`
	VehicleId     string `json:"vehicle_id"`
	StartDate     int64  `json:"start_date"`
	EndDate       int64  `json:"end_date"`
	Reason        string `json:"reason"`
	Status        string `json:"status"`
	BlockedBy     string `json:"blocked_by,omitempty"`
	VehiclePlate  string `json:"vehicle_plate,omitempty"`
	VehicleModel  string `json:"vehicle_model,omitempty"`
	BlockedByName string `json:"blocked_by_name,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

// CalendarEvent 日历投影里的一条封禁。
type CalendarEvent struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	Start        int64  `json:"start"`
	End          int64  `json:"end"`
	VehicleId    string `json:"vehicleId"`
	VehiclePlate string `json:"vehiclePlate"`
	Reason       string `json:"reason"`
	CreatedBy    string `json:"createdBy,omitempty"`
}

type ListVehiclesRequest struct{}

type ListVehiclesResponse struct {
	Vehicles []*Vehicle `json:"vehicles"`
}

type GetVehicleRequest struct {
	Id string `json:"id"`
}

type GetVehicleResponse struct {
	Vehicle *Vehicle `json:"vehicle"`
}

type SearchVehiclesRequest struct {
	Text string `json:"text"`
}

type SearchVehiclesResponse struct {
	Vehicles []*Vehicle `json:"vehicles"`
}

type CreateVehicleRequest struct {
	PlateNumber string `json:"plate_number"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
}

type CreateVehicleResponse struct {
	Vehicle *Vehicle `json:"vehicle"`
}

// UpdateVehicleRequest 的指针字段为 nil 表示不修改。
type UpdateVehicleRequest struct {
	Id          string  `json:"id"`
	PlateNumber *string `json:"plate_number,omitempty"`
	Model       *string `json:"model,omitempty"`
	Year        *int    `json:"year,omitempty"`
	Status      *string `json:"status,omitempty"`
	DriverId    *string `json:"driver_id,omitempty"`
}

type UpdateVehicleResponse struct {
	Vehicle *Vehicle `json:"vehicle"`
}

type DeleteVehicleRequest struct {
	Id string `json:"id"`
}

type DeleteVehicleResponse struct{}

type AssignVehicleRequest struct {
	VehicleId string `json:"vehicle_id"`
	DriverId  string `json:"driver_id"`
}

type AssignVehicleResponse struct {
	Vehicle *Vehicle `json:"vehicle"`
}

type UnassignVehicleRequest struct {
	VehicleId string `json:"vehicle_id"`
}

type UnassignVehicleResponse struct {
	Vehicle *Vehicle `json:"vehicle"`
}

type ReconcileVehicleRequest struct {
	VehicleId string `json:"vehicle_id"`
}

type ReconcileVehicleResponse struct {
	Vehicle *Vehicle `json:"vehicle"`
}

type ListBlocksRequest struct{}

type ListBlocksResponse struct {
	Blocks []*Block `json:"blocks"`
}

type ListVehicleBlocksRequest struct {
	VehicleId string `json:"vehicle_id"`
}

type ListVehicleBlocksResponse struct {
	Blocks []*Block `json:"blocks"`
}

type CreateBlockRequest struct {
	VehicleId string `json:"vehicle_id"`
	StartDate int64  `json:"start_date"`
	EndDate   int64  `json:"end_date"`
	Reason    string `json:"reason"`
}

// CreateBlockResponse.Warning 非空表示封禁已创建但车辆状态联动写入失败，
// 等待对账修复（部分成功语义，见 Scheduler.Create）。
type CreateBlockResponse struct {
	Block   *Block `json:"block"`
	Warning string `json:"warning,omitempty"`
}

type UpdateBlockRequest struct {
	Id        string `json:"id"`
	StartDate int64  `json:"start_date"`
	EndDate   int64  `json:"end_date"`
	Reason    string `json:"reason"`
}

type UpdateBlockResponse struct {
	Block *Block `json:"block"`
}

type CompleteBlockRequest struct {
	Id string `json:"id"`
}

type CompleteBlockResponse struct {
	Block   *Block `json:"block"`
	Warning string `json:"warning,omitempty"`
}

type CalendarBlocksRequest struct {
	StartDate int64 `json:"start_date"`
	EndDate   int64 `json:"end_date"`
}

type CalendarBlocksResponse struct {
	Events []*CalendarEvent `json:"events"`
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/FleetLink/FleetLink/internal/api/fleetv1"
	"github.com/FleetLink/FleetLink/internal/api/userv1"
	"github.com/FleetLink/FleetLink/internal/common/discovery"
	"github.com/FleetLink/FleetLink/internal/common/middleware"
	commonserver "github.com/FleetLink/FleetLink/internal/common/server"
)

// HTTP 入口：把 REST 风格的 JSON 请求转发到后端 gRPC 服务。
// 后端走 JSON codec（见 internal/common/server/codec.go），网关侧不需要
// 业务 proto，请求体按 json.RawMessage 原样透传，路径参数合并进请求体。

var (
	listenAddr = flag.String("listen", ":8080", "HTTP listen address")
	fleetAddr  = flag.String("fleet", "127.0.0.1:50051", "fleet-service gRPC address")
	userAddr   = flag.String("user", "127.0.0.1:50052", "user-service gRPC address")
	consulAddr = flag.String("consul", "", "Consul 地址（host:port）；设置后改用 consul:///<service> 做服务发现")
	rateCap    = flag.Int64("rate-capacity", 200, "令牌桶容量")
	rateRefill = flag.Int64("rate-refill", 100, "令牌桶每秒补充数")
)

type gateway struct {
	fleet *grpc.ClientConn
	user  *grpc.ClientConn
}

// invoke 透传一次 gRPC 调用。Authorization 头转成 metadata 供后端鉴权拦截器使用。
func (g *gateway) invoke(r *http.Request, conn *grpc.ClientConn, fullMethod string, req map[string]any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if h := r.Header.Get("Authorization"); h != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", h)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	err = conn.Invoke(ctx, fullMethod, json.RawMessage(body), &out,
		grpc.CallContentSubtype(commonserver.JSONCodecName))
	return out, err
}

func (g *gateway) call(w http.ResponseWriter, r *http.Request, conn *grpc.ClientConn, method string, req map[string]any) {
	out, err := g.invoke(r, conn, method, req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(out)
}

// readBody 请求体解析为通用 map；空体视为空对象。
func readBody(r *http.Request) (map[string]any, error) {
	out := map[string]any{}
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeError(w http.ResponseWriter, err error) {
	st, _ := status.FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(commonserver.HTTPStatusFromCode(st.Code()))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    st.Code().String(),
		"message": st.Message(),
	})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": "InvalidArgument", "message": msg})
}

func queryInt64(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return v
}

func fleetMethod(name string) string {
	return "/" + fleetv1.FleetService_ServiceName + "/" + name
}

func userMethod(name string) string {
	return "/" + userv1.UserService_ServiceName + "/" + name
}

// serveVehicles 处理 /api/v1/vehicles 与其子路径。
func (g *gateway) serveVehicles(w http.ResponseWriter, r *http.Request, rest string) {
	segs := splitPath(rest)
	switch {
	case len(segs) == 0 && r.Method == http.MethodGet:
		g.call(w, r, g.fleet, fleetMethod("ListVehicles"), map[string]any{})
	case len(segs) == 0 && r.Method == http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		g.call(w, r, g.fleet, fleetMethod("CreateVehicle"), body)
	case len(segs) == 1 && segs[0] == "search" && r.Method == http.MethodGet:
		g.call(w, r, g.fleet, fleetMethod("SearchVehicles"), map[string]any{
			"text": r.URL.Query().Get("text"),
		})
	case len(segs) == 1 && r.Method == http.MethodGet:
		g.call(w, r, g.fleet, fleetMethod("GetVehicle"), map[string]any{"id": segs[0]})
	case len(segs) == 1 && (r.Method == http.MethodPatch || r.Method == http.MethodPut):
		body, err := readBody(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		body["id"] = segs[0]
		g.call(w, r, g.fleet, fleetMethod("UpdateVehicle"), body)
	case len(segs) == 1 && r.Method == http.MethodDelete:
		g.call(w, r, g.fleet, fleetMethod("DeleteVehicle"), map[string]any{"id": segs[0]})
	case len(segs) == 2 && segs[1] == "blocks" && r.Method == http.MethodGet:
		g.call(w, r, g.fleet, fleetMethod("ListVehicleBlocks"), map[string]any{"vehicle_id": segs[0]})
	case len(segs) == 2 && segs[1] == "assign" && r.Method == http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		body["vehicle_id"] = segs[0]
		g.call(w, r, g.fleet, fleetMethod("AssignVehicle"), body)
	case len(segs) == 2 && segs[1] == "unassign" && r.Method == http.MethodPost:
		g.call(w, r, g.fleet, fleetMethod("UnassignVehicle"), map[string]any{"vehicle_id": segs[0]})
	case len(segs) == 2 && segs[1] == "reconcile" && r.Method == http.MethodPost:
		g.call(w, r, g.fleet, fleetMethod("ReconcileVehicle"), map[string]any{"vehicle_id": segs[0]})
	default:
		http.NotFound(w, r)
	}
}

// serveBlocks 处理 /api/v1/blocks 与其子路径。
func (g *gateway) serveBlocks(w http.ResponseWriter, r *http.Request, rest string) {
	segs := splitPath(rest)
	switch {
	case len(segs) == 0 && r.Method == http.MethodGet:
		g.call(w, r, g.fleet, fleetMethod("ListBlocks"), map[string]any{})
	case len(segs) == 0 && r.Method == http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		g.call(w, r, g.fleet, fleetMethod("CreateBlock"), body)
	case len(segs) == 1 && (r.Method == http.MethodPatch || r.Method == http.MethodPut):
		body, err := readBody(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		body["id"] = segs[0]
		g.call(w, r, g.fleet, fleetMethod("UpdateBlock"), body)
	case len(segs) == 2 && segs[1] == "complete" && r.Method == http.MethodPost:
		g.call(w, r, g.fleet, fleetMethod("CompleteBlock"), map[string]any{"id": segs[0]})
	default:
		http.NotFound(w, r)
	}
}

func (g *gateway) serveUsers(w http.ResponseWriter, r *http.Request, rest string) {
	segs := splitPath(rest)
	switch {
	case len(segs) == 0 && r.Method == http.MethodGet:
		g.call(w, r, g.user, userMethod("ListUsers"), map[string]any{
			"role":      r.URL.Query().Get("role"),
			"page":      queryInt64(r, "page"),
			"page_size": queryInt64(r, "page_size"),
		})
	default:
		http.NotFound(w, r)
	}
}

func (g *gateway) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		g.call(w, r, g.user, userMethod("RegisterUser"), body)
	})
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		g.call(w, r, g.user, userMethod("Login"), body)
	})
	mux.HandleFunc("/api/v1/profile", func(w http.ResponseWriter, r *http.Request) {
		g.call(w, r, g.user, userMethod("GetProfile"), map[string]any{})
	})
	mux.HandleFunc("/api/v1/users", func(w http.ResponseWriter, r *http.Request) {
		g.serveUsers(w, r, "")
	})
	mux.HandleFunc("/api/v1/vehicles", func(w http.ResponseWriter, r *http.Request) {
		g.serveVehicles(w, r, "")
	})
	mux.HandleFunc("/api/v1/vehicles/", func(w http.ResponseWriter, r *http.Request) {
		g.serveVehicles(w, r, strings.TrimPrefix(r.URL.Path, "/api/v1/vehicles/"))
	})
	mux.HandleFunc("/api/v1/blocks", func(w http.ResponseWriter, r *http.Request) {
		g.serveBlocks(w, r, "")
	})
	mux.HandleFunc("/api/v1/blocks/", func(w http.ResponseWriter, r *http.Request) {
		g.serveBlocks(w, r, strings.TrimPrefix(r.URL.Path, "/api/v1/blocks/"))
	})
	mux.HandleFunc("/api/v1/calendar/blocks", func(w http.ResponseWriter, r *http.Request) {
		g.call(w, r, g.fleet, fleetMethod("CalendarBlocks"), map[string]any{
			"start_date": queryInt64(r, "start_date"),
			"end_date":   queryInt64(r, "end_date"),
		})
	})

	// 限流挡在所有路由之前：全局令牌桶 + 按客户端 IP 分桶
	global := middleware.NewTokenBucket(*rateCap, *rateRefill)
	perClient := middleware.NewKeyedTokenBucket(*rateCap/4+1, *rateRefill/4+1, 10*time.Minute)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
		if !global.Allow(r.Context()) || !perClient.AllowKey(r.Context(), ip) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code":    "ResourceExhausted",
				"message": "rate limit exceeded",
			})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func dial(addr string) (*grpc.ClientConn, error) {
	return grpc.Dial(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(commonserver.JSONCodecName)),
	)
}

func main() {
	flag.Parse()

	fleetTarget, userTarget := *fleetAddr, *userAddr
	if *consulAddr != "" {
		host, portStr, err := net.SplitHostPort(*consulAddr)
		if err != nil {
			panic(fmt.Sprintf("invalid -consul address: %v", err))
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			panic(fmt.Sprintf("invalid -consul port: %v", err))
		}
		client, err := discovery.NewConsulClient(host, port)
		if err != nil {
			panic(fmt.Sprintf("failed to create consul client: %v", err))
		}
		discovery.RegisterBuilder(client)
		fleetTarget = "consul:///fleet-service"
		userTarget = "consul:///user-service"
	}

	fleetConn, err := dial(fleetTarget)
	if err != nil {
		panic(fmt.Sprintf("failed to dial fleet-service: %v", err))
	}
	defer fleetConn.Close()
	userConn, err := dial(userTarget)
	if err != nil {
		panic(fmt.Sprintf("failed to dial user-service: %v", err))
	}
	defer userConn.Close()

	g := &gateway{fleet: fleetConn, user: userConn}

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           g.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Printf("api-gateway listening on %s\n", *listenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		panic(err)
	}
}

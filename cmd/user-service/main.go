package main

import (
	"flag"
	"fmt"
	"net"
	"strconv"

	"google.golang.org/grpc"

	"github.com/FleetLink/FleetLink/internal/api/userv1"
	"github.com/FleetLink/FleetLink/internal/common/config"
	"github.com/FleetLink/FleetLink/internal/common/db"
	"github.com/FleetLink/FleetLink/internal/common/logger"
	"github.com/FleetLink/FleetLink/internal/common/server"
	"github.com/FleetLink/FleetLink/internal/common/tracing"
	"github.com/FleetLink/FleetLink/internal/user"
)

var (
	configPath      = flag.String("config", "configs/user-service.json", "配置文件路径")
	consulConfig    = flag.String("consul-config", "", "Consul 地址（host:port）；非空时从 Consul KV 读取配置")
	consulConfigKey = flag.String("consul-config-key", "fleetlink/user-service/config", "Consul KV 中的配置 key")
)

func main() {
	flag.Parse()

	// 加载配置：优先 Consul KV，其次本地文件
	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(&user.User{}); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 启动统一的 gRPC 服务模板
	if err := server.RunGRPCServer(cfg, log, func(s *grpc.Server) error {
		userv1.RegisterUserServiceServer(s, user.NewGRPCServer(gormDB, cfg.Auth))
		return nil
	}); err != nil {
		log.Fatalf("user-service exited with error: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	if *consulConfig == "" {
		return config.LoadConfig(*configPath)
	}
	host, portStr, err := net.SplitHostPort(*consulConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid -consul-config address: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid -consul-config port: %w", err)
	}
	return config.LoadConfigFromConsulKV(host, port, *consulConfigKey)
}

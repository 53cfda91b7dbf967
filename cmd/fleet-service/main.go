package main

import (
	"flag"
	"fmt"
	"net"
	"strconv"

	"google.golang.org/grpc"

	"github.com/FleetLink/FleetLink/internal/api/fleetv1"
	"github.com/FleetLink/FleetLink/internal/block"
	"github.com/FleetLink/FleetLink/internal/common/config"
	"github.com/FleetLink/FleetLink/internal/common/db"
	"github.com/FleetLink/FleetLink/internal/common/logger"
	"github.com/FleetLink/FleetLink/internal/common/server"
	"github.com/FleetLink/FleetLink/internal/common/tracing"
	"github.com/FleetLink/FleetLink/internal/fleet"
	"github.com/FleetLink/FleetLink/internal/store"
	"github.com/FleetLink/FleetLink/internal/user"
	"github.com/FleetLink/FleetLink/internal/vehicle"
)

var (
	configPath      = flag.String("config", "configs/fleet-service.json", "配置文件路径")
	consulConfig    = flag.String("consul-config", "", "Consul 地址（host:port）；非空时从 Consul KV 读取配置")
	consulConfigKey = flag.String("consul-config-key", "fleetlink/fleet-service/config", "Consul KV 中的配置 key")
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
	if err := gormDB.AutoMigrate(&vehicle.Vehicle{}, &block.Block{}, &user.User{}); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 启动时一次性探测存储过程能力，选定读路径策略
	strategy := store.Select(gormDB, cfg.Store, log)
	log.Infof("data access strategy selected: %s", strategy.Name())

	// 组装业务层
	vehicleRepo := vehicle.NewRepo(gormDB)
	blockRepo := block.NewRepo(gormDB)
	userRepo := user.NewRepo(gormDB)

	sync := vehicle.NewSynchronizer(vehicleRepo, blockRepo, userRepo, log)
	directory := vehicle.NewDirectory(vehicleRepo, blockRepo, sync, strategy, log)
	scheduler := block.NewScheduler(blockRepo, vehicleRepo, sync, strategy, log)
	calendar := block.NewCalendar(blockRepo, strategy)

	// 启动统一的 gRPC 服务模板
	if err := server.RunGRPCServer(cfg, log, func(s *grpc.Server) error {
		fleetv1.RegisterFleetServiceServer(s, fleet.NewGRPCServer(directory, scheduler, calendar))
		return nil
	}); err != nil {
		log.Fatalf("fleet-service exited with error: %v", err)
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

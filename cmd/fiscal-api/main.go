package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/galacerda/fiscal-api/internal/api"
	"github.com/galacerda/fiscal-api/internal/common/config"
	"github.com/galacerda/fiscal-api/internal/common/db"
	"github.com/galacerda/fiscal-api/internal/common/logger"
	"github.com/galacerda/fiscal-api/internal/common/middleware"
	"github.com/galacerda/fiscal-api/internal/common/server"
	"github.com/galacerda/fiscal-api/internal/common/tracing"
	"github.com/galacerda/fiscal-api/internal/device"
	"github.com/galacerda/fiscal-api/internal/fiscal"
	"github.com/galacerda/fiscal-api/internal/identity"
	"github.com/galacerda/fiscal-api/internal/irregularity"
	"github.com/galacerda/fiscal-api/internal/vehicle"
)

var (
	configPath = flag.String("config", "configs/fiscal-api.json", "配置文件路径")
	consulKey  = flag.String("consul-key", "", "从 Consul KV 读取配置的 key（可选）")
)

func main() {
	flag.Parse()

	// 加载配置（文件，或 Consul KV）
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if *consulKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(cfg.Consul.Host, cfg.Consul.Port, *consulKey)
		if err != nil {
			panic(fmt.Sprintf("failed to load config from Consul KV: %v", err))
		}
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

	// 初始化 MySQL
	gdb, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := gdb.AutoMigrate(
		&vehicle.Vehicle{},
		&device.Device{},
		&fiscal.Fiscal{},
		&irregularity.Report{},
		&identity.AuthUser{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// fuso de exibição; indisponível no host cai no offset fixo herdado
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		log.Warnf("unknown timezone %q, falling back to UTC-3: %v", cfg.Server.Timezone, err)
		loc = nil
	}

	// repositórios + serviços
	vehicles := vehicle.NewService(vehicle.NewRepo(gdb), loc)

	deviceRepo := device.NewRepo(gdb)
	breaker := middleware.NewCircuitBreaker("identity-store", 5, 30*time.Second)
	provider := identity.NewProvider(deviceRepo, identity.NewRepo(gdb), breaker)

	registrar := irregularity.NewService(deviceRepo, fiscal.NewRepo(gdb), irregularity.NewRepo(gdb))

	handlers := api.New(log, cfg.Auth, provider, vehicles, registrar)

	if err := server.RunHTTPServer(cfg, log, handlers.Register); err != nil {
		log.Fatalf("fiscal-api exited with error: %v", err)
	}
}

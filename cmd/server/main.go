package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountservice "account-orchestrator/internal/account/service"
	"account-orchestrator/internal/audit"
	auditrepo "account-orchestrator/internal/audit/repository"
	"account-orchestrator/internal/config"
	"account-orchestrator/internal/db"
	"account-orchestrator/internal/identity/gateway"
	otprepo "account-orchestrator/internal/otp/repository"
	otpservice "account-orchestrator/internal/otp/service"
	profileservice "account-orchestrator/internal/profile/service"
	"account-orchestrator/internal/server"
	"account-orchestrator/internal/session/registry"
	sessionservice "account-orchestrator/internal/session/service"
	"account-orchestrator/internal/telemetry"
	otelsetup "account-orchestrator/internal/telemetry/otel"
	"account-orchestrator/internal/telemetry/producer"
	"account-orchestrator/internal/throttle"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.ProviderBaseURL == "" {
		log.Fatal("PROVIDER_BASE_URL is required")
	}

	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "account-orchestrator", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("telemetry: kafka producer: %v", err)
	}
	var emitters []telemetry.EventEmitter
	emitters = append(emitters, otelsetup.NewEventEmitter(providers.LoggerProvider))
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
	}
	emitter := telemetry.Fanout(emitters...)

	// Postgres is optional: without DATABASE_URL, challenge and cooldown state
	// live in memory and audit events are dropped.
	var (
		challenges otprepo.Repository = otprepo.NewMemoryRepository()
		cooldowns  throttle.Store     = throttle.NewMemoryStore()
		auditRepo  auditrepo.Repository
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		challenges = otprepo.NewPostgresRepository(conn)
		cooldowns = throttle.NewPostgresStore(conn)
		auditRepo = auditrepo.NewPostgresRepository(conn)
	} else {
		log.Println("DATABASE_URL not set; using in-memory stores")
	}
	recorder := audit.NewLogger(auditRepo)

	gw := gateway.NewHTTPGateway(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderCallTimeout())
	sessions := registry.New()

	manager := sessionservice.NewManager(gw, sessions, recorder)
	verifier := otpservice.NewVerifier(gw, challenges, manager, recorder)
	svcs := server.Services{
		Registrar: accountservice.NewRegistrar(gw, verifier, recorder),
		Verifier:  verifier,
		Resends:   throttle.New(cooldowns, gw, verifier, cfg.ResendCooldownWindow(), recorder),
		Sessions:  manager,
		Profile:   profileservice.NewUpdater(gw, sessions, recorder),
	}

	app := server.New(cfg, svcs, emitter)

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Give in-flight async emits time to finish before tearing telemetry down.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if kafkaProducer != nil {
		_ = kafkaProducer.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

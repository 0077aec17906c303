package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/carelog/carebot/internal/config"
	"github.com/carelog/carebot/internal/providers/llm"
	"github.com/carelog/carebot/internal/service/command"
	"github.com/carelog/carebot/internal/service/facts"
	"github.com/carelog/carebot/internal/service/memory"
	"github.com/carelog/carebot/internal/service/subject"
	"github.com/carelog/carebot/internal/service/turn"
	"github.com/carelog/carebot/internal/storage/records"
	"github.com/carelog/carebot/internal/storage/sqlite"
	"github.com/carelog/carebot/internal/transport/cli"
	"github.com/carelog/carebot/internal/transport/telegram"
	"github.com/carelog/carebot/pkg/log"
	"github.com/carelog/carebot/pkg/srv"
	"github.com/carelog/carebot/pkg/tokens"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	providerCfg := config.NewProviderConfig(ctx)

	// 2. Memory storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize memory storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	sessionsRepo := sqlite.NewSessionsRepo(db)
	store := memory.NewStore(
		sqlite.NewMessagesRepo(db),
		sqlite.NewSummariesRepo(db),
		sqlite.NewPinsRepo(db),
	)

	// 3. Read-only record store (ground truth)
	recordStore, err := records.Open(ctx, appCfg.GetRecordsPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open record store")
	}
	services = append(services, srv.NewCleanup(recordStore.Close))

	// 4. AI Provider
	provider, err := llm.NewProvider(ctx, appCfg, providerCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}
	registry := llm.NewRegistry(provider)
	registry.Register(appCfg.Model, provider)

	// 5. Background summarizer
	summarizer := memory.NewSummarizer(store, provider, appCfg.SummaryThreshold)
	services = append(services, summarizer)

	// 6. Turn orchestrator
	assembler := memory.NewAssembler(store, tokens.NewCounter(ctx), memory.AssemblerConfig{
		MinPinImportance: appCfg.MinPinImportance,
		RecentLimit:      appCfg.RecentMessageLimit,
		PinLimit:         appCfg.PinLimit,
		SummaryLimit:     appCfg.SummaryLimit,
	})

	orchestrator := turn.NewOrchestrator(
		sessionsRepo,
		store,
		assembler,
		subject.NewTracker(recordStore, sessionsRepo),
		[]facts.Provider{
			facts.NewMedicationProvider(recordStore),
			facts.NewAppointmentProvider(recordStore),
		},
		registry,
		summarizer,
		turn.Options{
			ModelID:             appCfg.Model,
			TokenBudget:         appCfg.ContextTokenBudget,
			ConversationalFacts: appCfg.ConversationalFacts,
		},
	)

	// 7. Slash commands shared by the transports
	router := command.New([]command.Command{
		command.NewPinCmd(store),
		command.NewPinsCmd(store, appCfg.PinLimit),
		command.NewSubjectCmd(sessionsRepo, recordStore),
	})
	router.Register(command.NewHelpCmd(router))

	// 8. Transports
	transports, err := initTransports(ctx, appCfg, orchestrator, router)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initTransports(ctx context.Context, cfg *config.AppConfig, orchestrator *turn.Orchestrator, commands *command.Router) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, orchestrator, commands)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(orchestrator, commands, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, rl)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

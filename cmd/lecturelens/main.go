package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lecturelens/internal/adapters/driven/ai"
	"github.com/custodia-labs/lecturelens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lecturelens/internal/adapters/driven/pacing"
	"github.com/custodia-labs/lecturelens/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/lecturelens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lecturelens/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/lecturelens/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lecturelens/internal/adapters/driving/cli"
	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/core/services"
	"github.com/custodia-labs/lecturelens/internal/logger"
	"github.com/custodia-labs/lecturelens/internal/normalisers"
	"github.com/custodia-labs/lecturelens/internal/normalisers/subtitle"
	"github.com/custodia-labs/lecturelens/internal/postprocessors/chunker"
)

// Set by the release build.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	configDir, err := file.DefaultConfigDir()
	if err != nil {
		return err
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	promptStore, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	settingsService := services.NewSettingsService(
		configStore,
		ai.NewConfigValidator(),
		services.WithDefaultDataDir(filepath.Join(configDir, "data")),
	)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	cli.SetVersion(version)

	store, err := openStore(ctx, settings)
	if err != nil {
		// Only settings remain usable, so a broken backend can be reconfigured.
		logger.Warn("storage unavailable: %v", err)
		cli.SetServices(cli.Services{Settings: settingsService})
		return cli.Execute(ctx)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("close store: %v", cerr)
		}
	}()

	var archive driven.RawArchive
	if settings.Storage.ArchiveRaw {
		a, aerr := jsonfile.NewArchive(settings.DataDir)
		if aerr != nil {
			logger.Warn("raw archive disabled: %v", aerr)
		} else {
			archive = a
		}
	}

	aiServices := ai.Init(settings)
	defer aiServices.Close()
	for _, w := range aiServices.Warnings {
		logger.Info("%s", w)
	}

	pacer := pacing.New(pacing.FromSettings(settings.Pacing))
	batches := services.NewBatchManager(
		services.BatchConfigFromSettings(settings.Batch),
		chunker.New(chunker.WithChunkSize(settings.Batch.ChunkSize)),
		pacer,
	)

	embedService := services.NewEmbedService(store, aiServices.EmbeddingService, batches)
	queryService := services.NewQueryService(store, aiServices.EmbeddingService, settings.Query.TopK)
	chatService := services.NewChatService(queryService, aiServices.LLMService, services.ChatConfig{
		TopK:        settings.Query.ChatTopK,
		Temperature: settings.LLM.Temperature,
		MaxTokens:   settings.LLM.MaxTokens,
	})
	chatService.SetPromptStore(promptStore)

	cli.SetServices(cli.Services{
		Ingest:   services.NewIngestService(store, normalisers.NewRegistry(subtitle.New()), archive),
		Embed:    embedService,
		Query:    queryService,
		Chat:     chatService,
		Session:  services.NewSessionService(store, embedService),
		Settings: settingsService,
	})

	return cli.Execute(ctx)
}

// openStore opens the session store selected by storage.backend.
func openStore(ctx context.Context, settings *domain.AppSettings) (driven.SessionStore, error) {
	switch settings.Storage.Backend {
	case domain.StorageMemory:
		return memory.NewSessionStore(), nil
	case domain.StorageJSON:
		return jsonfile.NewStore(settings.DataDir)
	case domain.StoragePostgres:
		return postgres.NewStore(ctx, settings.Storage.DSN)
	case domain.StorageSQLite, "":
		return sqlite.NewStore(settings.DataDir)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
	}
}

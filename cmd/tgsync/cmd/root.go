package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"

	"tgsync/internal/config"
	"tgsync/internal/domain/sync"
	"tgsync/internal/infrastructure/storage"
	"tgsync/internal/utils/logger"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	cfgFile    string
	cfg        *config.Config
	log        *slog.Logger
	debug      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "tgsync",
	Short: "tgsync - сверка выгрузки Telegram с таблицами контактов",
	Long: `tgsync переносит выгруженные контакты и личные чаты Telegram в таблицы
(CSV, Google Sheets, SQLite, PostgreSQL), не теряя вручную заполненных колонок.

Перед каждой перезаписью таблицы создается снапшот, старые снапшоты удаляются.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute запускает CLI; Ctrl+C отменяет контекст команды.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func setupApp(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log = logger.WithLevel(cfg.Env, level)

	// prod: без цвета
	if cfg.IsProd() {
		color.NoColor = true
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл (по умолчанию sync_config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")

	rootCmd.AddCommand(syncCmd, statusCmd, backupCmd, serveCmd, statsCmd)
}

// openProviders открывает хранилища из конфигурации; name ограничивает выбор одним хранилищем.
func openProviders(ctx context.Context, name string) ([]*storage.Adapter, error) {
	cfgs := cfg.Providers
	if name != "" {
		cfgs = nil
		for _, p := range cfg.Providers {
			if p.Name == name {
				cfgs = append(cfgs, p)
			}
		}
		if len(cfgs) == 0 {
			return nil, fmt.Errorf("хранилище %q не найдено в конфигурации", name)
		}
	}
	return storage.OpenAll(ctx, cfgs, log)
}

func newSyncService(adapters []*storage.Adapter) *sync.Service {
	providers := make([]sync.Provider, 0, len(adapters))
	for _, a := range adapters {
		providers = append(providers, a)
	}
	return sync.NewService(
		providers,
		sync.NewReconciler(log, nil),
		log,
		&sync.ServiceConfig{StatsPath: cfg.StatsPath},
	)
}

func outputFormat(flag string) string {
	if jsonOutput {
		return outputJSON
	}
	return flag
}

// printStructured выводит v в JSON или YAML; false - формат текстовый, печатать должен вызывающий.
func printStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return true, enc.Encode(v)
	case outputText, "":
		return false, nil
	default:
		return false, fmt.Errorf("неизвестный формат вывода %q (text, json, yaml)", format)
	}
}

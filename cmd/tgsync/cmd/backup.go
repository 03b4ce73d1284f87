package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tgsync/internal/domain/snapshot"
	"tgsync/internal/infrastructure/storage"
)

var (
	backupProvider string
	backupKeep     int
	backupList     bool
)

type backupResult struct {
	Provider  string          `json:"provider" yaml:"provider"`
	Created   string          `json:"created,omitempty" yaml:"created,omitempty"`
	Deleted   int             `json:"deleted" yaml:"deleted"`
	Snapshots []snapshot.Info `json:"snapshots" yaml:"snapshots"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Создать снапшоты таблиц и удалить старые",
	Long: `Создает снапшот таблицы каждого хранилища ({источник}_backup_ГГГГММДД_ЧЧММ)
и оставляет только последние --keep снапшотов. С --list только выводит снапшоты.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		adapters, err := openProviders(ctx, backupProvider)
		if err != nil {
			return err
		}
		defer storage.CloseAll(adapters)

		results := make([]backupResult, 0, len(adapters))
		failed := 0
		for _, a := range adapters {
			res := backupResult{Provider: a.Name()}
			if err := runBackup(cmd, a, &res); err != nil {
				log.Error("backup failed", "provider", a.Name(), "error", err)
				res.Error = err.Error()
				failed++
			}
			results = append(results, res)
		}

		ok, err := printStructured(os.Stdout, outputFormat(outputText), results)
		if err != nil {
			return err
		}
		if !ok {
			for _, r := range results {
				printBackup(r)
			}
		}

		if failed == len(adapters) {
			return fmt.Errorf("не удалось создать ни одного снапшота")
		}
		return nil
	},
}

func runBackup(cmd *cobra.Command, a *storage.Adapter, res *backupResult) error {
	ctx := cmd.Context()

	if !backupList {
		name, err := a.Snapshot(ctx)
		if err != nil {
			return err
		}
		res.Created = name

		keep := a.Keep()
		if cmd.Flags().Changed("keep") {
			keep = backupKeep
		}
		if res.Deleted, err = a.Prune(ctx, keep); err != nil {
			return err
		}
	}

	snaps, err := a.Snapshots(ctx)
	if err != nil {
		return err
	}
	res.Snapshots = snaps
	return nil
}

func printBackup(r backupResult) {
	fmt.Printf("=== %s ===\n", r.Provider)
	if r.Error != "" {
		fmt.Printf("Ошибка: %s\n", r.Error)
		return
	}
	switch {
	case backupList:
	case r.Created == "":
		fmt.Println("Таблица пуста, снапшот не нужен")
	default:
		fmt.Printf("Создан снапшот: %s\n", r.Created)
	}
	if r.Deleted > 0 {
		fmt.Printf("Удалено старых снапшотов: %d\n", r.Deleted)
	}
	fmt.Printf("Снапшотов: %d\n", len(r.Snapshots))
	for _, s := range r.Snapshots {
		fmt.Printf("  %s\n", s.Name)
	}
}

func init() {
	backupCmd.Flags().StringVar(&backupProvider, "provider", "", "только одно хранилище")
	backupCmd.Flags().IntVar(&backupKeep, "keep", snapshot.DefaultKeep, "сколько снапшотов оставить")
	backupCmd.Flags().BoolVar(&backupList, "list", false, "только показать снапшоты")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tgsync/internal/domain/sync"
)

var (
	statsReset  bool
	statsOutput string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Показать статистику синхронизаций",
	RunE: func(_ *cobra.Command, _ []string) error {
		// статистика читается из файла, хранилища открывать не нужно
		service := sync.NewService(nil, sync.NewReconciler(log, nil), log, &sync.ServiceConfig{StatsPath: cfg.StatsPath})

		if statsReset {
			if err := service.ResetStats(); err != nil {
				return fmt.Errorf("ошибка сброса статистики: %w", err)
			}
			fmt.Println("Статистика сброшена")
			return nil
		}

		stats := service.Stats()
		if ok, err := printStructured(os.Stdout, outputFormat(statsOutput), stats); ok || err != nil {
			return err
		}

		fmt.Println("=== Статистика синхронизаций ===")
		fmt.Printf("Всего синхронизаций: %d\n", stats.TotalSyncs)
		fmt.Printf("Ошибок хранилищ: %d\n", stats.TotalErrors)
		fmt.Printf("Записей обработано: %d\n", stats.TotalRecords)
		fmt.Printf("Добавлено: %d, обновлено: %d\n", stats.TotalInserted, stats.TotalUpdated)
		fmt.Printf("Среднее время: %.2f сек\n", stats.AvgSyncDuration)
		if !stats.LastSuccessful.IsZero() {
			fmt.Printf("Последняя успешная: %s\n", stats.LastSuccessful.Format("2006-01-02 15:04:05"))
		}
		if !stats.LastFailed.IsZero() {
			fmt.Printf("Последняя неудачная: %s\n", stats.LastFailed.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "сбросить статистику")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", outputText, "формат вывода: text, json, yaml")
}

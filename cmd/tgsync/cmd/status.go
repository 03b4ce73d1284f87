package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tgsync/internal/app/collector"
	"tgsync/internal/infrastructure/storage"
)

var (
	statusOutput   string
	statusProvider string
)

type statusView struct {
	Provider string                 `json:"provider" yaml:"provider"`
	Rows     int                    `json:"rows" yaml:"rows"`
	Messages collector.StatusReport `json:"messages" yaml:"messages"`
	Groups   collector.StatusReport `json:"common_groups" yaml:"common_groups"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать состояние обработки таблицы",
	Long: `Считает строки таблицы по состоянию загрузчиков сообщений и общих групп:
обработано, ожидает, с ошибкой, без id. Telegram для этого не нужен.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		adapters, err := openProviders(ctx, statusProvider)
		if err != nil {
			return err
		}
		defer storage.CloseAll(adapters)

		a := adapters[0]
		table, err := a.ReadTable(ctx)
		if err != nil {
			return err
		}

		view := statusView{
			Provider: a.Name(),
			Rows:     table.Len(),
			Messages: collector.MessagesStatus(table),
			Groups:   collector.GroupsStatus(table),
		}
		if ok, err := printStructured(os.Stdout, outputFormat(statusOutput), view); ok || err != nil {
			return err
		}

		fmt.Println("==================================================")
		fmt.Printf("СОСТОЯНИЕ ОБРАБОТКИ: %s\n", view.Provider)
		fmt.Println("==================================================")
		printStatus("Сообщения", view.Messages)
		printStatus("Общие группы", view.Groups)
		return nil
	},
}

func printStatus(title string, r collector.StatusReport) {
	fmt.Printf("\n%s (%s)\n", title, r.Column)
	fmt.Printf("Всего строк: %d\n", r.TotalRows)
	fmt.Printf("Строк с id: %d\n", r.ValidRows)
	if r.NoID > 0 {
		fmt.Printf("Строк без id (пропущены): %d\n", r.NoID)
	}
	fmt.Printf("  %s Обработано: %d\n", color.GreenString("✓"), r.Processed)
	fmt.Printf("  %s Ожидает: %d\n", color.YellowString("…"), r.Pending)
	if r.Errors > 0 {
		fmt.Printf("  %s Ошибки: %d\n", color.RedString("✗"), r.Errors)
	}
	if r.ValidRows > 0 {
		fmt.Printf("Прогресс: %.1f%%\n", r.ProcessedPercent())
	}
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", outputText, "формат вывода: text, json, yaml")
	statusCmd.Flags().StringVar(&statusProvider, "provider", "", "хранилище (по умолчанию первое доступное)")
}

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tgsync/internal/app/client"
	"tgsync/internal/app/collector"
	"tgsync/internal/domain/sync"
	"tgsync/internal/infrastructure/storage"
)

var (
	contactsFile string
	chatsFile    string
	syncProvider string
	syncRemote   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизировать выгрузку Telegram со всеми хранилищами",
	Long: `Читает последнюю выгрузку контактов и чатов (contacts_*.json, chats_*.json)
из каталога export_dir, собирает по одной записи на пользователя и сверяет
их с таблицей каждого хранилища.

Новые записи добавляются в конец, существующие обновляются только непустыми
значениями, пользовательские колонки сохраняются.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		export, err := resolveExport()
		if err != nil {
			return err
		}
		contacts, dialogs, err := export.Load()
		if err != nil {
			return err
		}
		batch := collector.BuildRecords(contacts, dialogs)
		log.Info("loaded export",
			"contacts", export.ContactsFile,
			"chats", export.ChatsFile,
			"records", len(batch),
		)

		var (
			report  *sync.Report
			syncErr error
		)
		if syncRemote != "" {
			report, syncErr = client.New(syncRemote, log).Sync(ctx, batch)
		} else {
			adapters, err := openProviders(ctx, syncProvider)
			if err != nil {
				return err
			}
			defer storage.CloseAll(adapters)

			report, syncErr = newSyncService(adapters).SyncRecords(ctx, batch)
		}
		if report != nil {
			if err := printReport(report); err != nil {
				return err
			}
		}
		if syncErr != nil {
			return fmt.Errorf("ошибка синхронизации: %w", syncErr)
		}
		return nil
	},
}

func resolveExport() (collector.Export, error) {
	if contactsFile != "" && chatsFile != "" {
		return collector.Export{ContactsFile: contactsFile, ChatsFile: chatsFile}, nil
	}

	export, err := collector.LatestExport(cfg.ExportDir)
	if err != nil {
		return collector.Export{}, err
	}
	if contactsFile != "" {
		export.ContactsFile = contactsFile
	}
	if chatsFile != "" {
		export.ChatsFile = chatsFile
	}
	return export, nil
}

func printReport(report *sync.Report) error {
	if ok, err := printStructured(os.Stdout, outputFormat(outputText), report); ok || err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Println("=== Синхронизация ===")
	fmt.Printf("Записей в батче: %d\n", report.Records)
	for _, p := range report.Providers {
		if !p.Success {
			fmt.Printf("%s %s: %s\n", red("✗"), p.Provider, p.Error)
			continue
		}
		fmt.Printf("%s %s: строк %d, добавлено %d, обновлено %d, без изменений %d\n",
			green("✓"), p.Provider, p.Rows, p.Inserted, p.Updated, p.Unchanged)
		if len(p.Duplicates) > 0 {
			fmt.Printf("  повторяющиеся id: %v\n", p.Duplicates)
		}
	}
	fmt.Printf("Успешно: %d из %d, время: %v\n",
		report.Succeeded, len(report.Providers), report.Duration.Round(time.Millisecond))
	return nil
}

func init() {
	syncCmd.Flags().StringVar(&contactsFile, "contacts", "", "файл контактов (по умолчанию последний contacts_*.json)")
	syncCmd.Flags().StringVar(&chatsFile, "chats", "", "файл чатов (по умолчанию последний chats_*.json)")
	syncCmd.Flags().StringVar(&syncProvider, "provider", "", "синхронизировать только с одним хранилищем")
	syncCmd.Flags().StringVar(&syncRemote, "remote", "", "отправить батч на сервер tgsync (host:port) вместо локальных хранилищ")
	syncCmd.MarkFlagsMutuallyExclusive("provider", "remote")
}

package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/exp/slog"
)

const exportStampLayout = "20060102_150405"

const (
	contactsPrefix = "contacts_"
	chatsPrefix    = "chats_"
)

// Export - пара файлов выгрузки.
type Export struct {
	ContactsFile string
	ChatsFile    string
}

// Exporter выгружает контакты и диалоги в JSON-файлы каталога dir.
type Exporter struct {
	messenger Messenger
	dir       string
	log       *slog.Logger
	now       func() time.Time
}

func NewExporter(messenger Messenger, dir string, log *slog.Logger, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{
		messenger: messenger,
		dir:       dir,
		log:       log.With("component", "exporter"),
		now:       now,
	}
}

// Run выгружает контакты и диалоги и возвращает пути созданных файлов.
func (e *Exporter) Run(ctx context.Context) (Export, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Export{}, fmt.Errorf("create export dir: %w", err)
	}

	contacts, err := e.messenger.Contacts(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("get contacts: %w", err)
	}
	stamp := e.now().Format(exportStampLayout)

	var out Export
	out.ContactsFile = filepath.Join(e.dir, contactsPrefix+stamp+".json")
	if err := writeJSON(out.ContactsFile, contacts); err != nil {
		return Export{}, err
	}
	e.log.Info("contacts exported", "count", len(contacts), "file", out.ContactsFile)

	dialogs, err := e.messenger.Dialogs(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("get dialogs: %w", err)
	}
	out.ChatsFile = filepath.Join(e.dir, chatsPrefix+stamp+".json")
	if err := writeJSON(out.ChatsFile, dialogs); err != nil {
		return Export{}, err
	}
	e.log.Info("chats exported", "count", len(dialogs), "file", out.ChatsFile)

	return out, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LatestExport находит самые свежие (по времени изменения) файлы выгрузки в dir.
func LatestExport(dir string) (Export, error) {
	contacts, err := latestFile(dir, contactsPrefix)
	if err != nil {
		return Export{}, err
	}
	chats, err := latestFile(dir, chatsPrefix)
	if err != nil {
		return Export{}, err
	}
	return Export{ContactsFile: contacts, ChatsFile: chats}, nil
}

func latestFile(dir, prefix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*.json"))
	if err != nil {
		return "", err
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var files []candidate
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, candidate{path: m, modTime: info.ModTime()})
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: no %s*.json in %s", ErrNoExport, prefix, dir)
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.After(files[j].modTime)
		}
		return files[i].path > files[j].path
	})
	return files[0].path, nil
}

// Load читает контакты и диалоги из файлов выгрузки.
func (x Export) Load() ([]Contact, []Dialog, error) {
	var contacts []Contact
	if err := readJSON(x.ContactsFile, &contacts); err != nil {
		return nil, nil, err
	}
	var dialogs []Dialog
	if err := readJSON(x.ChatsFile, &dialogs); err != nil {
		return nil, nil, err
	}
	return contacts, dialogs, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

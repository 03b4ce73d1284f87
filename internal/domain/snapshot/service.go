package snapshot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/slog"
)

// Manager создает и ротирует снапшоты одного хранилища.
type Manager struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewManager создает менеджер снапшотов; now == nil означает time.Now.
func NewManager(repo Repository, log *slog.Logger, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		repo: repo,
		log:  log.With("component", "snapshot"),
		now:  now,
	}
}

// Create делает снапшот источника и возвращает его имя.
// Если снапшот с таким именем уже есть (та же минута), возвращается существующее имя.
// Пустое имя без ошибки означает, что копировать было нечего.
func (m *Manager) Create(ctx context.Context, source string) (string, error) {
	name := Name(source, m.now())

	existing, err := m.repo.ListSnapshots(ctx, Prefix(source))
	if err != nil {
		return "", fmt.Errorf("%w: list %s: %w", ErrSnapshot, source, err)
	}
	for _, s := range existing {
		if s.Name == name {
			m.log.Info("snapshot already exists", "name", name)
			return name, nil
		}
	}

	created, err := m.repo.CreateSnapshot(ctx, name)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrSnapshot, name, err)
	}
	if !created {
		m.log.Debug("nothing to snapshot", "source", source)
		return "", nil
	}

	m.log.Info("snapshot created", "name", name)
	return name, nil
}

// Prune удаляет все снапшоты источника, кроме keep самых свежих.
// Имена с неразбираемым суффиксом не трогаются. Возвращает число удаленных.
func (m *Manager) Prune(ctx context.Context, source string, keep int) (int, error) {
	if keep < 0 {
		return 0, ErrInvalidKeep
	}

	list, err := m.repo.ListSnapshots(ctx, Prefix(source))
	if err != nil {
		return 0, fmt.Errorf("%w: list %s: %w", ErrSnapshot, source, err)
	}

	type dated struct {
		info Info
		at   time.Time
	}
	var snaps []dated
	for _, s := range list {
		at, ok := ParseName(source, s.Name)
		if !ok {
			continue
		}
		snaps = append(snaps, dated{info: s, at: at})
	}
	if len(snaps) <= keep {
		return 0, nil
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].at.After(snaps[j].at)
	})

	ids := make([]string, 0, len(snaps)-keep)
	for _, s := range snaps[keep:] {
		ids = append(ids, s.info.ID)
	}

	if err := m.repo.DeleteSnapshots(ctx, ids); err != nil {
		return 0, fmt.Errorf("%w: delete %d snapshots of %s: %w", ErrSnapshot, len(ids), source, err)
	}

	m.log.Info("old snapshots removed", "source", source, "deleted", len(ids), "kept", keep)
	return len(ids), nil
}

// Backup делает снапшот и сразу ротирует старые. Ошибки только логируются:
// запись в хранилище не должна блокироваться неудачным бэкапом.
func (m *Manager) Backup(ctx context.Context, source string, keep int) string {
	name, err := m.Create(ctx, source)
	if err != nil {
		m.log.Warn("failed to create snapshot, continuing without it", "source", source, "error", err)
		return ""
	}

	if _, err := m.Prune(ctx, source, keep); err != nil {
		m.log.Warn("failed to prune snapshots", "source", source, "error", err)
	}
	return name
}

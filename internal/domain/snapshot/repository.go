package snapshot

import "context"

// Repository примитивы снапшотов конкретного хранилища.
type Repository interface {
	// CreateSnapshot копирует текущее содержимое под именем name.
	// false без ошибки означает, что копировать нечего.
	CreateSnapshot(ctx context.Context, name string) (bool, error)

	// ListSnapshots возвращает снапшоты, имена которых начинаются с prefix.
	ListSnapshots(ctx context.Context, prefix string) ([]Info, error)

	// DeleteSnapshots удаляет снапшоты одним вызовом.
	DeleteSnapshots(ctx context.Context, ids []string) error
}

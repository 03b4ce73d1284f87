package migration

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Blank imports required for driver registration for migrations
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Диалекты; совпадают с каталогами в sql/
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

var ErrUnknownDialect = errors.New("unknown migration dialect")

//go:embed sql/postgres/*.sql sql/sqlite3/*.sql
var migrations embed.FS

// Migrator - то, что нужно от migrate.Migrate
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine создает мигратор по источнику и URL базы
type MigrationEngine func(src source.Driver, databaseURL string) (Migrator, error)

type Migration struct {
	dialect     string
	databaseURL string
	engine      MigrationEngine
}

// NewMigration создает мигратор для dialect. databaseURL в формате golang-migrate:
// postgres://... или sqlite3://path.
func NewMigration(dialect, databaseURL string, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		dialect:     dialect,
		databaseURL: databaseURL,
		engine:      engine,
	}
}

// DefaultEngine - migrate.Migrate поверх встроенных миграций
func DefaultEngine(src source.Driver, databaseURL string) (Migrator, error) {
	return migrate.NewWithSourceInstance("iofs", src, databaseURL)
}

func (mg *Migration) Up() (err error) {
	if mg.dialect != DialectPostgres && mg.dialect != DialectSQLite {
		return fmt.Errorf("%w: %q", ErrUnknownDialect, mg.dialect)
	}

	src, err := iofs.New(migrations, "sql/"+mg.dialect)
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := mg.engine(src, mg.databaseURL)
	if err != nil {
		return fmt.Errorf("init %s migrator: %w", mg.dialect, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		err = errors.Join(err, srcErr, dbErr)
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply %s migrations: %w", mg.dialect, err)
	}
	return nil
}

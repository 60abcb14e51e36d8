// postgres предоставляет реализацию storage.UsersStorage на базе PostgreSQL.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pribylovaa/go-user-directory/internal/storage"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

type UsersStorage struct {
	db *pgxpool.Pool
}

// New создает пул соединений к PostgreSQL, проверяет его и применяет
// идемпотентный bootstrap схемы.
func New(ctx context.Context, dbURL string) (*UsersStorage, error) {
	const op = "storage/postgres/New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &UsersStorage{db: db}
	if err := s.bootstrap(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// bootstrap выполняет встроенные *.up.sql в лексикографическом порядке.
// Все скрипты написаны через IF NOT EXISTS.
func (s *UsersStorage) bootstrap(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.up.sql")
	if err != nil {
		return err
	}

	sort.Strings(names)

	for _, name := range names {
		script, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		if _, err := s.db.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}

	return nil
}

// Ping проверяет доступность БД.
func (s *UsersStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close закрывает пул соединений.
// Должен вызываться при остановке приложения.
func (s *UsersStorage) Close(_ context.Context) error {
	s.db.Close()
	return nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.UsersStorage = (*UsersStorage)(nil)

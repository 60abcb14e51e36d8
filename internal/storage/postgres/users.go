package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/go-user-directory/internal/models"
	"github.com/pribylovaa/go-user-directory/internal/storage"
)

// userColumns — единый список колонок таблицы users,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
const userColumns = `
id, name, gender, designation, favorites, created_at, updated_at
`

// scanUser сканирует одну строку в доменную модель.
func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user   models.User
		id     uuid.UUID
		gender string
	)

	if err := row.Scan(
		&id,
		&user.Name,
		&gender,
		&user.Designation,
		&user.Favorites,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	user.ID = id.String()
	user.Gender = models.Gender(gender)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return &user, nil
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, storage.ErrInvalidID
	}

	return uid, nil
}

// CreateUser нормализует и валидирует запись, затем вставляет её.
// id, created_at и updated_at проставляет БД (DEFAULT).
func (s *UsersStorage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage/postgres/users/CreateUser"

	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := `
	INSERT INTO users (name, gender, designation, favorites)
	VALUES ($1, $2, $3, $4)
	RETURNING
	` + userColumns

	row := s.db.QueryRow(ctx, q,
		user.Name,
		string(user.Gender),
		user.Designation,
		user.Favorites,
	)

	result, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// ListUsers возвращает все записи: created_at DESC, id DESC.
func (s *UsersStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage/postgres/users/ListUsers"

	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		items = append(items, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// UserByID возвращает запись по id.
// Ошибки: storage.ErrInvalidID, storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *UsersStorage) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage/postgres/users/UserByID"

	uid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	result, err := scanUser(s.db.QueryRow(ctx, q, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdateUser выполняет частичный апдейт в транзакции: блокирует строку,
// валидирует итоговую запись и обновляет только переданные поля.
// updated_at = GREATEST(now(), updated_at + 1ms) растёт строго.
func (s *UsersStorage) UpdateUser(ctx context.Context, id string, update models.Update) (*models.User, error) {
	const op = "storage/postgres/users/UpdateUser"

	uid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	merged := update.Apply(*current)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sets := []string{"updated_at = GREATEST(date_trunc('milliseconds', now()), updated_at + interval '1 millisecond')"}
	args := make([]any, 0, 5)
	count := 0

	if update.Name != nil {
		count++
		sets = append(sets, fmt.Sprintf("name = $%d", count))
		args = append(args, merged.Name)
	}

	if update.Gender != nil {
		count++
		sets = append(sets, fmt.Sprintf("gender = $%d", count))
		args = append(args, string(merged.Gender))
	}

	if update.Designation != nil {
		count++
		sets = append(sets, fmt.Sprintf("designation = $%d", count))
		args = append(args, merged.Designation)
	}

	if update.Favorites != nil {
		count++
		sets = append(sets, fmt.Sprintf("favorites = $%d", count))
		args = append(args, merged.Favorites)
	}

	count++
	args = append(args, uid)

	q := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), count, userColumns)

	result, err := scanUser(tx.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return result, nil
}

// DeleteUser удаляет запись.
// Ошибки: storage.ErrInvalidID, storage.ErrNotFound.
func (s *UsersStorage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage/postgres/users/DeleteUser"

	uid, err := parseID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

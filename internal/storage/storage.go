// storage содержит контракт слоя хранилища справочника пользователей.
// Реализации: mongo (основная), postgres, memory.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-user-directory/internal/models"
)

var (
	// ErrNotFound — запись с таким id отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID — id не разбирается драйвером (битый ObjectID/UUID).
	ErrInvalidID = errors.New("invalid id")
)

// UsersStorage описывает операции над записями пользователей.
//
// Ошибки валидации схемы возвращаются как *models.ValidationError
// (обёрнутая, извлекается через errors.As).
type UsersStorage interface {
	// CreateUser нормализует и валидирует запись, назначает ID и
	// проставляет CreatedAt = UpdatedAt. При ошибке валидации ничего не пишет.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	// ListUsers возвращает все записи, сначала новые (created_at DESC).
	ListUsers(ctx context.Context) ([]models.User, error)

	// UserByID возвращает запись. ErrNotFound / ErrInvalidID.
	UserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUser применяет только переданные поля, валидирует итоговую запись
	// и строго увеличивает UpdatedAt. ErrNotFound / ErrInvalidID / ValidationError.
	UpdateUser(ctx context.Context, id string, update models.Update) (*models.User, error)

	// DeleteUser удаляет запись безвозвратно. ErrNotFound / ErrInvalidID.
	DeleteUser(ctx context.Context, id string) error

	// Ping проверяет доступность хранилища (readiness).
	Ping(ctx context.Context) error

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-user-directory/internal/models"
	"github.com/pribylovaa/go-user-directory/internal/storage"
	"github.com/pribylovaa/go-user-directory/pkg/log"
)

// CreateUserInput — создание записи справочника.
type CreateUserInput struct {
	Name        string
	Gender      string
	Designation string
	Favorites   []string
}

// mapStorageErr транслирует ошибки стораджа в сервисные и пишет лог
// с уровнем, соответствующим классу ошибки.
func mapStorageErr(lg *slog.Logger, op string, err error) error {
	var verr *models.ValidationError

	switch {
	case errors.As(err, &verr):
		lg.Warn("validation failed", "fields", verr.FieldNames())
		return fmt.Errorf("%s: %w: %w", op, ErrValidation, verr)
	case errors.Is(err, storage.ErrInvalidID):
		lg.Warn("invalid id")
		return fmt.Errorf("%s: %w", op, ErrInvalidID)
	case errors.Is(err, storage.ErrNotFound):
		lg.Warn("user not found")
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		lg.Error("storage error", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}
}

// CreateUser — бизнес-операция создания записи.
//
// Валидация:
//   - Name, Gender и Designation обязательны (после TrimSpace), иначе ErrInvalidArgument;
//   - остальные правила схемы проверяет хранилище -> ErrValidation.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	const op = "service/users/CreateUser"

	lg := log.With(ctx, "op", op)

	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Gender) == "" || strings.TrimSpace(in.Designation) == "" {
		lg.Warn("invalid argument: missing required field")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user := models.User{
		Name:        in.Name,
		Gender:      models.Gender(in.Gender),
		Designation: in.Designation,
		Favorites:   in.Favorites,
	}

	result, err := s.storage.CreateUser(ctx, user)
	if err != nil {
		return nil, mapStorageErr(lg, op, err)
	}

	lg.Info("user created", "user_id", result.ID)

	return result, nil
}

// ListUsers возвращает все записи, сначала новые.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "service/users/ListUsers"

	lg := log.With(ctx, "op", op)

	items, err := s.storage.ListUsers(ctx)
	if err != nil {
		lg.Error("storage error on ListUsers", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Debug("users listed", "count", len(items))

	return items, nil
}

// UserByID возвращает запись по id.
// Ошибки: ErrInvalidID, ErrNotFound, ErrInternal.
func (s *Service) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "service/users/UserByID"

	id = strings.TrimSpace(id)
	lg := log.With(ctx, "op", op, "user_id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidID)
	}

	result, err := s.storage.UserByID(ctx, id)
	if err != nil {
		return nil, mapStorageErr(lg, op, err)
	}

	return result, nil
}

// UpdateUser применяет частичное обновление.
// Ошибки: ErrInvalidID, ErrNotFound, ErrValidation, ErrInternal.
func (s *Service) UpdateUser(ctx context.Context, id string, update models.Update) (*models.User, error) {
	const op = "service/users/UpdateUser"

	id = strings.TrimSpace(id)
	lg := log.With(ctx, "op", op, "user_id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidID)
	}

	if update.Empty() {
		lg.Debug("empty update: only updated_at changes")
	}

	result, err := s.storage.UpdateUser(ctx, id, update)
	if err != nil {
		return nil, mapStorageErr(lg, op, err)
	}

	lg.Info("user updated")

	return result, nil
}

// DeleteUser удаляет запись безвозвратно.
// Ошибки: ErrInvalidID, ErrNotFound, ErrInternal.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	const op = "service/users/DeleteUser"

	id = strings.TrimSpace(id)
	lg := log.With(ctx, "op", op, "user_id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		return fmt.Errorf("%s: %w", op, ErrInvalidID)
	}

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		return mapStorageErr(lg, op, err)
	}

	lg.Info("user deleted")

	return nil
}

// Ready сообщает о готовности хранилища обслуживать запросы.
func (s *Service) Ready(ctx context.Context) error {
	const op = "service/users/Ready"

	if err := s.storage.Ping(ctx); err != nil {
		log.From(ctx).Warn("storage not ready", "op", op, "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return nil
}

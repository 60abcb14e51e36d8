// service содержит бизнес-логику справочника пользователей.
package service

import (
	"errors"

	"github.com/pribylovaa/go-user-directory/internal/storage"
)

var (
	// ErrInvalidArgument — не переданы обязательные поля запроса.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrValidation — запись нарушает схему; детали доступны через errors.As(*models.ValidationError).
	ErrValidation = errors.New("validation failed")
	// ErrInvalidID — идентификатор не разбирается хранилищем.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound — запись отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrInternal — внутренняя ошибка (стораж/БД/контекст/и т.д.).
	ErrInternal = errors.New("internal")
)

// Service — описывает бизнес-логику users-service.
type Service struct {
	storage storage.UsersStorage
}

// New создает новый экземпляр Service.
func New(storage storage.UsersStorage) *Service {
	return &Service{
		storage: storage,
	}
}

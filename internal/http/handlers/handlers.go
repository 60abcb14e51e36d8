package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/go-user-directory/internal/models"
	"github.com/pribylovaa/go-user-directory/internal/service"
)

// maxBodyBytes — предел размера тела запроса.
const maxBodyBytes = 1 << 20

// UsersService — операции сервисного слоя, которые нужны хендлерам.
type UsersService interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, update models.Update) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Handlers агрегирует зависимости.
type Handlers struct {
	Users UsersService
}

func New(users UsersService) *Handlers {
	return &Handlers{Users: users}
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

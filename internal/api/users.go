// api — типизированные записи запросов/ответов REST-поверхности /api/users.
// Используются и сервером (internal/http), и клиентом (internal/client, internal/cache).
package api

import "time"

// User — запись пользователя на проводе.
// TempID зарезервирован за записями, ещё не подтверждёнными хранилищем.
type User struct {
	ID          string    `json:"id,omitempty"`
	TempID      string    `json:"tempId,omitempty"`
	Name        string    `json:"name"`
	Gender      string    `json:"gender"`
	Designation string    `json:"designation"`
	Favorites   []string  `json:"favorites"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Key — ключ записи в клиентском кэше: id, иначе tempId.
func (u User) Key() string {
	if u.ID != "" {
		return u.ID
	}

	return u.TempID
}

// Clone возвращает копию без общего слайса favorites.
func (u User) Clone() User {
	if u.Favorites != nil {
		u.Favorites = append([]string(nil), u.Favorites...)
	}

	return u
}

// CreateUserRequest — тело POST /api/users.
type CreateUserRequest struct {
	Name        string   `json:"name"`
	Gender      string   `json:"gender"`
	Designation string   `json:"designation"`
	Favorites   []string `json:"favorites"`
}

// UpdateUserRequest — тело PUT /api/users/{id}; отсутствующие поля не меняются.
type UpdateUserRequest struct {
	Name        *string   `json:"name,omitempty"`
	Gender      *string   `json:"gender,omitempty"`
	Designation *string   `json:"designation,omitempty"`
	Favorites   *[]string `json:"favorites,omitempty"`
}

// ErrorResponse — тело любого ответа с ошибкой.
// Error несёт подробности (например, список нарушенных полей) и может отсутствовать.
type ErrorResponse struct {
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// MessageResponse — тело успешного ответа без данных (DELETE).
type MessageResponse struct {
	Message string `json:"message"`
}

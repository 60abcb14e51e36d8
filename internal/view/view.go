// view — терминальное представление справочника: список с кэшем,
// форма создания/редактирования и REPL поверх них.
package view

import (
	"context"

	"github.com/pribylovaa/go-user-directory/internal/api"
)

// Тексты состояний и сообщений, которые видит пользователь.
const (
	MsgLoading       = "Loading users..."
	MsgFetchFailed   = "Failed to fetch users from API."
	MsgLoadFailed    = "Failed to load users."
	MsgNoUsers       = "No users found."
	MsgNoMatches     = "No matching users."
	MsgDeleted       = "User deleted successfully"
	MsgConfirmDelete = "Are you sure you want to delete this user?"
)

// UsersAPI — то, что представлению нужно от REST-клиента.
type UsersAPI interface {
	List(ctx context.Context) ([]api.User, error)
	Create(ctx context.Context, req api.CreateUserRequest) (*api.User, error)
	Update(ctx context.Context, id string, req api.UpdateUserRequest) (*api.User, error)
	Delete(ctx context.Context, id string) (string, error)
}

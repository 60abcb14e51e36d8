// errors стандартизирует ответы об ошибках HTTP-слоя users-service.
// На вход он принимает операцию и ошибку сервисного слоя,
// а на выход даёт:
//   - корректный HTTP-статус;
//   - стабильное message для клиента и, где уместно, безопасные детали в error.
//
// Внутренние ошибки наружу не раскрываются: error = "internal error".
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-user-directory/internal/api"
	"github.com/pribylovaa/go-user-directory/internal/models"
	"github.com/pribylovaa/go-user-directory/internal/service"
)

// Сообщения REST-поверхности.
const (
	MsgServerError      = "Server error"
	MsgNotFound         = "User not found"
	MsgInvalidID        = "Invalid user ID"
	MsgRequired         = "Name, gender, and designation are required"
	MsgInvalidBody      = "Invalid request body"
	MsgCreateFailed     = "Error creating user"
	MsgUpdateFailed     = "Error updating user"
	MsgDeleteFailed     = "Error deleting user"
	MsgDeleted          = "User deleted successfully"
	internalErrorDetail = "internal error"
)

// ErrBadRequest — тело запроса не разбирается (битый JSON, неизвестные поля).
var ErrBadRequest = errors.New("bad request")

// Action — операция, для которой формируется ответ об ошибке.
type Action int

const (
	// ActionAny — ошибка вне конкретной операции (паника, служебные маршруты).
	ActionAny Action = iota
	ActionList
	ActionGet
	ActionCreate
	ActionUpdate
	ActionDelete
)

// failedMessage — сообщение для ошибок хранилища/валидации конкретной операции.
func (a Action) failedMessage() string {
	switch a {
	case ActionCreate:
		return MsgCreateFailed
	case ActionUpdate:
		return MsgUpdateFailed
	case ActionDelete:
		return MsgDeleteFailed
	default:
		return MsgServerError
	}
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500, чтобы не маскировать баг;
//   - ErrBadRequest -> 400 "Invalid request body" (детали декодера в error);
//   - ErrInvalidArgument -> 400 "Name, gender, and designation are required";
//   - ErrValidation -> 400 "Error creating user"/"Error updating user", в error список полей;
//   - ErrInvalidID -> 400 "Invalid user ID";
//   - ErrNotFound -> 404 "User not found";
//   - прочее -> 500 с сообщением операции и error = "internal error".
func ToHTTP(action Action, err error) (int, api.ErrorResponse) {
	var verr *models.ValidationError

	switch {
	case err == nil:
		return http.StatusInternalServerError, api.ErrorResponse{Message: action.failedMessage(), Error: internalErrorDetail}
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, api.ErrorResponse{Message: MsgInvalidBody, Error: detail(err)}
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, api.ErrorResponse{Message: MsgRequired}
	case errors.Is(err, service.ErrValidation):
		resp := api.ErrorResponse{Message: action.failedMessage()}
		if errors.As(err, &verr) {
			resp.Error = verr.Error()
		}

		return http.StatusBadRequest, resp
	case errors.Is(err, service.ErrInvalidID):
		return http.StatusBadRequest, api.ErrorResponse{Message: MsgInvalidID}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, api.ErrorResponse{Message: MsgNotFound}
	default:
		return http.StatusInternalServerError, api.ErrorResponse{Message: action.failedMessage(), Error: internalErrorDetail}
	}
}

// detail достаёт текст причины из цепочки ErrBadRequest: <cause>.
func detail(err error) string {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range u.Unwrap() {
			if !errors.Is(e, ErrBadRequest) {
				return e.Error()
			}
		}
	}

	return ""
}

// BadRequest оборачивает ошибку декодирования тела в ErrBadRequest.
func BadRequest(cause error) error {
	if cause == nil {
		return ErrBadRequest
	}

	return errors.Join(ErrBadRequest, cause)
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, action Action, err error) {
	status, resp := ToHTTP(action, err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	WriteJSON(w, status, resp)
}

// WriteJSON — единый ответ JSON с нужным Content-Type.
func WriteJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

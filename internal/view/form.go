package view

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/pribylovaa/go-user-directory/internal/api"
	"github.com/pribylovaa/go-user-directory/internal/models"
)

// Варианты выбора в форме.
var (
	DesignationOptions = []string{"Developer", "Designer", "Manager", "Tester", "DevOps"}
	FavoriteOptions    = []string{"Reading", "Sports", "Music", "Movies", "Travel", "Cooking"}
)

// GenderOptions — значения пола в порядке отображения.
func GenderOptions() []string {
	out := make([]string, 0, len(models.Genders))
	for _, g := range models.Genders {
		out = append(out, g.String())
	}

	return out
}

// FieldErrors — сообщения формы по полям.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, e[f])
	}

	return strings.Join(parts, "; ")
}

// Form — форма создания/редактирования пользователя.
type Form struct {
	Name        string
	Gender      string
	Designation string
	Favorites   []string

	// OnSaved вызывается после успешного сохранения (обычно Refresh списка).
	OnSaved func(ctx context.Context)

	api       UsersAPI
	log       *slog.Logger
	editingID string
}

// NewForm создаёт пустую форму в режиме создания.
func NewForm(users UsersAPI, logger *slog.Logger) *Form {
	if logger == nil {
		logger = slog.Default()
	}

	return &Form{api: users, log: logger}
}

// Editing возвращает id редактируемой записи.
func (f *Form) Editing() (string, bool) {
	return f.editingID, f.editingID != ""
}

// Edit переводит форму в режим редактирования и заполняет поля из записи.
func (f *Form) Edit(u api.User) {
	f.editingID = u.Key()
	f.Name = u.Name
	f.Gender = u.Gender
	f.Designation = u.Designation
	f.Favorites = append([]string(nil), u.Favorites...)
}

// Cancel выходит из режима редактирования и очищает поля.
func (f *Form) Cancel() {
	f.editingID = ""
	f.reset()
}

func (f *Form) reset() {
	f.Name = ""
	f.Gender = ""
	f.Designation = ""
	f.Favorites = nil
}

// ToggleFavorite добавляет или убирает тег.
func (f *Form) ToggleFavorite(tag string) {
	for i, fav := range f.Favorites {
		if fav == tag {
			f.Favorites = append(f.Favorites[:i:i], f.Favorites[i+1:]...)
			return
		}
	}

	f.Favorites = append(f.Favorites, tag)
}

// Validate возвращает сообщения по незаполненным полям или nil.
func (f *Form) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Name is required"
	}

	if f.Gender == "" {
		errs["gender"] = "Gender is required"
	}

	if f.Designation == "" {
		errs["designation"] = "Designation is required"
	}

	if len(f.Favorites) == 0 {
		errs["favorites"] = "At least one favorite must be selected"
	}

	if len(errs) == 0 {
		return nil
	}

	return errs
}

// Submit проверяет форму и отправляет PUT (редактирование) или POST (создание).
// При ошибке валидации возвращает FieldErrors без обращения к API.
// Ошибка API логируется и возвращается, поля формы сохраняются.
func (f *Form) Submit(ctx context.Context) (*api.User, error) {
	if errs := f.Validate(); errs != nil {
		return nil, errs
	}

	var (
		saved *api.User
		err   error
	)

	if id, editing := f.Editing(); editing {
		saved, err = f.api.Update(ctx, id, api.UpdateFromUser(api.User{
			Name:        f.Name,
			Gender:      f.Gender,
			Designation: f.Designation,
			Favorites:   f.Favorites,
		}))
	} else {
		saved, err = f.api.Create(ctx, api.CreateUserRequest{
			Name:        f.Name,
			Gender:      f.Gender,
			Designation: f.Designation,
			Favorites:   append([]string(nil), f.Favorites...),
		})
	}

	if err != nil {
		f.log.Error("Error saving user", slog.String("err", err.Error()))
		return nil, err
	}

	f.Cancel()

	if f.OnSaved != nil {
		f.OnSaved(ctx)
	}

	return saved, nil
}

// Package models содержит доменные сущности справочника пользователей.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"sort"
	"strings"
	"time"
)

// Gender — допустимые значения пола. Сравнение строгое, с учётом регистра.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Genders — полный перечень допустимых значений в порядке отображения.
var Genders = []Gender{GenderMale, GenderFemale}

// Valid сообщает, входит ли значение в перечень.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	default:
		return false
	}
}

func (g Gender) String() string { return string(g) }

// User — внутренняя доменная модель записи справочника.
//   - ID назначает хранилище при вставке и больше не меняет;
//   - Name/Designation хранятся без пробелов по краям;
//   - Favorites — упорядоченный список тегов, минимум один элемент;
//   - CreatedAt/UpdatedAt проставляет хранилище (при вставке равны).
type User struct {
	ID          string
	Name        string
	Gender      Gender
	Designation string
	Favorites   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize обрезает пробелы у текстовых полей (как trim в схеме хранилища).
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Designation = strings.TrimSpace(u.Designation)
}

// Validate проверяет инварианты записи и возвращает *ValidationError со
// всеми нарушенными полями сразу, либо nil.
func (u User) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(u.Name) == "" {
		verr.Add("name", "Path `name` is required.")
	}

	switch {
	case u.Gender == "":
		verr.Add("gender", "Path `gender` is required.")
	case !u.Gender.Valid():
		verr.Add("gender", "`"+string(u.Gender)+"` is not a valid enum value for path `gender`.")
	}

	if strings.TrimSpace(u.Designation) == "" {
		verr.Add("designation", "Path `designation` is required.")
	}

	if len(u.Favorites) == 0 {
		verr.Add("favorites", "At least one favorite must be selected")
	}

	if verr.Empty() {
		return nil
	}

	return verr
}

// Clone возвращает копию без общих слайсов.
func (u User) Clone() User {
	if u.Favorites != nil {
		u.Favorites = append([]string(nil), u.Favorites...)
	}

	return u
}

// Update — частичное обновление: применяются только непустые указатели.
type Update struct {
	Name        *string
	Gender      *Gender
	Designation *string
	Favorites   *[]string
}

// Empty сообщает, что в обновлении нет ни одного поля.
func (upd Update) Empty() bool {
	return upd.Name == nil && upd.Gender == nil && upd.Designation == nil && upd.Favorites == nil
}

// Apply накладывает обновление на копию записи и возвращает результат.
// ID и таймстемпы не трогает.
func (upd Update) Apply(u User) User {
	out := u.Clone()

	if upd.Name != nil {
		out.Name = *upd.Name
	}

	if upd.Gender != nil {
		out.Gender = *upd.Gender
	}

	if upd.Designation != nil {
		out.Designation = *upd.Designation
	}

	if upd.Favorites != nil {
		out.Favorites = append([]string(nil), (*upd.Favorites)...)
	}

	out.Normalize()

	return out
}

// ValidationError — нарушение схемы записи. Fields: поле -> сообщение.
type ValidationError struct {
	Fields map[string]string
}

// Add регистрирует нарушение для поля (первое сообщение по полю сохраняется).
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}

	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Empty сообщает, что нарушений нет.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// FieldNames возвращает имена полей в стабильном порядке.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Error формирует сообщение вида
// "User validation failed: favorites: At least one favorite must be selected, name: Path `name` is required."
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.FieldNames() {
		parts = append(parts, name+": "+e.Fields[name])
	}

	return "User validation failed: " + strings.Join(parts, ", ")
}

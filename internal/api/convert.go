package api

import "github.com/pribylovaa/go-user-directory/internal/models"

func UserFromModel(u models.User) User {
	favorites := u.Favorites
	if favorites == nil {
		favorites = []string{}
	}

	return User{
		ID:          u.ID,
		Name:        u.Name,
		Gender:      string(u.Gender),
		Designation: u.Designation,
		Favorites:   append([]string(nil), favorites...),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func UsersFromModels(items []models.User) []User {
	out := make([]User, 0, len(items))
	for _, u := range items {
		out = append(out, UserFromModel(u))
	}

	return out
}

func (r UpdateUserRequest) ToModel() models.Update {
	upd := models.Update{
		Name:        r.Name,
		Designation: r.Designation,
		Favorites:   r.Favorites,
	}

	if r.Gender != nil {
		g := models.Gender(*r.Gender)
		upd.Gender = &g
	}

	return upd
}

// UpdateFromUser собирает полный PUT-запрос из записи (форма отправляет все поля).
func UpdateFromUser(u User) UpdateUserRequest {
	favorites := append([]string{}, u.Favorites...)

	return UpdateUserRequest{
		Name:        &u.Name,
		Gender:      &u.Gender,
		Designation: &u.Designation,
		Favorites:   &favorites,
	}
}

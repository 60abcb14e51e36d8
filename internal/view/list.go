package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"

	"github.com/pribylovaa/go-user-directory/internal/api"
	"github.com/pribylovaa/go-user-directory/internal/cache"
	"github.com/pribylovaa/go-user-directory/internal/client"
)

// Ширины колонок таблицы в терминальных ячейках.
const (
	nameWidth      = 24
	favoritesWidth = 40
)

// ListView — список пользователей: сначала кэш, затем свежие данные из API.
//
// Каждый Refresh получает номер поколения; результат применяет только
// самый свежий запрос, ответы более старых отбрасываются.
type ListView struct {
	api   UsersAPI
	cache *cache.Cache
	log   *slog.Logger

	mu      sync.Mutex
	gen     uint64
	loading bool
	errMsg  string
	users   []api.User
	search  string
}

// Snapshot — согласованный срез состояния для отрисовки.
type Snapshot struct {
	Loading bool
	Err     string
	Search  string
	Users   []api.User
	// Visible — Users после применения поиска.
	Visible []api.User
}

// NewListView создаёт список. logger=nil — slog.Default().
func NewListView(users UsersAPI, c *cache.Cache, logger *slog.Logger) *ListView {
	if logger == nil {
		logger = slog.Default()
	}

	return &ListView{api: users, cache: c, log: logger, users: []api.User{}}
}

// Refresh синхронно читает кэш и запускает загрузку списка из API.
// Возвращаемый канал закрывается, когда загрузка завершилась (успешно или нет).
func (v *ListView) Refresh(ctx context.Context) <-chan struct{} {
	found, loadErr := v.cache.Load(ctx)

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.loading = true

	switch {
	case loadErr != nil:
		v.log.Warn("cache_load_failed", slog.String("err", loadErr.Error()))
		v.errMsg = MsgLoadFailed
		v.users = []api.User{}
	case found:
		v.users = v.cache.Records()
	}
	v.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.fetch(ctx, gen, found)
	}()

	return done
}

func (v *ListView) fetch(ctx context.Context, gen uint64, cached bool) {
	users, err := v.api.List(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		v.log.Debug("users_fetch_stale", slog.Uint64("gen", gen), slog.Uint64("current", v.gen))
		return
	}

	v.loading = false

	if err != nil {
		v.log.Warn("users_fetch_failed", slog.String("err", err.Error()))
		if !cached && v.errMsg == "" {
			v.errMsg = MsgFetchFailed
		}
		return
	}

	if err := v.cache.Replace(ctx, users); err != nil {
		v.log.Warn("cache_save_failed", slog.String("err", err.Error()))
	}

	v.users = v.cache.Records()
	v.errMsg = ""
}

// SetSearch задаёт строку поиска (пробелы по краям отбрасываются).
func (v *ListView) SetSearch(term string) {
	v.mu.Lock()
	v.search = strings.TrimSpace(term)
	v.mu.Unlock()
}

// Snapshot возвращает копию текущего состояния.
func (v *ListView) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	users := make([]api.User, 0, len(v.users))
	for _, u := range v.users {
		users = append(users, u.Clone())
	}

	return Snapshot{
		Loading: v.loading,
		Err:     v.errMsg,
		Search:  v.search,
		Users:   users,
		Visible: cache.Filter(users, v.search),
	}
}

// Find ищет запись среди отображаемых по id (или tempId).
func (v *ListView) Find(key string) (api.User, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, u := range v.users {
		if u.Key() == key {
			return u.Clone(), true
		}
	}

	return api.User{}, false
}

// Delete спрашивает подтверждение и удаляет запись.
// Ошибка API только логируется: запись в любом случае убирается из
// списка и кэша. Возвращает false, если пользователь отказался.
func (v *ListView) Delete(ctx context.Context, key string, confirm func(prompt string) bool) bool {
	if !confirm(MsgConfirmDelete) {
		return false
	}

	if _, err := v.api.Delete(ctx, key); err != nil {
		if client.IsNotFound(err) {
			v.log.Info("user_already_deleted", slog.String("id", key))
		} else {
			v.log.Error("user_delete_failed", slog.String("id", key), slog.String("err", err.Error()))
		}
	}

	if _, err := v.cache.Remove(ctx, key); err != nil {
		v.log.Warn("cache_save_failed", slog.String("err", err.Error()))
	}

	v.mu.Lock()
	kept := make([]api.User, 0, len(v.users))
	for _, u := range v.users {
		if u.Key() != key {
			kept = append(kept, u)
		}
	}
	v.users = kept
	v.mu.Unlock()

	return true
}

// Render выводит текущее состояние списка.
func (v *ListView) Render(w io.Writer) error {
	snap := v.Snapshot()

	if snap.Loading {
		if _, err := fmt.Fprintln(w, MsgLoading); err != nil {
			return err
		}

		if len(snap.Users) == 0 {
			return nil
		}
	}

	var msg string
	switch {
	case snap.Err != "" && len(snap.Users) == 0:
		msg = snap.Err
	case len(snap.Users) == 0:
		msg = MsgNoUsers
	case len(snap.Visible) == 0 && snap.Search != "":
		msg = MsgNoMatches
	default:
		return writeTable(w, snap.Visible, snap.Search != "")
	}

	_, err := fmt.Fprintln(w, msg)
	return err
}

func writeTable(w io.Writer, users []api.User, searching bool) error {
	title := "User List"
	if searching {
		title += " - Search Results"
	}

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "User ID\tName\tGender\tDesignation\tFavorites")

	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			u.Key(),
			runewidth.Truncate(u.Name, nameWidth, "..."),
			u.Gender,
			u.Designation,
			runewidth.Truncate(strings.Join(u.Favorites, ", "), favoritesWidth, "..."),
		)
	}

	return tw.Flush()
}

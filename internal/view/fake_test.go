package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-user-directory/internal/api"
	"github.com/pribylovaa/go-user-directory/internal/cache"
	"github.com/pribylovaa/go-user-directory/internal/cache/sqlite"
)

var errAPIDown = errors.New("api down")

// fakeAPI — UsersAPI в памяти. listHook, если задан, подменяет List.
// saveFailures первых вызовов Create/Update завершаются errAPIDown.
type fakeAPI struct {
	mu           sync.Mutex
	users        []api.User
	seq          int
	listErr      error
	saveErr      error
	saveFailures int
	delErr       error
	listHook     func(ctx context.Context) ([]api.User, error)

	created []api.CreateUserRequest
	updated map[string]api.UpdateUserRequest
	deleted []string
}

func newFakeAPI(users ...api.User) *fakeAPI {
	return &fakeAPI{users: users, updated: map[string]api.UpdateUserRequest{}}
}

func (f *fakeAPI) List(ctx context.Context) ([]api.User, error) {
	f.mu.Lock()
	hook := f.listHook
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	out := make([]api.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u.Clone())
	}

	return out, nil
}

func (f *fakeAPI) Create(_ context.Context, req api.CreateUserRequest) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, req)
	if err := f.saveError(); err != nil {
		return nil, err
	}

	f.seq++
	u := api.User{
		ID:          fmt.Sprintf("id-%d", f.seq),
		Name:        req.Name,
		Gender:      req.Gender,
		Designation: req.Designation,
		Favorites:   req.Favorites,
	}
	f.users = append([]api.User{u}, f.users...)

	return &u, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, req api.UpdateUserRequest) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updated[id] = req
	if err := f.saveError(); err != nil {
		return nil, err
	}

	for i, u := range f.users {
		if u.ID != id {
			continue
		}

		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Gender != nil {
			u.Gender = *req.Gender
		}
		if req.Designation != nil {
			u.Designation = *req.Designation
		}
		if req.Favorites != nil {
			u.Favorites = *req.Favorites
		}
		f.users[i] = u

		return &u, nil
	}

	return nil, errors.New("not found")
}

// saveError вызывается под f.mu.
func (f *fakeAPI) saveError() error {
	if f.saveFailures > 0 {
		f.saveFailures--
		return errAPIDown
	}

	return f.saveErr
}

func (f *fakeAPI) Delete(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, id)
	if f.delErr != nil {
		return "", f.delErr
	}

	kept := f.users[:0]
	for _, u := range f.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	f.users = kept

	return MsgDeleted, nil
}

// failingPersister — Persister, который не умеет читать.
type failingPersister struct{}

func (failingPersister) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("corrupted")
}
func (failingPersister) Save(context.Context, string, []byte) error { return nil }
func (failingPersister) Close() error                               { return nil }

func newCache(t *testing.T, seed ...api.User) *cache.Cache {
	t.Helper()

	p, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	c := cache.New(p, "")
	if seed != nil {
		require.NoError(t, c.Replace(context.Background(), seed))
	}

	return c
}

func newLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&lockedWriter{w: &buf}, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

type lockedWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}

func mkUser(id, name, designation string, favorites ...string) api.User {
	return api.User{ID: id, Name: name, Gender: "Female", Designation: designation, Favorites: favorites}
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not settle")
	}
}

func userNames(users []api.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Name)
	}

	return out
}

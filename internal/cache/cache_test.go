package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-user-directory/internal/api"
)

// memPersister — Persister в памяти для тестов.
type memPersister struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemPersister() *memPersister { return &memPersister{data: map[string][]byte{}} }

func (m *memPersister) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return nil, false, m.loadErr
	}

	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memPersister) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}

	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memPersister) Close() error { return nil }

func user(id, name, designation string, favorites ...string) api.User {
	return api.User{ID: id, Name: name, Gender: "Female", Designation: designation, Favorites: favorites}
}

func names(users []api.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Name)
	}

	return out
}

func TestCache_ReplaceIsFullOverwrite(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	c := New(p, "")

	require.NoError(t, c.Replace(ctx, []api.User{user("a", "A", "Developer", "x"), user("b", "B", "Designer", "y")}))
	require.NoError(t, c.Replace(ctx, []api.User{user("c", "C", "Manager", "z")}))
	require.Equal(t, []string{"C"}, names(c.Records()))

	// Persisted state follows memory.
	fresh := New(p, DefaultKey)
	found, err := fresh.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"C"}, names(fresh.Records()))
}

func TestCache_LoadMissingAndEmpty(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()

	found, err := New(p, "users").Load(ctx)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, New(p, "users").Replace(ctx, nil))

	c := New(p, "users")
	found, err = c.Load(ctx)
	require.NoError(t, err)
	require.True(t, found, "existing empty list counts as a cache")
	require.Empty(t, c.Records())
	require.NotNil(t, c.Records())
}

func TestCache_LoadErrors(t *testing.T) {
	ctx := context.Background()

	p := newMemPersister()
	p.loadErr = errors.New("disk gone")
	_, err := New(p, "").Load(ctx)
	require.ErrorIs(t, err, p.loadErr)

	p = newMemPersister()
	p.data[DefaultKey] = []byte("{not json")
	_, err = New(p, "").Load(ctx)
	require.Error(t, err)
}

func TestCache_ReplaceKeepsMemoryOnSaveError(t *testing.T) {
	p := newMemPersister()
	p.saveErr = errors.New("read-only")
	c := New(p, "")

	err := c.Replace(context.Background(), []api.User{user("a", "A", "Developer", "x")})
	require.ErrorIs(t, err, p.saveErr)
	require.Equal(t, []string{"A"}, names(c.Records()))
}

func TestCache_Remove(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	c := New(p, "")

	tmp := api.User{TempID: "tmp-1", Name: "Pending", Gender: "Male", Designation: "QA", Favorites: []string{"x"}}
	require.NoError(t, c.Replace(ctx, []api.User{user("a", "A", "Developer", "x"), tmp}))
	saves := p.saves

	removed, err := c.Remove(ctx, "a")
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, []string{"Pending"}, names(c.Records()))

	removed, err = c.Remove(ctx, "tmp-1")
	require.NoError(t, err)
	require.True(t, removed)
	require.Empty(t, c.Records())

	removed, err = c.Remove(ctx, "absent")
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, saves+3, p.saves)
}

func TestCache_RemovePersistsWhenKeyMissing(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	p.data[DefaultKey] = []byte("{not json")

	c := New(p, "")
	_, err := c.Load(ctx)
	require.Error(t, err)

	removed, err := c.Remove(ctx, "a")
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, []byte("[]"), p.data[DefaultKey])

	found, err := New(p, "").Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
}

func TestCache_RemoveReportsSaveError(t *testing.T) {
	p := newMemPersister()
	c := New(p, "")
	require.NoError(t, c.Replace(context.Background(), []api.User{user("a", "A", "Developer", "x")}))

	p.saveErr = errors.New("read-only")
	removed, err := c.Remove(context.Background(), "a")
	require.ErrorIs(t, err, p.saveErr)
	require.True(t, removed)
	require.Empty(t, c.Records())
}

func TestCache_RecordsAreCopies(t *testing.T) {
	c := New(newMemPersister(), "")
	in := []api.User{user("a", "A", "Developer", "x")}
	require.NoError(t, c.Replace(context.Background(), in))

	in[0].Favorites[0] = "mutated"
	out := c.Records()
	out[0].Favorites[0] = "mutated too"

	require.Equal(t, []string{"x"}, c.Records()[0].Favorites)
}

func TestFilter(t *testing.T) {
	users := []api.User{
		user("1", "Alice Dev", "Manager", "Travel"),
		user("2", "Bob", "Designer", "Music"),
		{ID: "3", Name: "Carl", Gender: "Male", Designation: "QA Engineer", Favorites: []string{"Sports", "Devices"}},
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"by name substring", "dev", []string{"Alice Dev", "Carl"}},
		{"case insensitive", "ALICE", []string{"Alice Dev"}},
		{"by designation", "designer", []string{"Bob"}},
		{"by gender", "male", []string{"Alice Dev", "Bob", "Carl"}},
		{"by favorite", "music", []string{"Bob"}},
		{"empty term", "   ", []string{"Alice Dev", "Bob", "Carl"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, names(Filter(users, tt.term)))
		})
	}
}

func TestCache_FilterOnlyAliceDev(t *testing.T) {
	c := New(newMemPersister(), "")
	require.NoError(t, c.Replace(context.Background(), []api.User{
		user("1", "Alice Dev", "Manager", "Travel"),
		user("2", "Bob Ops", "Tester", "Music"),
	}))

	require.Equal(t, []string{"Alice Dev"}, names(c.Filter("dev")))
	require.Equal(t, []string{"Alice Dev"}, names(c.Filter("DEV")))
}

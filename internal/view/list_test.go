package view

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-user-directory/internal/api"
	"github.com/pribylovaa/go-user-directory/internal/cache"
	"github.com/pribylovaa/go-user-directory/internal/client"
)

func TestListView_CacheThenFullReplace(t *testing.T) {
	ctx := context.Background()
	c := newCache(t, mkUser("a", "A", "Developer", "x"), mkUser("b", "B", "Designer", "y"))

	release := make(chan struct{})
	fa := newFakeAPI()
	fa.listHook = func(context.Context) ([]api.User, error) {
		<-release
		return []api.User{mkUser("c", "C", "Manager", "z")}, nil
	}

	lg, _ := newLogger()
	v := NewListView(fa, c, lg)

	done := v.Refresh(ctx)

	snap := v.Snapshot()
	require.True(t, snap.Loading)
	require.Equal(t, []string{"A", "B"}, userNames(snap.Users), "cache is shown before the fetch settles")

	close(release)
	wait(t, done)

	snap = v.Snapshot()
	require.False(t, snap.Loading)
	require.Empty(t, snap.Err)
	require.Equal(t, []string{"C"}, userNames(snap.Users))
	require.Equal(t, []string{"C"}, userNames(c.Records()))
}

func TestListView_FetchFailsWithCache(t *testing.T) {
	c := newCache(t, mkUser("a", "A", "Developer", "x"))
	fa := newFakeAPI()
	fa.listErr = errAPIDown

	lg, logs := newLogger()
	v := NewListView(fa, c, lg)
	wait(t, v.Refresh(context.Background()))

	snap := v.Snapshot()
	require.Empty(t, snap.Err)
	require.Equal(t, []string{"A"}, userNames(snap.Users))
	require.Contains(t, logs.String(), "users_fetch_failed")
}

func TestListView_FetchFailsWithoutCache(t *testing.T) {
	fa := newFakeAPI()
	fa.listErr = errAPIDown

	lg, _ := newLogger()
	v := NewListView(fa, newCache(t), lg)
	wait(t, v.Refresh(context.Background()))

	require.Equal(t, MsgFetchFailed, v.Snapshot().Err)

	var out bytes.Buffer
	require.NoError(t, v.Render(&out))
	require.Equal(t, MsgFetchFailed+"\n", out.String())
}

func TestListView_EmptyCachedListCountsAsCache(t *testing.T) {
	c := newCache(t)
	require.NoError(t, c.Replace(context.Background(), []api.User{}))

	fa := newFakeAPI()
	fa.listErr = errAPIDown

	lg, _ := newLogger()
	v := NewListView(fa, c, lg)
	wait(t, v.Refresh(context.Background()))

	require.Empty(t, v.Snapshot().Err)

	var out bytes.Buffer
	require.NoError(t, v.Render(&out))
	require.Equal(t, MsgNoUsers+"\n", out.String())
}

func TestListView_CacheReadFailure(t *testing.T) {
	ctx := context.Background()

	fa := newFakeAPI()
	fa.listErr = errAPIDown

	lg, _ := newLogger()
	v := NewListView(fa, cache.New(failingPersister{}, ""), lg)
	wait(t, v.Refresh(ctx))
	require.Equal(t, MsgLoadFailed, v.Snapshot().Err)

	// A successful fetch recovers.
	fa.listErr = nil
	fa.users = []api.User{mkUser("a", "A", "Developer", "x")}
	wait(t, v.Refresh(ctx))

	snap := v.Snapshot()
	require.Empty(t, snap.Err)
	require.Equal(t, []string{"A"}, userNames(snap.Users))
}

func TestListView_StaleRefreshIsDropped(t *testing.T) {
	ctx := context.Background()

	entered := make(chan struct{})
	slow := make(chan struct{})
	calls := 0
	fa := newFakeAPI()
	fa.listHook = func(context.Context) ([]api.User, error) {
		fa.mu.Lock()
		calls++
		n := calls
		fa.mu.Unlock()

		if n == 1 {
			close(entered)
			<-slow
			return []api.User{mkUser("old", "Old", "Developer", "x")}, nil
		}

		return []api.User{mkUser("new", "New", "Developer", "x")}, nil
	}

	lg, logs := newLogger()
	c := newCache(t)
	v := NewListView(fa, c, lg)

	first := v.Refresh(ctx)
	<-entered
	second := v.Refresh(ctx)
	wait(t, second)

	close(slow)
	wait(t, first)

	require.Equal(t, []string{"New"}, userNames(v.Snapshot().Users))
	require.Equal(t, []string{"New"}, userNames(c.Records()))
	require.Contains(t, logs.String(), "users_fetch_stale")
}

func TestListView_Render(t *testing.T) {
	ctx := context.Background()
	fa := newFakeAPI(
		mkUser("1", "Alice Dev", "Manager", "Travel"),
		mkUser("2", "Bob", "Designer", "Music", "Movies"),
	)

	lg, _ := newLogger()
	v := NewListView(fa, newCache(t), lg)
	wait(t, v.Refresh(ctx))

	var out bytes.Buffer
	require.NoError(t, v.Render(&out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, "User List", lines[0])
	require.Equal(t, []string{"User", "ID", "Name", "Gender", "Designation", "Favorites"}, strings.Fields(lines[1]))
	require.Len(t, lines, 4)
	require.Contains(t, lines[3], "Music, Movies")

	v.SetSearch("  dev ")
	out.Reset()
	require.NoError(t, v.Render(&out))
	require.Contains(t, out.String(), "User List - Search Results")
	require.Contains(t, out.String(), "Alice Dev")
	require.NotContains(t, out.String(), "Bob")

	v.SetSearch("zzz")
	out.Reset()
	require.NoError(t, v.Render(&out))
	require.Equal(t, MsgNoMatches+"\n", out.String())
}

func TestListView_RenderLoadingWithoutUsers(t *testing.T) {
	release := make(chan struct{})
	fa := newFakeAPI()
	fa.listHook = func(context.Context) ([]api.User, error) {
		<-release
		return []api.User{}, nil
	}

	lg, _ := newLogger()
	v := NewListView(fa, newCache(t), lg)
	done := v.Refresh(context.Background())

	var out bytes.Buffer
	require.NoError(t, v.Render(&out))
	require.Equal(t, MsgLoading+"\n", out.String())

	close(release)
	wait(t, done)

	out.Reset()
	require.NoError(t, v.Render(&out))
	require.Equal(t, MsgNoUsers+"\n", out.String())
}

func TestWriteTable_TruncatesByDisplayWidth(t *testing.T) {
	long := strings.Repeat("東京", 30)

	var out bytes.Buffer
	require.NoError(t, writeTable(&out, []api.User{mkUser("1", "Ann", "Tester", long)}, false))

	require.Contains(t, out.String(), "...")
	require.NotContains(t, out.String(), long)
}

func TestListView_DeleteOptimistic(t *testing.T) {
	ctx := context.Background()
	fa := newFakeAPI(mkUser("1", "A", "Developer", "x"), mkUser("2", "B", "Designer", "y"))

	lg, logs := newLogger()
	c := newCache(t)
	v := NewListView(fa, c, lg)
	wait(t, v.Refresh(ctx))

	// Declined: nothing happens.
	require.False(t, v.Delete(ctx, "1", func(string) bool { return false }))
	require.Empty(t, fa.deleted)
	require.Len(t, v.Snapshot().Users, 2)

	// API fails: the record still leaves the list and the cache.
	fa.delErr = errAPIDown
	var asked string
	require.True(t, v.Delete(ctx, "1", func(p string) bool { asked = p; return true }))
	require.Equal(t, MsgConfirmDelete, asked)
	require.Equal(t, []string{"1"}, fa.deleted)
	require.Equal(t, []string{"B"}, userNames(v.Snapshot().Users))
	require.Equal(t, []string{"B"}, userNames(c.Records()))
	require.Contains(t, logs.String(), "user_delete_failed")

	_, found := v.Find("1")
	require.False(t, found)

	u, found := v.Find("2")
	require.True(t, found)
	require.Equal(t, "B", u.Name)
}

func TestListView_DeleteAlreadyGone(t *testing.T) {
	ctx := context.Background()
	fa := newFakeAPI(mkUser("1", "A", "Developer", "x"))
	fa.delErr = &client.APIError{Status: http.StatusNotFound, Message: "User not found"}

	lg, logs := newLogger()
	v := NewListView(fa, newCache(t), lg)
	wait(t, v.Refresh(ctx))

	require.True(t, v.Delete(ctx, "1", func(string) bool { return true }))
	require.Empty(t, v.Snapshot().Users)
	require.Contains(t, logs.String(), "user_already_deleted")
	require.NotContains(t, logs.String(), "user_delete_failed")
}

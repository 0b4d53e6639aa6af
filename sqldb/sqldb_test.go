package sqldb

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/nexo/core"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserDB(t *testing.T) {
	var users = NewUserDB(openTestDB(t))

	require.NoError(t, users.CreateUser(core.User{Username: "bob", AuthorName: "Bob", PasswordHash: "h1", Role: core.Editor, NeedsPasswordChange: true}))
	require.NoError(t, users.CreateUser(core.User{Username: "alice", AuthorName: "Alice", PasswordHash: "h2", Role: core.Admin}))
	assert.Error(t, users.CreateUser(core.User{Username: "alice", PasswordHash: "h3", Role: core.Editor}))
	assert.Error(t, users.CreateUser(core.User{Username: "eve", PasswordHash: "h4", Role: "owner"}))

	u, err := users.GetUserByName("bob")
	require.NoError(t, err)
	assert.Equal(t, &core.User{Username: "bob", AuthorName: "Bob", PasswordHash: "h1", Role: core.Editor, NeedsPasswordChange: true}, u)

	u, err = users.GetUserByName("nobody")
	assert.NoError(t, err)
	assert.Nil(t, u)

	all, err := users.GetAllUsers(10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Username)
	assert.True(t, all[0].IsAdmin())

	require.NoError(t, users.SetAuthorName("bob", "Robert"))
	require.NoError(t, users.SetPasswordHash("bob", "h5", false))
	assert.ErrorIs(t, users.SetPasswordHash("bob", "", false), core.ErrEmptyPassword)

	u, err = users.GetUserByName("bob")
	require.NoError(t, err)
	assert.Equal(t, "Robert", u.AuthorName)
	assert.Equal(t, "h5", u.PasswordHash)
	assert.False(t, u.NeedsPasswordChange)

	require.NoError(t, users.DeleteUser("bob"))
	assert.ErrorIs(t, users.DeleteUser("bob"), core.ErrNotFound)
}

func TestArticleDB(t *testing.T) {
	var articles = NewArticleDB(openTestDB(t))

	a, err := core.NewArticle("alice", "Nová daň")
	require.NoError(t, err)
	a.Author = "Alice"
	a.Category = "finance"
	a.Text = "text"
	a.RelatedArticles = []string{"a.html", " ", "b.html"}
	a.IsExclusive = true
	a.ImagePath = a.UUID + "/photo.jpg"
	a.Created = time.Unix(1700000000, 0)
	require.NoError(t, articles.CreateArticle(a))

	dup, err := core.NewArticle("bob", "Nová daň")
	require.NoError(t, err)
	assert.Error(t, articles.CreateArticle(dup))

	got, err := articles.GetArticleByFileName("nova-dan.html")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.UUID, got.UUID)
	assert.Equal(t, []string{"a.html", "b.html"}, got.RelatedArticles)
	assert.True(t, got.IsExclusive)
	assert.False(t, got.IsMain)
	assert.True(t, got.HasImage())
	assert.Equal(t, int64(1700000000), got.Created.Unix())

	list, err := articles.GetArticlesByUsername("alice", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err := articles.CountArticles()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, articles.DeleteArticle("nova-dan.html"))
	assert.ErrorIs(t, articles.DeleteArticle("nova-dan.html"), core.ErrNotFound)

	got, err = articles.GetArticleByFileName("nova-dan.html")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

// Package e2e runs the trust harness against the real backend with a sqlite database and a file store.
package e2e

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/wansing/nexo/backend"
	"github.com/wansing/nexo/core"
	"github.com/wansing/nexo/filestore"
	"github.com/wansing/nexo/sqldb"
	"github.com/wansing/nexo/sqldb/sqlite3"
	"github.com/wansing/nexo/trust"
)

type site struct {
	*trust.App
	db *core.CoreDB
}

func newSite(t *testing.T) *site {
	t.Helper()

	var dir = t.TempDir()

	sqlDB, err := sql.Open("sqlite3", filepath.Join(dir, "nexo.sqlite3")+"?_busy_timeout=10000&_journal=WAL")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	var users = sqldb.NewUserDB(sqlDB)
	var articles = sqldb.NewArticleDB(sqlDB)

	var db = &core.CoreDB{
		ArticleDB: articles,
		UserDB:    users,
		Uploads: &filestore.Store{
			CacheDir:   filepath.Join(dir, "cache"),
			UploadDir:  filepath.Join(dir, "uploads"),
			HMACSecret: []byte("hmac-secret"),
		},
		SecureCookie: true,
		TokenSecret:  strings.Repeat("s", core.MinSecretLen),
		SqlDB:        sqlDB,
	}
	require.NoError(t, db.Init(sqlite3.NewSessionStore(sqlDB), ""))

	var app = trust.New(backend.NewHandler(db, ""), users, articles,
		trust.WithLogger(trust.TestLogger(t)),
		trust.WithTokenMinter(func(username string) (string, error) {
			return db.Tokens.Sign(username, time.Hour)
		}),
	)

	return &site{App: app, db: db}
}

// login fails the test if the credential is rejected
func (s *site) login(t *testing.T, username, password string) *trust.Session {
	t.Helper()
	session, err := s.SessionFor(context.Background(), username, password)
	require.NoError(t, err)
	return session
}

func (s *site) setupUser(t *testing.T, username, password string, role core.Role, needsPasswordChange bool) {
	t.Helper()
	_, err := s.DBUser().SetupUser().
		Username(username).
		Password(password).
		Role(role).
		NeedsPasswordChange(needsPasswordChange).
		Create(context.Background())
	require.NoError(t, err)
}

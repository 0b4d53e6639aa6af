// Package sqldb implements core.UserDB and core.ArticleDB on top of database/sql.
// The SQL is kept compatible with SQLite and MySQL.
package sqldb

import (
	"database/sql"
	"fmt"
)

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(fmt.Errorf("preparing %q: %w", query, err))
	}
	return stmt
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

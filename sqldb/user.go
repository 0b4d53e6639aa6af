package sqldb

import (
	"database/sql"
	"errors"

	"github.com/wansing/nexo/core"
)

type UserDB struct {
	*sql.DB
	delete        *sql.Stmt
	getAll        *sql.Stmt
	get           *sql.Stmt
	insert        *sql.Stmt
	setAuthorName *sql.Stmt
	setPassword   *sql.Stmt
}

func NewUserDB(db *sql.DB) *UserDB {

	_, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS usr (
			username varchar(128) NOT NULL PRIMARY KEY,
			author_name varchar(128) NOT NULL,
			password_hash varchar(128) NOT NULL,
			needs_password_change INTEGER NOT NULL DEFAULT 0,
			role varchar(16) NOT NULL DEFAULT 'editor'
		);`)
	if err != nil {
		panic(err)
	}

	var userDB = &UserDB{}
	userDB.DB = db
	userDB.delete = mustPrepare(db, "DELETE FROM usr WHERE username = ?")
	userDB.get = mustPrepare(db, "SELECT username, author_name, password_hash, needs_password_change, role FROM usr WHERE username = ? LIMIT 1")
	userDB.getAll = mustPrepare(db, "SELECT username, author_name, password_hash, needs_password_change, role FROM usr ORDER BY username LIMIT ? OFFSET ?")
	userDB.insert = mustPrepare(db, "INSERT INTO usr (username, author_name, password_hash, needs_password_change, role) VALUES (?, ?, ?, ?, ?)")
	userDB.setAuthorName = mustPrepare(db, "UPDATE usr SET author_name = ? WHERE username = ?")
	userDB.setPassword = mustPrepare(db, "UPDATE usr SET password_hash = ?, needs_password_change = ? WHERE username = ?")
	return userDB
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (*core.User, error) {
	var u = &core.User{}
	var needsChange int
	var role string
	if err := row.Scan(&u.Username, &u.AuthorName, &u.PasswordHash, &needsChange, &role); err != nil {
		return nil, err
	}
	u.NeedsPasswordChange = needsChange != 0
	u.Role = core.Role(role)
	return u, nil
}

func (db *UserDB) CreateUser(u core.User) error {
	if u.Username == "" {
		return errors.New("username is empty")
	}
	if !u.Role.Valid() {
		return errors.New("invalid role")
	}
	_, err := db.insert.Exec(u.Username, u.AuthorName, u.PasswordHash, boolToInt(u.NeedsPasswordChange), string(u.Role))
	return err
}

func (db *UserDB) DeleteUser(username string) error {
	res, err := db.delete.Exec(username)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (db *UserDB) GetAllUsers(limit, offset int) ([]core.User, error) {

	var all = []core.User{}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, *u)
	}

	return all, rows.Err()
}

// GetUserByName returns nil, nil if the user does not exist.
func (db *UserDB) GetUserByName(username string) (*core.User, error) {
	u, err := scanUser(db.get.QueryRow(username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (db *UserDB) SetAuthorName(username, authorName string) error {
	_, err := db.setAuthorName.Exec(authorName, username)
	return err
}

func (db *UserDB) SetPasswordHash(username, hash string, needsPasswordChange bool) error {
	if hash == "" {
		return core.ErrEmptyPassword
	}
	_, err := db.setPassword.Exec(hash, boolToInt(needsPasswordChange), username)
	return err
}

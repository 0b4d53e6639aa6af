package core

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuth          = errors.New("authentication failed")
	ErrEmptyPassword = errors.New("refusing to set empty password")
	ErrShortPassword = errors.New("password too short")
	ErrUserExists    = errors.New("user exists")
)

// MinPasswordLength is the minimum number of bytes of a new password.
const MinPasswordLength = 3

// A Role is one of a closed set of user roles.
type Role string

const (
	Editor Role = "editor"
	Admin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case Editor, Admin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole is case-insensitive. An empty string yields Editor.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return Editor, nil
	case Editor, Admin:
		return r, nil
	default:
		return "", errors.New("unknown role: " + s)
	}
}

type User struct {
	Username            string
	AuthorName          string // shown as byline
	PasswordHash        string // bcrypt
	NeedsPasswordChange bool
	Role                Role
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == Admin
}

// CheckPassword compares the password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

type UserDB interface {
	CreateUser(u User) error
	DeleteUser(username string) error
	GetAllUsers(limit, offset int) ([]User, error)
	GetUserByName(username string) (*User, error) // returns nil, nil if the user does not exist
	SetAuthorName(username, authorName string) error
	SetPasswordHash(username, hash string, needsPasswordChange bool) error
}

// NormalizeUsername trims and lowercases a username.
func NormalizeUsername(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	return name
}

// HashPassword returns a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// InsertUser creates a user with the given password. If authorName is empty, the username is used.
func (c *CoreDB) InsertUser(username, authorName, password string, role Role, needsPasswordChange bool) (*User, error) {

	username = NormalizeUsername(username)
	if username == "" {
		return nil, errors.New("username is empty")
	}

	if !role.Valid() {
		return nil, errors.New("invalid role")
	}

	if existing, err := c.UserDB.GetUserByName(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	authorName = strings.TrimSpace(authorName)
	if authorName == "" {
		authorName = username
	}

	var u = User{
		Username:            username,
		AuthorName:          authorName,
		PasswordHash:        hash,
		NeedsPasswordChange: needsPasswordChange,
		Role:                role,
	}

	if err := c.UserDB.CreateUser(u); err != nil {
		return nil, err
	}
	return &u, nil
}

// LoginUser returns the user if the password matches, else ErrAuth.
func (c *CoreDB) LoginUser(username, password string) (*User, error) {
	u, err := c.UserDB.GetUserByName(NormalizeUsername(username))
	if err != nil {
		return nil, err
	}
	if u == nil || !u.CheckPassword(password) {
		return nil, ErrAuth // don't tell whether the user exists
	}
	return u, nil
}

// ChangePassword sets a new password and clears the NeedsPasswordChange flag.
func (c *CoreDB) ChangePassword(u *User, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrEmptyPassword
	}
	if len(newPassword) < MinPasswordLength {
		return ErrShortPassword
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := c.UserDB.SetPasswordHash(u.Username, hash, false); err != nil {
		return err
	}
	u.PasswordHash = hash
	u.NeedsPasswordChange = false
	return nil
}

// SetAuthorName shadows UserDB.SetAuthorName.
func (c *CoreDB) SetAuthorName(u *User, authorName string) error {
	authorName = strings.TrimSpace(authorName)
	if authorName == "" {
		return errors.New("author name is empty")
	}
	if err := c.UserDB.SetAuthorName(u.Username, authorName); err != nil {
		return err
	}
	u.AuthorName = authorName
	return nil
}

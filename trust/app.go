// Package trust drives the site in-process: it assembles form requests with fluent builders,
// logs in, dispatches requests to the router and verifies responses and stored state.
package trust

import (
	"net/http"

	"github.com/wansing/nexo/core"
)

// UserRepository is the part of the user storage which the harness reads and seeds.
type UserRepository interface {
	CreateUser(u core.User) error
	GetUserByName(username string) (*core.User, error) // returns nil, nil if the user does not exist
	DeleteUser(username string) error
}

// ArticleRepository is the part of the article storage which the harness reads and seeds.
type ArticleRepository interface {
	CreateArticle(a *core.Article) error
	GetArticleByFileName(fileName string) (*core.Article, error) // returns nil, nil if the article does not exist
	DeleteArticle(fileName string) error
}

// TokenMinter returns a bearer token for the given user.
type TokenMinter func(username string) (string, error)

// Routes are the shapes of the flow requests. Path parameters are written like ":username".
type Routes struct {
	Login               Shape
	ChangePassword      Shape
	AccountUpdateAuthor Shape
	Account             Shape
	CreateArticle       Shape
	AdminCreateUser     Shape
	AdminDeleteUser     Shape
	AdminDeleteArticle  Shape
}

// DefaultRoutes are the routes of the nexo backend.
func DefaultRoutes() Routes {
	return Routes{
		Login:               Shape{Method: http.MethodPost, Path: "/login", Encoding: URLEncoded},
		ChangePassword:      Shape{Method: http.MethodPost, Path: "/change-password", Encoding: URLEncoded},
		AccountUpdateAuthor: Shape{Method: http.MethodPost, Path: "/account/update-author", Encoding: URLEncoded},
		Account:             Shape{Method: http.MethodGet, Path: "/account", Encoding: NoBody},
		CreateArticle:       Shape{Method: http.MethodPost, Path: "/create", Encoding: Multipart, Require: []string{"image"}},
		AdminCreateUser:     Shape{Method: http.MethodPost, Path: "/admin_user/create", Encoding: URLEncoded},
		AdminDeleteUser:     Shape{Method: http.MethodPost, Path: "/admin_user/delete/:username", Encoding: NoBody},
		AdminDeleteArticle:  Shape{Method: http.MethodPost, Path: "/admin_article/delete/:file", Encoding: NoBody},
	}
}

// App holds the wiring of the harness. It is immutable, so it can be shared by parallel tests.
// Every factory method returns a new, independent builder.
type App struct {
	dispatcher *Dispatcher
	users      UserRepository
	articles   ArticleRepository
	logger     Logger
	minter     TokenMinter
	routes     Routes
}

type Option func(*App)

func WithLogger(logger Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

func WithTokenMinter(minter TokenMinter) Option {
	return func(a *App) {
		a.minter = minter
	}
}

func WithRoutes(routes Routes) Option {
	return func(a *App) {
		a.routes = routes
	}
}

func New(router http.Handler, users UserRepository, articles ArticleRepository, options ...Option) *App {
	var app = &App{
		dispatcher: NewDispatcher(router),
		users:      users,
		articles:   articles,
		logger:     DefaultLogger(),
		routes:     DefaultRoutes(),
	}
	for _, option := range options {
		option(app)
	}
	return app
}

func (app *App) Dispatcher() *Dispatcher {
	return app.dispatcher
}

// MintSession returns a bearer-token session for the user. It requires WithTokenMinter.
func (app *App) MintSession(username string) (*Session, error) {
	if app.minter == nil {
		return nil, ErrNoTokenMinter
	}
	token, err := app.minter(username)
	if err != nil {
		return nil, &CollaboratorError{Op: "minting token", Err: err}
	}
	return MintedSession(username, token), nil
}

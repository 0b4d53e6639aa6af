package backend

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/nexo/core"
)

var (
	ErrAuth      = errors.New("unauthorized")
	ErrForbidden = errors.New("admin permission required")
)

// access levels of a route
const (
	public = iota
	loggedIn
	adminOnly
)

// we need the CoreDB in the backend
type context struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.CoreDB
}

func middleware(db *core.CoreDB, prefix string, access int, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var request = db.NewRequest(w, req)

		var ctx = &context{
			Prefix:  prefix + "/",
			Request: request,
			db:      db,
		}
		defer ctx.Cleanup()

		if access >= loggedIn && !ctx.LoggedIn() {
			ctx.SeeOther("/login")
			return
		}

		if access >= adminOnly && !ctx.IsAdmin() {
			ctx.WriteStatus(http.StatusForbidden)
			renderError(w, ctx, ErrForbidden)
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			var status = statusOf(err)
			if status >= 500 {
				log.Printf("%s %s: %v", req.Method, req.URL.Path, err)
			}
			// probably no template has been executed, so execute error template
			ctx.WriteStatus(status)
			renderError(w, ctx, err)
		}
	}
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

func renderError(w http.ResponseWriter, ctx *context, err error) {
	errorTmpl.Execute(w, struct {
		*context
		Err error
	}{
		context: ctx,
		Err:     err,
	})
}

// NewHandler returns the router of the site, wrapped into the session middleware.
// The prefix should be without trailing slash.
func NewHandler(db *core.CoreDB, prefix string) http.Handler {

	var router = httprouter.New()
	router.RedirectTrailingSlash = false

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	router.GET("/", middleware(db, prefix, public, root))
	router.GET("/health", health(db))
	GETAndPOST("/login", middleware(db, prefix, public, login))
	if db.Uploads != nil {
		router.Handler(http.MethodGet, "/u/*filepath", http.StripPrefix("/u/", db.Uploads))
	}

	// private
	GETAndPOST("/account", middleware(db, prefix, loggedIn, account))
	router.POST("/account/update-author", middleware(db, prefix, loggedIn, updateAuthor))
	GETAndPOST("/change-password", middleware(db, prefix, loggedIn, changePassword))
	GETAndPOST("/create", middleware(db, prefix, loggedIn, create))
	router.GET("/logout", middleware(db, prefix, loggedIn, logout))

	// admin
	router.GET("/admin_user", middleware(db, prefix, adminOnly, users))
	router.POST("/admin_user/create", middleware(db, prefix, adminOnly, createUser))
	router.POST("/admin_user/delete/:username", middleware(db, prefix, adminOnly, deleteUser))
	router.POST("/admin_article/delete/:file", middleware(db, prefix, adminOnly, deleteArticle))

	// "/:file" would conflict with the static routes above
	var view = middleware(db, prefix, public, viewArticle)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			http.NotFound(w, req)
			return
		}
		var file = strings.TrimPrefix(req.URL.Path, "/")
		if file == "" || strings.Contains(file, "/") || !strings.HasSuffix(file, ".html") {
			http.NotFound(w, req)
			return
		}
		view(w, req, httprouter.Params{{Key: "file", Value: file}})
	})

	return db.SessionManager.LoadAndSave(router)
}

func root(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	if ctx.LoggedIn() {
		ctx.SeeOther("/account")
	} else {
		ctx.SeeOther("/login")
	}
	return nil
}

func tmpl(text string) *template.Template {
	t := template.Must(backendTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var backendTmpl = template.Must(template.New("backend").Funcs(
	template.FuncMap{
		"Categories": func() []string {
			return core.Categories
		},
		"Markdown": core.RenderMarkdown,
	},
).Parse(`<!DOCTYPE html>
<html>
	<head>
		<base href="{{ .Prefix }}">
		<meta charset="utf-8">
		<title>nexo</title>
		<style>
			body {
				font-family: sans-serif;
				max-width: 50rem;
				margin: 1rem auto;
			}
			.alert-danger {
				color: #721c24;
			}
			.alert-success {
				color: #155724;
			}
		</style>
	</head>
	<body>

		{{ if .LoggedIn }}
			<nav>
				<a href="account">{{ .User.AuthorName }}</a>
				<a href="create">New article</a>
				{{ if .IsAdmin }}
					<a href="admin_user">Users</a>
				{{ end }}
				<a href="logout">Logout</a>
			</nav>
		{{ end }}

		<main>
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</main>
	</body>
</html>`))

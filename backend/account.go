package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/nexo/core"
)

var accountTmpl = tmpl(`<h1>Account &raquo;{{ .User.Username }}&laquo;</h1>

	<h2>Author name</h2>

	<form method="post" action="account/update-author">
		<input type="text" name="author_name" value="{{ .User.AuthorName }}" required>
		<button type="submit">Save</button>
	</form>

	<h2>Articles</h2>

	<ul>
		{{ range .Articles }}
			<li><a href="{{ .FileName }}">{{ .Title }}</a> ({{ $.FormatDateTime .Created }})</li>
		{{ else }}
			<li>No articles yet.</li>
		{{ end }}
	</ul>

	<p><a href="change-password">Change password</a></p>`)

type accountData struct {
	*context
}

func (data *accountData) Articles() ([]*core.Article, error) {
	return data.db.GetArticlesByUsername(data.User.Username, 100)
}

func account(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	return accountTmpl.Execute(w, &accountData{
		context: ctx,
	})
}

func updateAuthor(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var authorName = strings.TrimSpace(req.PostFormValue("author_name"))
	if authorName == "" {
		return badRequest(errors.New("author name is empty"))
	}

	if err := ctx.db.SetAuthorName(ctx.User, authorName); err != nil {
		return err
	}

	ctx.Success("author name has been changed to %s", authorName)
	ctx.SeeOther("/account")
	return nil
}

var changePasswordTmpl = tmpl(`<h1>Change password</h1>

	{{ if .User.NeedsPasswordChange }}
		<p>Please choose a new password before you continue.</p>
	{{ end }}

	<form method="post">
		<label>New password</label>
		<input type="password" name="new_password" minlength="{{ .MinLength }}" required>
		<button type="submit">Change password</button>
	</form>`)

type changePasswordData struct {
	*context
	MinLength int
}

func changePassword(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		var newPassword = req.PostFormValue("new_password")

		if len(newPassword) < core.MinPasswordLength {
			return badRequest(core.ErrShortPassword)
		}

		if err := ctx.db.ChangePassword(ctx.User, newPassword); err != nil {
			return err
		}

		ctx.Success("your password has been changed")
		ctx.SeeOther("/account")
		return nil
	}

	return changePasswordTmpl.Execute(w, &changePasswordData{
		context:   ctx,
		MinLength: core.MinPasswordLength,
	})
}

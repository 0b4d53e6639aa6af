package backend

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/nexo/core"
)

var ErrLogin = errors.New("wrong username or password")

var loginTmpl = tmpl(`<h1>Login</h1>
	<form method="post">
		<label>Username</label>
		<input type="text" name="username" value="{{ .Username }}" required autofocus>
		<label>Password</label>
		<input type="password" name="password" required>
		<button type="submit" name="login">Login</button>
	</form>`)

type loginData struct {
	*context
	Username string
}

func login(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var username string

	if req.Method == http.MethodPost {

		username = req.PostFormValue("username")
		password := req.PostFormValue("password")

		err := ctx.Login(username, password)
		switch {
		case err == nil:
			switch {
			case ctx.User.NeedsPasswordChange:
				ctx.SeeOther("/change-password")
			case ctx.IsAdmin():
				ctx.SeeOther("/admin_user")
			default:
				ctx.SeeOther("/account")
			}
			return nil
		case errors.Is(err, core.ErrAuth):
			ctx.Danger(ErrLogin)
			ctx.WriteStatus(http.StatusUnauthorized)
			// keep POST data for username field
		default:
			return err
		}
	}

	return loginTmpl.Execute(w, &loginData{
		context:  ctx,
		Username: username,
	})
}

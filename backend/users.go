package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/nexo/core"
)

var usersTmpl = tmpl(`<h1>Users</h1>

	<table>
		{{ range .Users }}
			<tr>
				<td>{{ .Username }}</td>
				<td>{{ .AuthorName }}</td>
				<td>{{ .Role }}</td>
				<td>
					{{ if ne .Username $.User.Username }}
						<form method="post" action="admin_user/delete/{{ .Username }}">
							<button type="submit">Delete</button>
						</form>
					{{ end }}
				</td>
			</tr>
		{{ end }}
	</table>

	<h2>Create User</h2>

	<form method="post" action="admin_user/create">
		<input type="text" name="username" placeholder="Username" required>
		<input type="text" name="author_name" placeholder="Author name">
		<input type="password" name="password" placeholder="Initial password" required>
		<button type="submit" name="submit_add">Create user</button>
	</form>

	<h2>Delete Article</h2>

	<form method="post" onsubmit="this.action = 'admin_article/delete/' + this.file.value;">
		<input type="text" name="file" placeholder="some-title.html" required>
		<button type="submit">Delete article</button>
	</form>`)

type usersData struct {
	*context
}

func (data *usersData) Users() ([]core.User, error) {
	return data.db.GetAllUsers(100000, 0) // assuming there are not more than 100k users
}

func users(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	return usersTmpl.Execute(w, &usersData{
		context: ctx,
	})
}

func createUser(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var username = strings.TrimSpace(req.PostFormValue("username"))
	if username == "" {
		return badRequest(errors.New("missing username"))
	}

	var password = req.PostFormValue("password")
	if len(password) < core.MinPasswordLength {
		return badRequest(core.ErrShortPassword)
	}

	// new users must change the initial password on first login
	u, err := ctx.db.InsertUser(username, req.PostFormValue("author_name"), password, core.Editor, true)
	if err != nil {
		return err
	}

	ctx.Success("user %s has been created", u.Username)
	ctx.SeeOther("/admin_user")
	return nil
}

func deleteUser(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var username = core.NormalizeUsername(params.ByName("username"))
	if username == ctx.User.Username {
		return badRequest(errors.New("you can't delete yourself"))
	}

	if err := ctx.db.UserDB.DeleteUser(username); err != nil {
		return err
	}

	ctx.Success("user %s has been deleted", username)
	ctx.SeeOther("/admin_user")
	return nil
}

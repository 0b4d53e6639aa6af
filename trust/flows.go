package trust

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// flow is the common part of the request builders.
type flow[S any] struct {
	app       *App
	session   *Session
	anonymous bool // send without credential
	shape     Shape
	data      *Fluent[S]
	subject   string
}

func newFlow[S any](app *App, session *Session, shape Shape, subject string) *flow[S] {
	return &flow[S]{
		app:     app,
		session: session,
		shape:   shape,
		data:    NewFluent[S](),
		subject: subject,
	}
}

// Snapshot returns a copy of the collected data.
func (f *flow[S]) Snapshot() S {
	return f.data.Snapshot()
}

func (f *flow[S]) send(ctx context.Context, shape Shape, fields []FormField) (*ResponseVerifier, error) {

	req, err := Assemble(shape, fields)
	if err != nil {
		return nil, err
	}

	if !f.anonymous {
		if req, err = f.session.Attach(req); err != nil {
			return nil, err
		}
	}

	resp, err := f.app.dispatcher.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	f.app.logger.Printf("%s %s: %d", shape.Method, shape.Path, resp.Status)
	return newResponseVerifier(resp, f.app.logger, f.subject), nil
}

// withParam replaces ":name" in the path of the shape.
func withParam(shape Shape, name string, value Opt[string]) (Shape, error) {
	v, ok := value.Get()
	if !ok || v == "" {
		return shape, &EncodingError{Field: name, Reason: "path parameter is not set"}
	}
	return shape.WithPath(strings.Replace(shape.Path, ":"+name, url.PathEscape(v), 1)), nil
}

// Login

type LoginFlow struct {
	*flow[LoginData]
}

func (app *App) Login() *LoginFlow {
	var f = &LoginFlow{newFlow[LoginData](app, nil, app.routes.Login, "login")}
	f.anonymous = true
	return f
}

func (f *LoginFlow) Username(username string) *LoginFlow {
	f.data.Update(func(d *LoginData) { d.Username = Some(username) })
	return f
}

func (f *LoginFlow) Password(password string) *LoginFlow {
	f.data.Update(func(d *LoginData) { d.Password = Some(password) })
	return f
}

// Send logs in. The result carries the response even if the login failed.
func (f *LoginFlow) Send(ctx context.Context) (*LoginResult, error) {
	var data = f.Snapshot()
	result, err := Authenticate(ctx, f.app.dispatcher, f.shape, data)
	if result != nil {
		result.logger = f.app.logger
		f.app.logger.Printf("login %s: %d", data.Username.OrElse(""), result.Response.Status)
	}
	return result, err
}

// Expect returns a verifier for the login response.
func (r *LoginResult) Expect() *ResponseVerifier {
	var logger = r.logger
	if logger == nil {
		logger = NullLogger()
	}
	return newResponseVerifier(r.Response, logger, "login")
}

// SessionFor logs in and returns the session, failing on every error.
func (app *App) SessionFor(ctx context.Context, username, password string) (*Session, error) {
	result, err := app.Login().Username(username).Password(password).Send(ctx)
	if err != nil {
		return nil, err
	}
	return result.Session, nil
}

// Create article

type CreateArticleFlow struct {
	*flow[ArticleData]
}

func (app *App) CreateArticle(session *Session) *CreateArticleFlow {
	return &CreateArticleFlow{newFlow[ArticleData](app, session, app.routes.CreateArticle, "create article")}
}

func (f *CreateArticleFlow) Title(title string) *CreateArticleFlow {
	f.data.Update(func(d *ArticleData) { d.Title = Some(title) })
	return f
}

func (f *CreateArticleFlow) Author(author string) *CreateArticleFlow {
	f.data.Update(func(d *ArticleData) { d.Author = Some(author) })
	return f
}

func (f *CreateArticleFlow) Category(category string) *CreateArticleFlow {
	f.data.Update(func(d *ArticleData) { d.Category = Some(category) })
	return f
}

func (f *CreateArticleFlow) Text(text string) *CreateArticleFlow {
	f.data.Update(func(d *ArticleData) { d.Text = Some(text) })
	return f
}

func (f *CreateArticleFlow) ShortText(shortText string) *CreateArticleFlow {
	f.data.Update(func(d *ArticleData) { d.ShortText = Some(shortText) })
	return f
}

func (f *CreateArticleFlow) MiniText(miniText string) *CreateArticleFlow {
	f.data.Update(func(d *ArticleData) { d.MiniText = Some(miniText) })
	return f
}

func (f *CreateArticleFlow) RelatedArticles(fileNames ...string) *CreateArticleFlow {
	var related = cloneStrings(fileNames)
	f.data.Update(func(d *ArticleData) { d.RelatedArticles = Some(related) })
	return f
}

func (f *CreateArticleFlow) ImageDesc(imageDesc string) *CreateArticleFlow {
	f.data.Update(func(d *ArticleData) { d.ImageDesc = Some(imageDesc) })
	return f
}

func (f *CreateArticleFlow) IsMain(isMain bool) *CreateArticleFlow {
	f.data.Update(func(d *ArticleData) { d.IsMain = Some(isMain) })
	return f
}

func (f *CreateArticleFlow) IsExclusive(isExclusive bool) *CreateArticleFlow {
	f.data.Update(func(d *ArticleData) { d.IsExclusive = Some(isExclusive) })
	return f
}

func (f *CreateArticleFlow) Image(file File) *CreateArticleFlow {
	file = cloneFile(file)
	f.data.Update(func(d *ArticleData) { d.Image = Some(file) })
	return f
}

func (f *CreateArticleFlow) Audio(file File) *CreateArticleFlow {
	file = cloneFile(file)
	f.data.Update(func(d *ArticleData) { d.Audio = Some(file) })
	return f
}

func articleFields(d ArticleData) []FormField {
	return []FormField{
		Text("title", d.Title),
		Text("author", d.Author),
		Text("category", d.Category),
		Text("text", d.Text),
		Text("short_text", d.ShortText),
		Text("mini_text", d.MiniText),
		List("related_articles", d.RelatedArticles),
		Text("image_desc", d.ImageDesc),
		Bool("is_main", d.IsMain),
		Bool("is_exclusive", d.IsExclusive),
		Binary("image", d.Image),
		Binary("audio", d.Audio),
	}
}

func (f *CreateArticleFlow) Send(ctx context.Context) (*ResponseVerifier, error) {
	return f.send(ctx, f.shape, articleFields(f.Snapshot()))
}

// Change password

type ChangePasswordFlow struct {
	*flow[ChangePasswordData]
}

func (app *App) ChangePassword(session *Session) *ChangePasswordFlow {
	return &ChangePasswordFlow{newFlow[ChangePasswordData](app, session, app.routes.ChangePassword, "change password")}
}

func (f *ChangePasswordFlow) NewPassword(password string) *ChangePasswordFlow {
	f.data.Update(func(d *ChangePasswordData) { d.NewPassword = Some(password) })
	return f
}

func (f *ChangePasswordFlow) Send(ctx context.Context) (*ResponseVerifier, error) {
	var d = f.Snapshot()
	return f.send(ctx, f.shape, []FormField{Text("new_password", d.NewPassword)})
}

// Account

type AccountUpdateAuthorFlow struct {
	*flow[AccountUpdateData]
}

func (app *App) AccountUpdateAuthor(session *Session) *AccountUpdateAuthorFlow {
	return &AccountUpdateAuthorFlow{newFlow[AccountUpdateData](app, session, app.routes.AccountUpdateAuthor, "update author")}
}

func (f *AccountUpdateAuthorFlow) AuthorName(authorName string) *AccountUpdateAuthorFlow {
	f.data.Update(func(d *AccountUpdateData) { d.AuthorName = Some(authorName) })
	return f
}

func (f *AccountUpdateAuthorFlow) Send(ctx context.Context) (*ResponseVerifier, error) {
	var d = f.Snapshot()
	return f.send(ctx, f.shape, []FormField{Text("author_name", d.AuthorName)})
}

type AccountFlow struct {
	*flow[struct{}]
}

func (app *App) Account(session *Session) *AccountFlow {
	return &AccountFlow{newFlow[struct{}](app, session, app.routes.Account, "account")}
}

func (f *AccountFlow) Send(ctx context.Context) (*ResponseVerifier, error) {
	return f.send(ctx, f.shape, nil)
}

// Admin

// AdminFlows creates the admin flows of one session.
type AdminFlows struct {
	app     *App
	session *Session
}

func (app *App) Admin(session *Session) *AdminFlows {
	return &AdminFlows{app: app, session: session}
}

type AdminCreateUserFlow struct {
	*flow[AdminUserData]
}

func (a *AdminFlows) CreateUser() *AdminCreateUserFlow {
	return &AdminCreateUserFlow{newFlow[AdminUserData](a.app, a.session, a.app.routes.AdminCreateUser, "admin create user")}
}

func (f *AdminCreateUserFlow) Username(username string) *AdminCreateUserFlow {
	f.data.Update(func(d *AdminUserData) { d.Username = Some(username) })
	return f
}

func (f *AdminCreateUserFlow) Password(password string) *AdminCreateUserFlow {
	f.data.Update(func(d *AdminUserData) { d.Password = Some(password) })
	return f
}

func (f *AdminCreateUserFlow) AuthorName(authorName string) *AdminCreateUserFlow {
	f.data.Update(func(d *AdminUserData) { d.AuthorName = Some(authorName) })
	return f
}

func (f *AdminCreateUserFlow) Send(ctx context.Context) (*ResponseVerifier, error) {
	var d = f.Snapshot()
	return f.send(ctx, f.shape, []FormField{
		Text("username", d.Username),
		Text("author_name", d.AuthorName),
		Text("password", d.Password),
	})
}

type AdminDeleteUserFlow struct {
	*flow[AdminUserData]
}

func (a *AdminFlows) DeleteUser() *AdminDeleteUserFlow {
	return &AdminDeleteUserFlow{newFlow[AdminUserData](a.app, a.session, a.app.routes.AdminDeleteUser, "admin delete user")}
}

func (f *AdminDeleteUserFlow) Username(username string) *AdminDeleteUserFlow {
	f.data.Update(func(d *AdminUserData) { d.Username = Some(username) })
	return f
}

func (f *AdminDeleteUserFlow) Send(ctx context.Context) (*ResponseVerifier, error) {
	shape, err := withParam(f.shape, "username", f.Snapshot().Username)
	if err != nil {
		return nil, err
	}
	return f.send(ctx, shape, nil)
}

type AdminDeleteArticleFlow struct {
	*flow[AdminArticleData]
}

func (a *AdminFlows) DeleteArticle() *AdminDeleteArticleFlow {
	return &AdminDeleteArticleFlow{newFlow[AdminArticleData](a.app, a.session, a.app.routes.AdminDeleteArticle, "admin delete article")}
}

func (f *AdminDeleteArticleFlow) ArticleFileName(fileName string) *AdminDeleteArticleFlow {
	f.data.Update(func(d *AdminArticleData) { d.ArticleFileName = Some(fileName) })
	return f
}

func (f *AdminDeleteArticleFlow) Send(ctx context.Context) (*ResponseVerifier, error) {
	shape, err := withParam(f.shape, "file", f.Snapshot().ArticleFileName)
	if err != nil {
		return nil, err
	}
	return f.send(ctx, shape, nil)
}

// WebClient sends plain GET requests.
type WebClient struct {
	*flow[struct{}]
}

// Web returns a client without credential.
func (app *App) Web() *WebClient {
	var w = &WebClient{newFlow[struct{}](app, nil, Shape{Method: http.MethodGet, Encoding: NoBody}, "web")}
	w.anonymous = true
	return w
}

// WebAs returns a client which sends the credential of the session.
func (app *App) WebAs(session *Session) *WebClient {
	return &WebClient{newFlow[struct{}](app, session, Shape{Method: http.MethodGet, Encoding: NoBody}, "web")}
}

func (w *WebClient) Get(ctx context.Context, path string) (*ResponseVerifier, error) {
	return w.send(ctx, w.shape.WithPath(path), nil)
}

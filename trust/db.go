package trust

import (
	"context"
	"fmt"

	"github.com/wansing/nexo/core"
)

// UserDB seeds and inspects users through the UserRepository.
type UserDB struct {
	app *App
}

func (app *App) DBUser() *UserDB {
	return &UserDB{app: app}
}

// SetupUserBuilder collects a user which Create stores directly, without HTTP.
type SetupUserBuilder struct {
	app  *App
	data *Fluent[UserData]
}

func (db *UserDB) SetupUser() *SetupUserBuilder {
	return &SetupUserBuilder{app: db.app, data: NewFluent[UserData]()}
}

// SetupAdminUser is SetupUser with the admin role preset.
func (db *UserDB) SetupAdminUser() *SetupUserBuilder {
	return db.SetupUser().Role(core.Admin)
}

func (b *SetupUserBuilder) Username(username string) *SetupUserBuilder {
	b.data.Update(func(d *UserData) { d.Username = Some(username) })
	return b
}

func (b *SetupUserBuilder) Password(password string) *SetupUserBuilder {
	b.data.Update(func(d *UserData) { d.Password = Some(password) })
	return b
}

func (b *SetupUserBuilder) AuthorName(authorName string) *SetupUserBuilder {
	b.data.Update(func(d *UserData) { d.AuthorName = Some(authorName) })
	return b
}

func (b *SetupUserBuilder) Role(role core.Role) *SetupUserBuilder {
	b.data.Update(func(d *UserData) { d.Role = Some(role) })
	return b
}

func (b *SetupUserBuilder) NeedsPasswordChange(needs bool) *SetupUserBuilder {
	b.data.Update(func(d *UserData) { d.NeedsPasswordChange = Some(needs) })
	return b
}

func (b *SetupUserBuilder) Snapshot() UserData {
	return b.data.Snapshot()
}

// Create stores the user. Username and password are required, the author name defaults to the username.
func (b *SetupUserBuilder) Create(ctx context.Context) (*core.User, error) {
	return b.app.createUser(ctx, b.Snapshot())
}

func (app *App) createUser(ctx context.Context, d UserData) (*core.User, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	username, ok := d.Username.Get()
	if !ok || username == "" {
		return nil, &EncodingError{Field: "username", Reason: "required field is not set"}
	}
	password, ok := d.Password.Get()
	if !ok {
		return nil, &EncodingError{Field: "password", Reason: "required field is not set"}
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return nil, &EncodingError{Field: "password", Reason: err.Error()}
	}

	var u = core.User{
		Username:            core.NormalizeUsername(username),
		AuthorName:          d.AuthorName.OrElse(username),
		PasswordHash:        hash,
		NeedsPasswordChange: d.NeedsPasswordChange.OrElse(false),
		Role:                d.Role.OrElse(core.Editor),
	}

	if err := app.users.CreateUser(u); err != nil {
		return nil, &CollaboratorError{Op: "creating user " + u.Username, Err: err}
	}
	app.logger.Printf("seeded %s %s", u.Role, u.Username)
	return &u, nil
}

func (db *UserDB) get(ctx context.Context, username string) (*core.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := db.app.users.GetUserByName(core.NormalizeUsername(username))
	if err != nil {
		return nil, &CollaboratorError{Op: "getting user " + username, Err: err}
	}
	return u, nil
}

// MustSee returns a verifier for the stored user, or ErrNotFound.
func (db *UserDB) MustSee(ctx context.Context, username string) (*UserVerifier, error) {
	u, err := db.get(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return newUserVerifier(u, db.app.logger), nil
}

// MustNotSee returns a verifier which fails if the user exists.
func (db *UserDB) MustNotSee(ctx context.Context, username string) (*AbsenceVerifier, error) {
	u, err := db.get(ctx, username)
	if err != nil {
		return nil, err
	}
	return userAbsence(username, u, db.app.logger), nil
}

// ArticleDB seeds and inspects articles through the ArticleRepository.
type ArticleDB struct {
	app *App
}

func (app *App) DBArticle() *ArticleDB {
	return &ArticleDB{app: app}
}

// SetupArticleBuilder collects an article which Create stores directly, without HTTP and without uploads.
type SetupArticleBuilder struct {
	app      *App
	data     *Fluent[ArticleData]
	username *Fluent[Opt[string]]
}

func (db *ArticleDB) SetupArticle() *SetupArticleBuilder {
	return &SetupArticleBuilder{app: db.app, data: NewFluent[ArticleData](), username: NewFluent[Opt[string]]()}
}

// Owner sets the user who uploaded the article.
func (b *SetupArticleBuilder) Owner(username string) *SetupArticleBuilder {
	b.username.Update(func(o *Opt[string]) { *o = Some(username) })
	return b
}

func (b *SetupArticleBuilder) Title(title string) *SetupArticleBuilder {
	b.data.Update(func(d *ArticleData) { d.Title = Some(title) })
	return b
}

func (b *SetupArticleBuilder) Author(author string) *SetupArticleBuilder {
	b.data.Update(func(d *ArticleData) { d.Author = Some(author) })
	return b
}

func (b *SetupArticleBuilder) Category(category string) *SetupArticleBuilder {
	b.data.Update(func(d *ArticleData) { d.Category = Some(category) })
	return b
}

func (b *SetupArticleBuilder) Text(text string) *SetupArticleBuilder {
	b.data.Update(func(d *ArticleData) { d.Text = Some(text) })
	return b
}

func (b *SetupArticleBuilder) ShortText(shortText string) *SetupArticleBuilder {
	b.data.Update(func(d *ArticleData) { d.ShortText = Some(shortText) })
	return b
}

func (b *SetupArticleBuilder) RelatedArticles(fileNames ...string) *SetupArticleBuilder {
	var related = cloneStrings(fileNames)
	b.data.Update(func(d *ArticleData) { d.RelatedArticles = Some(related) })
	return b
}

func (b *SetupArticleBuilder) ImageDesc(imageDesc string) *SetupArticleBuilder {
	b.data.Update(func(d *ArticleData) { d.ImageDesc = Some(imageDesc) })
	return b
}

func (b *SetupArticleBuilder) IsMain(isMain bool) *SetupArticleBuilder {
	b.data.Update(func(d *ArticleData) { d.IsMain = Some(isMain) })
	return b
}

func (b *SetupArticleBuilder) IsExclusive(isExclusive bool) *SetupArticleBuilder {
	b.data.Update(func(d *ArticleData) { d.IsExclusive = Some(isExclusive) })
	return b
}

// Image only records the file name as image path. The file itself is not stored.
func (b *SetupArticleBuilder) Image(file File) *SetupArticleBuilder {
	file = cloneFile(file)
	b.data.Update(func(d *ArticleData) { d.Image = Some(file) })
	return b
}

func (b *SetupArticleBuilder) Snapshot() ArticleData {
	return b.data.Snapshot()
}

// Create stores the article. Title is required, the category defaults to the first category.
func (b *SetupArticleBuilder) Create(ctx context.Context) (*core.Article, error) {
	return b.app.createArticle(ctx, b.username.Snapshot().OrElse(""), b.Snapshot())
}

func (app *App) createArticle(ctx context.Context, owner string, d ArticleData) (*core.Article, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title, ok := d.Title.Get()
	if !ok {
		return nil, &EncodingError{Field: "title", Reason: "required field is not set"}
	}

	a, err := core.NewArticle(owner, title)
	if err != nil {
		return nil, &EncodingError{Field: "title", Reason: err.Error()}
	}

	a.Author = d.Author.OrElse(owner)
	a.Category = d.Category.OrElse(core.Categories[0])
	a.Text = d.Text.OrElse("")
	a.ShortText = d.ShortText.OrElse("")
	a.MiniText = d.MiniText.OrElse("")
	a.RelatedArticles = cloneStrings(d.RelatedArticles.OrElse(nil))
	a.ImageDesc = d.ImageDesc.OrElse("")
	a.IsMain = d.IsMain.OrElse(false)
	a.IsExclusive = d.IsExclusive.OrElse(false)
	if image, ok := d.Image.Get(); ok {
		a.ImagePath = a.UUID + "/" + image.Name
	}

	if err := app.articles.CreateArticle(a); err != nil {
		return nil, &CollaboratorError{Op: "creating article " + a.FileName, Err: err}
	}
	app.logger.Printf("seeded article %s", a.FileName)
	return a, nil
}

func (db *ArticleDB) get(ctx context.Context, fileName string) (*core.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, err := db.app.articles.GetArticleByFileName(fileName)
	if err != nil {
		return nil, &CollaboratorError{Op: "getting article " + fileName, Err: err}
	}
	return a, nil
}

// MustSee returns a verifier for the stored article, or ErrNotFound.
func (db *ArticleDB) MustSee(ctx context.Context, fileName string) (*ArticleVerifier, error) {
	a, err := db.get(ctx, fileName)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("article %s: %w", fileName, ErrNotFound)
	}
	return newArticleVerifier(a, db.app.logger), nil
}

// MustNotSee returns a verifier which fails if the article exists.
func (db *ArticleDB) MustNotSee(ctx context.Context, fileName string) (*AbsenceVerifier, error) {
	a, err := db.get(ctx, fileName)
	if err != nil {
		return nil, err
	}
	return articleAbsence(fileName, a, db.app.logger), nil
}

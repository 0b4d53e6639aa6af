package backend

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/nexo/core"
	"github.com/wansing/nexo/upload"
)

const maxUploadMemory = 32 << 20

var createFields = map[string]bool{
	"title":            true,
	"author":           true,
	"category":         true,
	"text":             true,
	"text_format":      true,
	"short_text":       true,
	"mini_text":        true,
	"related_articles": true,
	"image_desc":       true,
	"is_main":          true,
	"is_exclusive":     true,
	"image":            true,
	"audio":            true,
}

var createTmpl = tmpl(`<h1>New article</h1>

	<form method="post" enctype="multipart/form-data">
		<label>Title</label>
		<input type="text" name="title" required>
		<label>Author</label>
		<input type="text" name="author" value="{{ .User.AuthorName }}">
		<label>Category</label>
		<select name="category">
			{{ range Categories }}
				<option value="{{ . }}">{{ . }}</option>
			{{ end }}
		</select>
		<label>Text</label>
		<textarea name="text" required></textarea>
		<select name="text_format">
			<option value="markdown" selected>Markdown</option>
			<option value="html">HTML</option>
		</select>
		<label>Short text</label>
		<textarea name="short_text"></textarea>
		<label>Mini text</label>
		<textarea name="mini_text"></textarea>
		<label>Related articles</label>
		<input type="text" name="related_articles" placeholder="some-title.html, other-title.html">
		<label>Image</label>
		<input type="file" name="image" accept="image/*" required>
		<label>Image description</label>
		<input type="text" name="image_desc">
		<label>Audio</label>
		<input type="file" name="audio" accept="audio/*">
		<label><input type="checkbox" name="is_main"> Main article</label>
		<label><input type="checkbox" name="is_exclusive"> Exclusive</label>
		<button type="submit" name="create">Create</button>
	</form>`)

func create(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if req.Method != http.MethodPost {
		return createTmpl.Execute(w, ctx)
	}

	if err := req.ParseMultipartForm(maxUploadMemory); err != nil {
		return badRequest(fmt.Errorf("parsing form: %w", err))
	}

	var form = req.MultipartForm
	for name := range form.Value {
		if !createFields[name] {
			return badRequest(fmt.Errorf("unknown field: %s", name))
		}
	}
	for name := range form.File {
		if !createFields[name] {
			return badRequest(fmt.Errorf("unknown field: %s", name))
		}
	}

	var value = func(name string) string {
		return strings.TrimSpace(req.FormValue(name))
	}

	var title = value("title")
	if title == "" {
		return badRequest(errors.New("missing title"))
	}

	var text = req.FormValue("text")
	if strings.TrimSpace(text) == "" {
		return badRequest(errors.New("missing text"))
	}

	switch value("text_format") {
	case "", "markdown":
	case "html":
		var err error
		if text, err = core.ImportHTML(text); err != nil {
			return badRequest(fmt.Errorf("converting html: %w", err))
		}
	default:
		return badRequest(errors.New("unknown text format"))
	}

	var category = value("category")
	if category == "" {
		return badRequest(errors.New("missing category"))
	}
	if !core.ValidCategory(category) {
		return badRequest(core.ErrUnknownCategory)
	}

	image, ok := firstFile(form, "image")
	if !ok {
		return badRequest(errors.New("missing image"))
	}

	article, err := core.NewArticle(ctx.User.Username, title)
	if err != nil {
		return badRequest(err)
	}

	if existing, err := ctx.db.GetArticleByFileName(article.FileName); err != nil {
		return err
	} else if existing != nil {
		return httpError{http.StatusConflict, fmt.Errorf("article %s exists", article.FileName)}
	}

	article.Author = value("author")
	if article.Author == "" {
		article.Author = ctx.User.AuthorName
	}
	article.Text = text
	article.ShortText = value("short_text")
	article.MiniText = value("mini_text")
	article.Category = category
	article.ImageDesc = value("image_desc")
	article.IsMain = value("is_main") == "on"
	article.IsExclusive = value("is_exclusive") == "on"
	for _, related := range strings.Split(value("related_articles"), ",") {
		if related = strings.TrimSpace(related); related != "" {
			article.RelatedArticles = append(article.RelatedArticles, related)
		}
	}

	var folder = ctx.db.Uploads.Folder(article.UUID)

	article.ImagePath, err = store(folder, image)
	if err != nil {
		return badRequest(fmt.Errorf("storing image: %w", err))
	}

	if audio, ok := firstFile(form, "audio"); ok {
		article.AudioPath, err = store(folder, audio)
		if err != nil {
			_ = folder.DeleteAll()
			return badRequest(fmt.Errorf("storing audio: %w", err))
		}
	}

	if err := ctx.db.CreateArticle(article); err != nil {
		_ = folder.DeleteAll()
		return err
	}

	ctx.Success("article %s has been created", article.FileName)
	ctx.SeeOther("/account")
	return nil
}

func firstFile(form *multipart.Form, name string) (*multipart.FileHeader, bool) {
	if headers := form.File[name]; len(headers) > 0 && headers[0].Size > 0 {
		return headers[0], true
	}
	return nil, false
}

// store returns the path relative to the upload route
func store(folder upload.Folder, header *multipart.FileHeader) (string, error) {
	filename, err := upload.CleanFilename(header.Filename)
	if err != nil {
		return "", err
	}
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	if err := folder.Upload(filename, src); err != nil {
		return "", err
	}
	return folder.Key() + "/" + filename, nil
}

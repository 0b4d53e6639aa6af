package backend

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/nexo/core"
	"github.com/wansing/nexo/upload"
)

var articleTmpl = tmpl(`<article>
		<h1>{{ .Article.Title }}</h1>
		<p class="byline">{{ .Article.Author }}, {{ .FormatDateTime .Article.Created }}</p>
		{{ if .Article.HasImage }}
			<figure>
				<img src="u/{{ .Article.ImagePath }}" {{ with .Srcset }}srcset="{{ . }}"{{ end }} alt="{{ .Article.ImageDesc }}">
				<figcaption>{{ .Article.ImageDesc }}</figcaption>
			</figure>
		{{ end }}
		{{ if .Article.HasAudio }}
			<audio controls src="u/{{ .Article.AudioPath }}"></audio>
		{{ end }}
		{{ Markdown .Article.Text }}
		{{ with .Article.RelatedArticles }}
			<h2>Related</h2>
			<ul>
				{{ range . }}
					<li><a href="{{ . }}">{{ . }}</a></li>
				{{ end }}
			</ul>
		{{ end }}
	</article>`)

type articleData struct {
	*context
	Article *core.Article
}

// Srcset links the resized variants of a JPEG image.
func (data *articleData) Srcset() string {
	if data.db.Uploads == nil || !data.Article.HasImage() {
		return ""
	}
	key, filename := path.Split(data.Article.ImagePath)
	key = strings.Trim(key, "/")
	if lower := strings.ToLower(filename); !strings.HasSuffix(lower, ".jpg") && !strings.HasSuffix(lower, ".jpeg") {
		return ""
	}
	var ts = time.Now().Unix()
	var variants = make([]string, 0, len(upload.ImageWidths))
	for _, w := range upload.ImageWidths {
		variants = append(variants, fmt.Sprintf("u/%s %dw", upload.SignedUrl(data.db.Uploads, key, filename, w, 0, ts), w))
	}
	return strings.Join(variants, ", ")
}

func viewArticle(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	article, err := ctx.db.GetArticleByFileName(params.ByName("file"))
	if err != nil {
		return err
	}
	if article == nil {
		return notFound(errors.New("article not found"))
	}

	return articleTmpl.Execute(w, &articleData{
		context: ctx,
		Article: article,
	})
}

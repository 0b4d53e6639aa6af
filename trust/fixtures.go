package trust

import (
	"context"
	"fmt"
	"io"

	"github.com/wansing/nexo/core"
	"gopkg.in/yaml.v3"
)

// fixtures is the YAML format of Seed.
type fixtures struct {
	Users    []userFixture    `yaml:"users"`
	Articles []articleFixture `yaml:"articles"`
}

type userFixture struct {
	Username            string `yaml:"username"`
	Password            string `yaml:"password"`
	AuthorName          string `yaml:"author_name"`
	Role                string `yaml:"role"`
	NeedsPasswordChange bool   `yaml:"needs_password_change"`
}

type articleFixture struct {
	Owner           string   `yaml:"owner"`
	Title           string   `yaml:"title"`
	Author          string   `yaml:"author"`
	Category        string   `yaml:"category"`
	Text            string   `yaml:"text"`
	ShortText       string   `yaml:"short_text"`
	MiniText        string   `yaml:"mini_text"`
	RelatedArticles []string `yaml:"related_articles"`
	ImageDesc       string   `yaml:"image_desc"`
	Image           string   `yaml:"image"` // file name only
	IsMain          bool     `yaml:"is_main"`
	IsExclusive     bool     `yaml:"is_exclusive"`
}

// Seeded lists what Seed has stored.
type Seeded struct {
	Users    []*core.User
	Articles []*core.Article
}

func optString(s string) Opt[string] {
	if s == "" {
		return Opt[string]{}
	}
	return Some(s)
}

// Seed reads users and articles from YAML and stores them through the repositories, in document order.
// Unknown keys are an error. It stops at the first failure and returns what has been stored so far.
func (app *App) Seed(ctx context.Context, r io.Reader) (*Seeded, error) {

	var f fixtures
	var decoder = yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}

	var seeded = &Seeded{}

	for _, u := range f.Users {
		var data = UserData{
			Username:            Some(u.Username),
			Password:            optString(u.Password),
			AuthorName:          optString(u.AuthorName),
			NeedsPasswordChange: Some(u.NeedsPasswordChange),
		}
		if u.Role != "" {
			role, err := core.ParseRole(u.Role)
			if err != nil {
				return seeded, &EncodingError{Field: "role", Reason: err.Error()}
			}
			data.Role = Some(role)
		}
		created, err := app.createUser(ctx, data)
		if err != nil {
			return seeded, err
		}
		seeded.Users = append(seeded.Users, created)
	}

	for _, a := range f.Articles {
		var data = ArticleData{
			Title:       Some(a.Title),
			Author:      optString(a.Author),
			Category:    optString(a.Category),
			Text:        Some(a.Text),
			ShortText:   Some(a.ShortText),
			MiniText:    Some(a.MiniText),
			ImageDesc:   Some(a.ImageDesc),
			IsMain:      Some(a.IsMain),
			IsExclusive: Some(a.IsExclusive),
		}
		if a.RelatedArticles != nil {
			data.RelatedArticles = Some(a.RelatedArticles)
		}
		if a.Image != "" {
			data.Image = Some(File{Name: a.Image})
		}
		created, err := app.createArticle(ctx, a.Owner, data)
		if err != nil {
			return seeded, err
		}
		seeded.Articles = append(seeded.Articles, created)
	}

	return seeded, nil
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrUnknownCategory = errors.New("unknown category")

// Categories are the sections of the site.
var Categories = []string{"republika", "zahranici", "finance", "technologie", "veda"}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

type Article struct {
	UUID            string
	Username        string // who uploaded it
	Author          string // byline
	Title           string
	Text            string // markdown
	ShortText       string
	MiniText        string
	Category        string
	FileName        string // like "some-title.html", unique
	ImageDesc       string
	ImagePath       string // relative to the upload route, empty if there is no image
	AudioPath       string
	RelatedArticles []string // file names
	IsMain          bool
	IsExclusive     bool
	Created         time.Time
}

func (a *Article) HasImage() bool {
	return a.ImagePath != ""
}

func (a *Article) HasAudio() bool {
	return a.AudioPath != ""
}

type ArticleDB interface {
	CreateArticle(a *Article) error
	DeleteArticle(fileName string) error
	GetArticleByFileName(fileName string) (*Article, error) // returns nil, nil if the article does not exist
	GetArticlesByUsername(username string, limit int) ([]*Article, error)
	CountArticles() (int, error)
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug converts a title to a lowercase ASCII string with dashes, e.g. "Žluťoučký kůň" to "zlutoucky-kun".
func Slug(title string) string {

	plain, _, err := transform.String(stripMarks, title)
	if err != nil {
		plain = title
	}

	var b strings.Builder
	var dash = false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		} else {
			dash = true
		}
	}
	return b.String()
}

// ArticleFileName returns the file name under which an article with the given title is served.
func ArticleFileName(title string) string {
	return Slug(title) + ".html"
}

// NewArticle fills in UUID, FileName, MiniText and Created.
func NewArticle(username, title string) (*Article, error) {
	var slug = Slug(title)
	if slug == "" {
		return nil, errors.New("title yields an empty file name")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating article id: %w", err)
	}
	return &Article{
		UUID:     id.String(),
		Username: username,
		Title:    strings.TrimSpace(title),
		FileName: slug + ".html",
		Created:  time.Now(),
	}, nil
}

// DeleteArticle removes the article and its uploads.
func (c *CoreDB) DeleteArticle(fileName string) error {
	a, err := c.ArticleDB.GetArticleByFileName(fileName)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrNotFound
	}
	if err := c.ArticleDB.DeleteArticle(fileName); err != nil {
		return err
	}
	if c.Uploads != nil {
		return c.Uploads.Folder(a.UUID).DeleteAll()
	}
	return nil
}

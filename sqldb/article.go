package sqldb

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/wansing/nexo/core"
)

const articleColumns = "uuid, username, author, title, body, short_text, mini_text, category, file_name, image_desc, image_path, audio_path, related_articles, is_main, is_exclusive, created"

type ArticleDB struct {
	*sql.DB
	count      *sql.Stmt
	delete     *sql.Stmt
	get        *sql.Stmt
	byUsername *sql.Stmt
	insert     *sql.Stmt
}

func NewArticleDB(db *sql.DB) *ArticleDB {

	_, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS article (
			uuid char(36) NOT NULL PRIMARY KEY,
			username varchar(128) NOT NULL,
			author varchar(128) NOT NULL,
			title varchar(255) NOT NULL,
			body TEXT NOT NULL,
			short_text TEXT NOT NULL,
			mini_text TEXT NOT NULL,
			category varchar(32) NOT NULL,
			file_name varchar(255) NOT NULL,
			image_desc varchar(255) NOT NULL,
			image_path varchar(255) NOT NULL,
			audio_path varchar(255) NOT NULL,
			related_articles TEXT NOT NULL, /* comma-separated file names */
			is_main INTEGER NOT NULL DEFAULT 0,
			is_exclusive INTEGER NOT NULL DEFAULT 0,
			created INTEGER NOT NULL,
			UNIQUE(file_name)
		);`)
	if err != nil {
		panic(err)
	}

	var articleDB = &ArticleDB{}
	articleDB.DB = db
	articleDB.count = mustPrepare(db, "SELECT COUNT(*) FROM article")
	articleDB.delete = mustPrepare(db, "DELETE FROM article WHERE file_name = ?")
	articleDB.get = mustPrepare(db, "SELECT "+articleColumns+" FROM article WHERE file_name = ? LIMIT 1")
	articleDB.byUsername = mustPrepare(db, "SELECT "+articleColumns+" FROM article WHERE username = ? ORDER BY created DESC LIMIT ?")
	articleDB.insert = mustPrepare(db, "INSERT INTO article ("+articleColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	return articleDB
}

func joinRelated(related []string) string {
	var cleaned = make([]string, 0, len(related))
	for _, r := range related {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	return strings.Join(cleaned, ",")
}

func splitRelated(related string) []string {
	if related == "" {
		return nil
	}
	return strings.Split(related, ",")
}

func scanArticle(row scanner) (*core.Article, error) {
	var a = &core.Article{}
	var related string
	var isMain, isExclusive int
	var created int64
	err := row.Scan(&a.UUID, &a.Username, &a.Author, &a.Title, &a.Text, &a.ShortText, &a.MiniText, &a.Category, &a.FileName, &a.ImageDesc, &a.ImagePath, &a.AudioPath, &related, &isMain, &isExclusive, &created)
	if err != nil {
		return nil, err
	}
	a.RelatedArticles = splitRelated(related)
	a.IsMain = isMain != 0
	a.IsExclusive = isExclusive != 0
	a.Created = time.Unix(created, 0)
	return a, nil
}

func (db *ArticleDB) CreateArticle(a *core.Article) error {
	if a.UUID == "" || a.FileName == "" {
		return errors.New("article has no uuid or file name")
	}
	_, err := db.insert.Exec(a.UUID, a.Username, a.Author, a.Title, a.Text, a.ShortText, a.MiniText, a.Category, a.FileName, a.ImageDesc, a.ImagePath, a.AudioPath, joinRelated(a.RelatedArticles), boolToInt(a.IsMain), boolToInt(a.IsExclusive), a.Created.Unix())
	return err
}

func (db *ArticleDB) DeleteArticle(fileName string) error {
	res, err := db.delete.Exec(fileName)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetArticleByFileName returns nil, nil if the article does not exist.
func (db *ArticleDB) GetArticleByFileName(fileName string) (*core.Article, error) {
	a, err := scanArticle(db.get.QueryRow(fileName))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (db *ArticleDB) GetArticlesByUsername(username string, limit int) ([]*core.Article, error) {

	rows, err := db.byUsername.Query(username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles = []*core.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (db *ArticleDB) CountArticles() (int, error) {
	var n int
	err := db.count.QueryRow().Scan(&n)
	return n, err
}

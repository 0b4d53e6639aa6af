package trust

import (
	"fmt"
	"strings"
	"time"

	"github.com/wansing/nexo/core"
)

// stateVerifier compares expectations S, collected through setters, with a stored record R.
type stateVerifier[S any, R any] struct {
	expect  *Fluent[S]
	record  *R
	compare func(S, *R) Report
	logger  Logger
	subject string
}

func (v *stateVerifier[S, R]) Report() Report {
	return v.compare(v.expect.Snapshot(), v.record)
}

// Verify returns a *ValidationError listing every field which differs from its expectation, or nil.
func (v *stateVerifier[S, R]) Verify() error {
	var report = v.Report()
	report.Log(v.logger, v.subject)
	return report.Err()
}

func compareOpt[T comparable](report *Report, field string, expected Opt[T], actual T) {
	if exp, ok := expected.Get(); ok && exp != actual {
		*report = append(*report, Mismatch{Field: field, Expected: fmt.Sprint(exp), Actual: fmt.Sprint(actual)})
	}
}

func compareList(report *Report, field string, expected Opt[[]string], actual []string) {
	exp, ok := expected.Get()
	if !ok {
		return
	}
	var e, a = strings.Join(exp, ","), strings.Join(actual, ",")
	if e != a {
		*report = append(*report, Mismatch{Field: field, Expected: e, Actual: a})
	}
}

// UserVerifier asserts the stored state of a user.
type UserVerifier struct {
	*stateVerifier[UserData, core.User]
}

func newUserVerifier(u *core.User, logger Logger) *UserVerifier {
	return &UserVerifier{&stateVerifier[UserData, core.User]{
		expect:  NewFluent[UserData](),
		record:  u,
		compare: compareUser,
		logger:  logger,
		subject: "user " + u.Username,
	}}
}

func compareUser(exp UserData, u *core.User) Report {
	var report Report
	compareOpt(&report, "username", exp.Username, u.Username)
	compareOpt(&report, "author_name", exp.AuthorName, u.AuthorName)
	compareOpt(&report, "role", exp.Role, u.Role)
	compareOpt(&report, "needs_password_change", exp.NeedsPasswordChange, u.NeedsPasswordChange)
	if password, ok := exp.Password.Get(); ok && !u.CheckPassword(password) {
		report = append(report, Mismatch{Field: "password", Expected: password, Actual: "<hash does not match>"})
	}
	return report
}

func (v *UserVerifier) Username(username string) *UserVerifier {
	v.expect.Update(func(d *UserData) { d.Username = Some(username) })
	return v
}

func (v *UserVerifier) AuthorName(authorName string) *UserVerifier {
	v.expect.Update(func(d *UserData) { d.AuthorName = Some(authorName) })
	return v
}

func (v *UserVerifier) Role(role core.Role) *UserVerifier {
	v.expect.Update(func(d *UserData) { d.Role = Some(role) })
	return v
}

func (v *UserVerifier) NeedsPasswordChange(needs bool) *UserVerifier {
	v.expect.Update(func(d *UserData) { d.NeedsPasswordChange = Some(needs) })
	return v
}

// Password checks the plaintext password against the stored hash.
func (v *UserVerifier) Password(password string) *UserVerifier {
	v.expect.Update(func(d *UserData) { d.Password = Some(password) })
	return v
}

// ArticleState holds expectations on a stored article.
type ArticleState struct {
	Title           Opt[string]
	Author          Opt[string]
	Text            Opt[string]
	ShortText       Opt[string]
	Category        Opt[string]
	IsMain          Opt[bool]
	IsExclusive     Opt[bool]
	RelatedArticles Opt[[]string]
	ImageDesc       Opt[string]
	HasImage        Opt[bool]
}

// ArticleVerifier asserts the stored state of an article.
type ArticleVerifier struct {
	*stateVerifier[ArticleState, core.Article]
}

func newArticleVerifier(a *core.Article, logger Logger) *ArticleVerifier {
	return &ArticleVerifier{&stateVerifier[ArticleState, core.Article]{
		expect:  NewFluent[ArticleState](),
		record:  a,
		compare: compareArticle,
		logger:  logger,
		subject: "article " + a.FileName,
	}}
}

func compareArticle(exp ArticleState, a *core.Article) Report {
	var report Report
	compareOpt(&report, "title", exp.Title, a.Title)
	compareOpt(&report, "author", exp.Author, a.Author)
	compareOpt(&report, "text", exp.Text, a.Text)
	compareOpt(&report, "short_text", exp.ShortText, a.ShortText)
	compareOpt(&report, "category", exp.Category, a.Category)
	compareOpt(&report, "is_main", exp.IsMain, a.IsMain)
	compareOpt(&report, "is_exclusive", exp.IsExclusive, a.IsExclusive)
	compareList(&report, "related_articles", exp.RelatedArticles, a.RelatedArticles)
	compareOpt(&report, "image_desc", exp.ImageDesc, a.ImageDesc)
	compareOpt(&report, "has_image", exp.HasImage, a.HasImage())
	return report
}

func (v *ArticleVerifier) Title(title string) *ArticleVerifier {
	v.expect.Update(func(s *ArticleState) { s.Title = Some(title) })
	return v
}

func (v *ArticleVerifier) Author(author string) *ArticleVerifier {
	v.expect.Update(func(s *ArticleState) { s.Author = Some(author) })
	return v
}

func (v *ArticleVerifier) Text(text string) *ArticleVerifier {
	v.expect.Update(func(s *ArticleState) { s.Text = Some(text) })
	return v
}

func (v *ArticleVerifier) ShortText(shortText string) *ArticleVerifier {
	v.expect.Update(func(s *ArticleState) { s.ShortText = Some(shortText) })
	return v
}

func (v *ArticleVerifier) Category(category string) *ArticleVerifier {
	v.expect.Update(func(s *ArticleState) { s.Category = Some(category) })
	return v
}

func (v *ArticleVerifier) IsMain(isMain bool) *ArticleVerifier {
	v.expect.Update(func(s *ArticleState) { s.IsMain = Some(isMain) })
	return v
}

func (v *ArticleVerifier) IsExclusive(isExclusive bool) *ArticleVerifier {
	v.expect.Update(func(s *ArticleState) { s.IsExclusive = Some(isExclusive) })
	return v
}

func (v *ArticleVerifier) RelatedArticles(fileNames ...string) *ArticleVerifier {
	var related = cloneStrings(fileNames)
	v.expect.Update(func(s *ArticleState) { s.RelatedArticles = Some(related) })
	return v
}

func (v *ArticleVerifier) ImageDesc(imageDesc string) *ArticleVerifier {
	v.expect.Update(func(s *ArticleState) { s.ImageDesc = Some(imageDesc) })
	return v
}

func (v *ArticleVerifier) HasImage(hasImage bool) *ArticleVerifier {
	v.expect.Update(func(s *ArticleState) { s.HasImage = Some(hasImage) })
	return v
}

// AbsenceVerifier asserts that a record does not exist. If it does, Verify reports one mismatch per field of the record.
type AbsenceVerifier struct {
	subject string
	fields  []Mismatch // empty if the record is absent
	logger  Logger
}

const absent = "<absent>"

func userAbsence(username string, u *core.User, logger Logger) *AbsenceVerifier {
	var v = &AbsenceVerifier{subject: "no user " + username, logger: logger}
	if u != nil {
		v.fields = []Mismatch{
			{Field: "username", Expected: absent, Actual: u.Username},
			{Field: "author_name", Expected: absent, Actual: u.AuthorName},
			{Field: "role", Expected: absent, Actual: u.Role.String()},
			{Field: "needs_password_change", Expected: absent, Actual: fmt.Sprint(u.NeedsPasswordChange)},
			{Field: "password_hash", Expected: absent, Actual: u.PasswordHash},
		}
	}
	return v
}

func articleAbsence(fileName string, a *core.Article, logger Logger) *AbsenceVerifier {
	var v = &AbsenceVerifier{subject: "no article " + fileName, logger: logger}
	if a != nil {
		v.fields = []Mismatch{
			{Field: "uuid", Expected: absent, Actual: a.UUID},
			{Field: "file_name", Expected: absent, Actual: a.FileName},
			{Field: "username", Expected: absent, Actual: a.Username},
			{Field: "author", Expected: absent, Actual: a.Author},
			{Field: "title", Expected: absent, Actual: a.Title},
			{Field: "text", Expected: absent, Actual: a.Text},
			{Field: "short_text", Expected: absent, Actual: a.ShortText},
			{Field: "mini_text", Expected: absent, Actual: a.MiniText},
			{Field: "category", Expected: absent, Actual: a.Category},
			{Field: "image_desc", Expected: absent, Actual: a.ImageDesc},
			{Field: "image_path", Expected: absent, Actual: a.ImagePath},
			{Field: "audio_path", Expected: absent, Actual: a.AudioPath},
			{Field: "related_articles", Expected: absent, Actual: strings.Join(a.RelatedArticles, ",")},
			{Field: "is_main", Expected: absent, Actual: fmt.Sprint(a.IsMain)},
			{Field: "is_exclusive", Expected: absent, Actual: fmt.Sprint(a.IsExclusive)},
			{Field: "created", Expected: absent, Actual: a.Created.UTC().Format(time.RFC3339)},
		}
	}
	return v
}

func (v *AbsenceVerifier) Report() Report {
	return append(Report(nil), v.fields...)
}

func (v *AbsenceVerifier) Verify() error {
	var report = v.Report()
	report.Log(v.logger, v.subject)
	return report.Err()
}

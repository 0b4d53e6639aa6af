package trust

import "github.com/wansing/nexo/core"

// File is the content of a binary form field.
type File struct {
	Name        string
	ContentType string // defaults to application/octet-stream
	Data        []byte
}

type LoginData struct {
	Username Opt[string]
	Password Opt[string]
}

type ArticleData struct {
	Title           Opt[string]
	Author          Opt[string]
	Category        Opt[string]
	Text            Opt[string]
	ShortText       Opt[string]
	MiniText        Opt[string]
	RelatedArticles Opt[[]string]
	ImageDesc       Opt[string]
	IsMain          Opt[bool]
	IsExclusive     Opt[bool]
	Image           Opt[File]
	Audio           Opt[File]
}

type AccountUpdateData struct {
	AuthorName Opt[string]
}

type ChangePasswordData struct {
	NewPassword Opt[string]
}

type AdminUserData struct {
	Username   Opt[string]
	Password   Opt[string]
	AuthorName Opt[string]
}

type AdminArticleData struct {
	ArticleFileName Opt[string]
}

// UserData describes a user for seeding and for expectations.
type UserData struct {
	Username            Opt[string]
	Password            Opt[string]
	AuthorName          Opt[string]
	Role                Opt[core.Role]
	NeedsPasswordChange Opt[bool]
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func cloneFile(f File) File {
	f.Data = append([]byte(nil), f.Data...)
	return f
}

package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	for title, slug := range map[string]string{
		"Žluťoučký kůň":      "zlutoucky-kun",
		"  Nová daň!  ":      "nova-dan",
		"COVID-19: co dál?":  "covid-19-co-dal",
		"a -- b":             "a-b",
		"!!!":                "",
		"Příliš 2 velké psy": "prilis-2-velke-psy",
	} {
		assert.Equal(t, slug, Slug(title), title)
	}
}

func TestNewArticle(t *testing.T) {
	a, err := NewArticle("alice", " Nová daň ")
	require.NoError(t, err)
	assert.Equal(t, "nova-dan.html", a.FileName)
	assert.Equal(t, "Nová daň", a.Title)
	assert.Equal(t, "alice", a.Username)
	assert.Len(t, a.UUID, 36)
	assert.False(t, a.HasImage())

	_, err = NewArticle("alice", "???")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, Editor, role)

	role, err = ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, Admin, role)

	_, err = ParseRole("owner")
	assert.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	var u = &User{Username: "alice", PasswordHash: hash}
	assert.True(t, u.CheckPassword("secret"))
	assert.False(t, u.CheckPassword("Secret"))

	var nobody *User
	assert.False(t, nobody.CheckPassword("secret"))
	assert.False(t, nobody.IsAdmin())

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestTokenSigner(t *testing.T) {
	var signer = &TokenSigner{Secret: []byte(strings.Repeat("k", MinSecretLen)), Issuer: "nexo"}

	token, err := signer.Sign("alice", time.Hour)
	require.NoError(t, err)

	username, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	var other = &TokenSigner{Secret: []byte(strings.Repeat("x", MinSecretLen))}
	_, err = other.Verify(token)
	assert.Error(t, err)

	expired, err := signer.Sign("alice", -time.Minute)
	require.NoError(t, err)
	_, err = signer.Verify(expired)
	assert.Error(t, err)

	var weak = &TokenSigner{Secret: []byte("short")}
	_, err = weak.Sign("alice", time.Hour)
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestRenderMarkdown(t *testing.T) {
	var html = string(RenderMarkdown("\t# Titulek\n\nText s **důrazem**.\n\n<script>alert(1)</script>\n"))
	assert.Contains(t, html, "<h1>Titulek</h1>")
	assert.Contains(t, html, "<strong>důrazem</strong>")
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "alert(1)")
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("veda"))
	assert.False(t, ValidCategory("sport"))
	assert.False(t, ValidCategory(""))
}

func TestImportHTML(t *testing.T) {
	md, err := ImportHTML(`<h2>Volby</h2><p>Výsledky <strong>sčítání</strong> a <a href="https://example.org">zdroj</a>.</p>`)
	require.NoError(t, err)
	assert.Contains(t, md, "## Volby")
	assert.Contains(t, md, "**sčítání**")
	assert.Contains(t, md, "[zdroj](https://example.org)")
}

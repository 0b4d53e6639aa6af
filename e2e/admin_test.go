package e2e

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/nexo/core"
	"github.com/wansing/nexo/trust"
)

func TestAdminCreateAndDeleteUser(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "root", "toor", core.Admin, false)
	var admin = s.login(t, "root", "toor")

	v, err := s.Admin(admin).CreateUser().Username("bob").AuthorName("Bob B.").Password("bobpass").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/admin_user").Verify())

	user, err := s.DBUser().MustSee(ctx, "bob")
	require.NoError(t, err)
	assert.NoError(t, user.AuthorName("Bob B.").Role(core.Editor).NeedsPasswordChange(true).Password("bobpass").Verify())

	// bob still exists, so every field is reported
	absence, err := s.DBUser().MustNotSee(ctx, "bob")
	require.NoError(t, err)
	var validationErr *trust.ValidationError
	require.ErrorAs(t, absence.Verify(), &validationErr)
	assert.Len(t, validationErr.Report, 5)

	v, err = s.Admin(admin).CreateUser().Username("bob").Password("other").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(409).Verify())

	v, err = s.Admin(admin).DeleteUser().Username("bob").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/admin_user").Verify())

	absence, err = s.DBUser().MustNotSee(ctx, "bob")
	require.NoError(t, err)
	assert.NoError(t, absence.Verify())

	v, err = s.Admin(admin).DeleteUser().Username("bob").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(404).Verify())

	v, err = s.Admin(admin).DeleteUser().Username("root").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(400).Verify())
}

func TestAdminDeleteArticle(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "root", "toor", core.Admin, false)
	s.setupUser(t, "alice", "secret", core.Editor, false)
	var admin = s.login(t, "root", "toor")
	var alice = s.login(t, "alice", "secret")

	v, err := s.CreateArticle(alice).Title("Volby").Category("republika").Text("Výsledky.").Image(jpeg).Send(ctx)
	require.NoError(t, err)
	require.NoError(t, v.Status(303).Verify())

	stored, err := s.db.GetArticleByFileName("volby.html")
	require.NoError(t, err)
	require.NotNil(t, stored)

	v, err = s.Admin(admin).DeleteArticle().ArticleFileName("volby.html").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/admin_user").Verify())

	absence, err := s.DBArticle().MustNotSee(ctx, "volby.html")
	require.NoError(t, err)
	assert.NoError(t, absence.Verify())

	has, err := s.db.Uploads.Folder(stored.UUID).HasFile("photo.jpg")
	require.NoError(t, err)
	assert.False(t, has)

	v, err = s.Admin(admin).DeleteArticle().ArticleFileName("volby.html").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(404).Verify())
}

func TestAdminForbidden(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "root", "toor", core.Admin, false)
	s.setupUser(t, "alice", "secret", core.Editor, false)
	var alice = s.login(t, "alice", "secret")

	v, err := s.Admin(alice).DeleteUser().Username("root").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(403).BodyContains("admin permission required").Verify())

	user, err := s.DBUser().MustSee(ctx, "root")
	require.NoError(t, err)
	assert.NoError(t, user.Role(core.Admin).Verify())

	v, err = s.WebAs(alice).Get(ctx, "/admin_user")
	require.NoError(t, err)
	assert.NoError(t, v.Status(403).Verify())
}

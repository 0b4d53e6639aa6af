package e2e

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/nexo/core"
	"github.com/wansing/nexo/trust"
)

func TestLoginMustChangePassword(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "alice", "secret", core.Editor, true)

	result, err := s.Login().Username("alice").Password("secret").Send(ctx)
	require.NoError(t, err)
	assert.False(t, result.Session.IsEmpty())
	assert.Equal(t, "alice", result.Session.Username())

	assert.NoError(t, result.Expect().
		Status(303).
		Location("/change-password").
		Cookie("nexo_session", "HttpOnly", "Secure", "SameSite=Strict").
		Verify())

	user, err := s.DBUser().MustSee(ctx, "alice")
	require.NoError(t, err)
	assert.NoError(t, user.NeedsPasswordChange(true).Role(core.Editor).Verify())
}

func TestLoginRedirects(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "root", "toor", core.Admin, false)
	s.setupUser(t, "bob", "bobpass", core.Editor, false)

	result, err := s.Login().Username("root").Password("toor").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, result.Expect().Status(303).Location("/admin_user").Verify())

	result, err = s.Login().Username("Bob").Password("bobpass").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, result.Expect().Status(303).Location("/account").Verify())
}

func TestLoginRejected(t *testing.T) {
	var s = newSite(t)
	s.setupUser(t, "alice", "secret", core.Editor, false)

	result, err := s.Login().Username("alice").Password("wrong").Send(context.Background())

	var authErr *trust.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 401, authErr.Status)
	assert.True(t, result.Session.IsEmpty())
	assert.NoError(t, result.Expect().Status(401).BodyContains("wrong username or password").Verify())
}

func TestUnauthenticated(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)

	v, err := s.Web().Get(ctx, "/account")
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/login").Verify())

	_, err = s.Account(nil).Send(ctx)
	assert.ErrorIs(t, err, trust.ErrUnauthenticated)
}

func TestBearerSession(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "alice", "secret", core.Editor, false)

	session, err := s.MintSession("alice")
	require.NoError(t, err)

	v, err := s.Account(session).Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(200).BodyContains("Account &raquo;alice&laquo;").Verify())

	v, err = s.Account(trust.MintedSession("alice", "forged")).Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/login").Verify())
}

func TestLogout(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "alice", "secret", core.Editor, false)
	var session = s.login(t, "alice", "secret")

	v, err := s.WebAs(session).Get(ctx, "/logout")
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/login").Verify())

	v, err = s.WebAs(session).Get(ctx, "/account")
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/login").Verify())
}

package e2e

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/nexo/core"
)

func TestChangePassword(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "alice", "secret", core.Editor, true)
	var session = s.login(t, "alice", "secret")

	v, err := s.ChangePassword(session).NewPassword("x").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(400).Verify())

	v, err = s.ChangePassword(session).NewPassword("new-secret").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/account").Verify())

	user, err := s.DBUser().MustSee(ctx, "alice")
	require.NoError(t, err)
	assert.NoError(t, user.NeedsPasswordChange(false).Password("new-secret").Verify())

	result, err := s.Login().Username("alice").Password("new-secret").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, result.Expect().Status(303).Location("/account").Verify())
}

func TestUpdateAuthor(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "alice", "secret", core.Editor, false)
	var session = s.login(t, "alice", "secret")

	v, err := s.AccountUpdateAuthor(session).AuthorName("Alice Nováková").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/account").Verify())

	user, err := s.DBUser().MustSee(ctx, "alice")
	require.NoError(t, err)
	assert.NoError(t, user.AuthorName("Alice Nováková").Verify())

	v, err = s.Account(session).Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(200).
		FormValue("author_name", "Alice Nováková").
		BodyContains("author name has been changed").
		Verify())

	v, err = s.AccountUpdateAuthor(session).AuthorName("  ").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(400).Verify())
}

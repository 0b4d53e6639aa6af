package e2e

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/nexo/core"
)

func TestInterleavedEditorAndAdmin(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "root", "toor", core.Admin, false)
	s.setupUser(t, "alice", "secret", core.Editor, false)

	var alice = s.login(t, "alice", "secret")
	var admin = s.login(t, "root", "toor")

	v, err := s.AccountUpdateAuthor(alice).AuthorName("Alice A.").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Verify())

	v, err = s.Admin(admin).CreateUser().Username("bob").Password("bobpass").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(303).Location("/admin_user").Verify())

	v, err = s.Admin(alice).CreateUser().Username("eve").Password("evepass").Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(403).Verify())

	v, err = s.Account(alice).Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(200).BodyContains("Account &raquo;alice&laquo;").FormValue("author_name", "Alice A.").Verify())

	v, err = s.Account(admin).Send(ctx)
	require.NoError(t, err)
	assert.NoError(t, v.Status(200).BodyContains("Account &raquo;root&laquo;").FormValue("author_name", "root").Verify())

	absence, err := s.DBUser().MustNotSee(ctx, "eve")
	require.NoError(t, err)
	assert.NoError(t, absence.Verify())
}

func TestParallelRequestsOfOneSession(t *testing.T) {
	var ctx = context.Background()
	var s = newSite(t)
	s.setupUser(t, "root", "toor", core.Admin, false)
	s.setupUser(t, "alice", "secret", core.Editor, false)

	var alice = s.login(t, "alice", "secret")
	var admin = s.login(t, "root", "toor")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			v, err := s.WebAs(alice).Get(ctx, "/account")
			if assert.NoError(t, err) {
				assert.NoError(t, v.Status(200).BodyContains("Account &raquo;alice&laquo;").Verify())
			}
		}()
		go func() {
			defer wg.Done()
			v, err := s.WebAs(admin).Get(ctx, "/admin_user")
			if assert.NoError(t, err) {
				assert.NoError(t, v.Status(200).BodyContains("<td>alice</td>").Verify())
			}
		}()
	}
	wg.Wait()
}

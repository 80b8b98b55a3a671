package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/testutil"
)

// These tests need a real MySQL (TEST_DATABASE_DSN) so that transactions run concurrently.

func TestMySQL_Toggle_ConcurrentCounter(t *testing.T) {
	db := testutil.SetupTestDBWithMySQL(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewInteractionRepository(db, NewContentRegistry())
	ctx := context.Background()
	author := testutil.TestUser(t, db)
	resume := testutil.TestResume(t, db, author.ID)

	const n, m = 20, 8
	users := make([]*model.User, n)
	for i := range users {
		users[i] = testutil.TestUser(t, db)
	}

	run := func(targets []*model.User, on bool) {
		var wg sync.WaitGroup
		errs := make(chan error, len(targets))
		for _, u := range targets {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := repo.Toggle(ctx, model.KindLike, id, resume.ID, model.CategoryResume, on)
				errs <- err
			}(u.ID)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
	}

	run(users, true)
	run(users[:m], false)

	var got model.Resume
	require.NoError(t, db.First(&got, resume.ID).Error)
	assert.Equal(t, n-m, got.LikeCount)

	drifts, err := repo.ReconcileCounters(ctx, model.KindLike, model.CategoryResume, true)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestMySQL_Toggle_SameUserOnlyOnce(t *testing.T) {
	db := testutil.SetupTestDBWithMySQL(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewInteractionRepository(db, NewContentRegistry())
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	blog := testutil.TestBlog(t, db, user.ID)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Toggle(ctx, model.KindBookmark, user.ID, blog.ID, model.CategoryBlog, true)
			if err != nil {
				assert.ErrorIs(t, err, ErrInteractionUnchanged)
				return
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), countRows(t, db, "bookmarks", user.ID, blog.ID, model.CategoryBlog))

	var got model.Blog
	require.NoError(t, db.First(&got, blog.ID).Error)
	assert.Equal(t, 1, got.BookmarkCount)
}

func TestMySQL_UpsertApplication_KeepsActiveMember(t *testing.T) {
	db := testutil.SetupTestDBWithMySQL(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMembershipRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	team := testutil.TestProjectTeam(t, db)

	_, err := repo.CreateApproved(ctx, model.TeamProject, team.ID, user.ID, true, "LEAD")
	require.NoError(t, err)

	_, err = repo.UpsertApplication(ctx, model.TeamProject, team.ID, user.ID, "again", "BACKEND")
	assert.ErrorIs(t, err, ErrMemberActive)

	m, err := repo.FindActive(ctx, model.TeamProject, team.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, m.IsLeader)
	assert.Equal(t, "LEAD", m.TeamRole)
}

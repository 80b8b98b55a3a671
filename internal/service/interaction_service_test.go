package service

import (
	"context"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/model/dto"
	"github.com/qs3c/crew_server/internal/pkg/logger"
	"github.com/qs3c/crew_server/internal/pkg/metrics"
	"github.com/qs3c/crew_server/internal/repository"
	"github.com/qs3c/crew_server/internal/testutil"
)

func setupInteractionServices(t *testing.T) (*InteractionService, *InteractionService, *metrics.Metrics, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	m := metrics.New()
	repo := repository.NewInteractionRepository(db, repository.NewContentRegistry())
	return NewLikeService(repo, m, logger.Nop()), NewBookmarkService(repo, m, logger.Nop()), m, db
}

func TestInteractionService_ToggleLikeOnResume(t *testing.T) {
	likes, _, m, db := setupInteractionServices(t)
	ctx := context.Background()

	owner := testutil.TestUser(t, db)
	user := testutil.TestUser(t, db)
	resume := testutil.TestResume(t, db, owner.ID, testutil.WithResumeLikes(4))

	resp, err := likes.Toggle(ctx, user.ID, dto.ToggleRequest{Category: model.CategoryResume, ContentID: resume.ID, DesiredOn: true})
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.Equal(t, 5, resp.Count)

	// same request again is a duplicate and leaves the counter alone
	_, err = likes.Toggle(ctx, user.ID, dto.ToggleRequest{Category: model.CategoryResume, ContentID: resume.ID, DesiredOn: true})
	assert.Equal(t, KindDuplicateInteraction, KindOf(err))

	var stored model.Resume
	require.NoError(t, db.First(&stored, resume.ID).Error)
	assert.Equal(t, 5, stored.LikeCount)

	resp, err = likes.Toggle(ctx, user.ID, dto.ToggleRequest{Category: model.CategoryResume, ContentID: resume.ID, DesiredOn: false})
	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.Equal(t, 4, resp.Count)

	assert.Equal(t, float64(2), promtest.ToFloat64(m.InteractionToggles.WithLabelValues("like", "RESUME", "ok")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.InteractionToggles.WithLabelValues("like", "RESUME", "duplicate_interaction")))
}

func TestInteractionService_ToggleOffWithoutRecord(t *testing.T) {
	likes, _, _, db := setupInteractionServices(t)

	user := testutil.TestUser(t, db)
	blog := testutil.TestBlog(t, db, user.ID)

	_, err := likes.Toggle(context.Background(), user.ID, dto.ToggleRequest{Category: model.CategoryBlog, ContentID: blog.ID, DesiredOn: false})
	assert.ErrorIs(t, err, ErrDuplicateInteraction)
}

func TestInteractionService_ToggleMissingContent(t *testing.T) {
	likes, _, _, db := setupInteractionServices(t)
	user := testutil.TestUser(t, db)

	_, err := likes.Toggle(context.Background(), user.ID, dto.ToggleRequest{Category: model.CategorySession, ContentID: 404, DesiredOn: true})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "content_id=404")
}

func TestInteractionService_ToggleInvalidCategory(t *testing.T) {
	likes, _, _, db := setupInteractionServices(t)
	user := testutil.TestUser(t, db)

	_, err := likes.Toggle(context.Background(), user.ID, dto.ToggleRequest{Category: "VIDEO", ContentID: 1, DesiredOn: true})
	assert.Equal(t, KindInvalidCategory, KindOf(err))
}

func TestInteractionService_LikeAndBookmarkAreIndependent(t *testing.T) {
	likes, bookmarks, _, db := setupInteractionServices(t)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	team := testutil.TestStudyTeam(t, db)
	req := dto.ToggleRequest{Category: model.CategoryStudy, ContentID: team.ID, DesiredOn: true}

	_, err := bookmarks.Toggle(ctx, user.ID, req)
	require.NoError(t, err)

	liked, err := likes.IsActive(ctx, user.ID, team.ID, model.CategoryStudy)
	require.NoError(t, err)
	assert.False(t, liked)

	bookmarked, err := bookmarks.IsActive(ctx, user.ID, team.ID, model.CategoryStudy)
	require.NoError(t, err)
	assert.True(t, bookmarked)

	var stored model.StudyTeam
	require.NoError(t, db.First(&stored, team.ID).Error)
	assert.Equal(t, 0, stored.LikeCount)
	assert.Equal(t, 1, stored.BookmarkCount)
}

func TestInteractionService_IsActiveInvalidCategory(t *testing.T) {
	likes, _, _, _ := setupInteractionServices(t)

	_, err := likes.IsActive(context.Background(), 1, 1, "NOPE")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestInteractionService_List(t *testing.T) {
	likes, _, _, db := setupInteractionServices(t)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	project := testutil.TestProjectTeam(t, db)
	other := testutil.TestProjectTeam(t, db)

	for _, id := range []int64{project.ID, other.ID} {
		_, err := likes.Toggle(ctx, user.ID, dto.ToggleRequest{Category: model.CategoryProject, ContentID: id, DesiredOn: true})
		require.NoError(t, err)
	}
	_, err := likes.Toggle(ctx, user.ID, dto.ToggleRequest{Category: model.CategoryProject, ContentID: other.ID, DesiredOn: false})
	require.NoError(t, err)

	items, err := likes.List(ctx, user.ID, dto.ListInteractionsRequest{Category: model.CategoryProject, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item, ok := items[0].Content.(*dto.ProjectItem)
	require.True(t, ok)
	assert.Equal(t, project.ID, item.ID)
	assert.Equal(t, []string{"Go", "React"}, item.Stacks)
	assert.Equal(t, "https://img.example.com/p.png", item.MainImage)
	assert.Equal(t, 1, item.LikeCount)
}

func TestInteractionService_ListEmpty(t *testing.T) {
	_, bookmarks, _, db := setupInteractionServices(t)
	user := testutil.TestUser(t, db)

	items, err := bookmarks.List(context.Background(), user.ID, dto.ListInteractionsRequest{Category: model.CategorySession, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestInteractionService_Reconcile(t *testing.T) {
	likes, _, m, db := setupInteractionServices(t)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	resume := testutil.TestResume(t, db, user.ID, testutil.WithResumeLikes(7))
	testutil.TestInteraction(t, db, model.KindLike, user.ID, resume.ID, model.CategoryResume, true)

	n, err := likes.Reconcile(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var stored model.Resume
	require.NoError(t, db.First(&stored, resume.ID).Error)
	assert.Equal(t, 7, stored.LikeCount, "dry run must not write")

	n, err = likes.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, db.First(&stored, resume.ID).Error)
	assert.Equal(t, 1, stored.LikeCount)
	assert.Equal(t, float64(1), promtest.ToFloat64(m.CounterDriftFixed.WithLabelValues("like", "RESUME")))

	n, err = likes.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

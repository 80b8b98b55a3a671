package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/testutil"
)

func TestMembershipRepository_UpsertApplication_SingleRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMembershipRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	team := testutil.TestStudyTeam(t, db)

	first, err := repo.UpsertApplication(ctx, model.TeamStudy, team.ID, user.ID, "first note", "")
	require.NoError(t, err)
	second, err := repo.UpsertApplication(ctx, model.TeamStudy, team.ID, user.ID, "latest note", "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "latest note", second.Summary)
	assert.Equal(t, model.StatusPending, second.Status)

	var n int64
	require.NoError(t, db.Table("study_members").Where("team_id = ? AND user_id = ?", team.ID, user.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestMembershipRepository_UpsertApplication_ReopensCancelled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMembershipRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	team := testutil.TestProjectTeam(t, db)
	old := testutil.TestMember(t, db, model.TeamProject, team.ID, user.ID,
		testutil.WithMemberStatus(model.StatusRejected), testutil.WithMemberDeleted())

	m, err := repo.UpsertApplication(ctx, model.TeamProject, team.ID, user.ID, "again", "BACKEND")
	require.NoError(t, err)

	assert.Equal(t, old.ID, m.ID)
	assert.True(t, m.Pending())
	assert.Equal(t, "BACKEND", m.TeamRole)
}

func TestMembershipRepository_UpsertApplication_KeepsActiveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMembershipRepository(db)
	ctx := context.Background()
	user := testutil.TestUser(t, db)
	team := testutil.TestStudyTeam(t, db)

	// the add commits after the applicant's membership check already ran
	leader, err := repo.CreateApproved(ctx, model.TeamStudy, team.ID, user.ID, true, "")
	require.NoError(t, err)

	_, err = repo.UpsertApplication(ctx, model.TeamStudy, team.ID, user.ID, "let me in", "")
	assert.ErrorIs(t, err, ErrMemberActive)

	got, err := repo.GetByID(ctx, model.TeamStudy, leader.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.True(t, got.IsLeader)
	assert.False(t, got.IsDeleted)
	assert.Empty(t, got.Summary)
}

func TestMembershipRepository_FindByState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMembershipRepository(db)
	ctx := context.Background()
	team := testutil.TestStudyTeam(t, db)
	member := testutil.TestUser(t, db)
	applicant := testutil.TestUser(t, db)
	testutil.TestMember(t, db, model.TeamStudy, team.ID, member.ID)
	testutil.TestMember(t, db, model.TeamStudy, team.ID, applicant.ID, testutil.WithMemberStatus(model.StatusPending))

	m, err := repo.FindActive(ctx, model.TeamStudy, team.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, m.Active())

	_, err = repo.FindActive(ctx, model.TeamStudy, team.ID, applicant.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	p, err := repo.FindPending(ctx, model.TeamStudy, team.ID, applicant.ID)
	require.NoError(t, err)
	assert.True(t, p.Pending())

	// tables are separate per team kind
	_, err = repo.Find(ctx, model.TeamProject, team.ID, member.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMembershipRepository_SetStatus_Conditional(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMembershipRepository(db)
	ctx := context.Background()
	team := testutil.TestStudyTeam(t, db)
	user := testutil.TestUser(t, db)
	p := testutil.TestMember(t, db, model.TeamStudy, team.ID, user.ID, testutil.WithMemberStatus(model.StatusPending))

	m, err := repo.SetStatus(ctx, model.TeamStudy, p.ID, model.StatusPending, model.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, m.Status)

	_, err = repo.SetStatus(ctx, model.TeamStudy, p.ID, model.StatusPending, model.StatusRejected)
	assert.ErrorIs(t, err, ErrStatusChanged)
}

func TestMembershipRepository_CancelAndActivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMembershipRepository(db)
	ctx := context.Background()
	team := testutil.TestProjectTeam(t, db)
	user := testutil.TestUser(t, db)
	p := testutil.TestMember(t, db, model.TeamProject, team.ID, user.ID, testutil.WithMemberStatus(model.StatusPending))

	m, err := repo.Cancel(ctx, model.TeamProject, p.ID)
	require.NoError(t, err)
	assert.True(t, m.IsDeleted)

	m, err = repo.Activate(ctx, model.TeamProject, p.ID, true)
	require.NoError(t, err)
	assert.True(t, m.Active())
	assert.True(t, m.IsLeader)
}

func TestMembershipRepository_Lists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMembershipRepository(db)
	ctx := context.Background()
	team := testutil.TestStudyTeam(t, db)
	leader := testutil.TestUser(t, db)
	member := testutil.TestUser(t, db)
	gone := testutil.TestUser(t, db)
	applicant := testutil.TestUser(t, db)

	_, err := repo.CreateApproved(ctx, model.TeamStudy, team.ID, member.ID, false, "")
	require.NoError(t, err)
	_, err = repo.CreateApproved(ctx, model.TeamStudy, team.ID, leader.ID, true, "")
	require.NoError(t, err)
	testutil.TestMember(t, db, model.TeamStudy, team.ID, gone.ID, testutil.AsLeader(), testutil.WithMemberDeleted())
	testutil.TestMember(t, db, model.TeamStudy, team.ID, applicant.ID, testutil.WithMemberStatus(model.StatusPending))

	leaders, err := repo.ListLeaders(ctx, model.TeamStudy, team.ID)
	require.NoError(t, err)
	require.Len(t, leaders, 1)
	assert.Equal(t, leader.ID, leaders[0].UserID)
	require.NotNil(t, leaders[0].User)
	assert.Equal(t, leader.Email, leaders[0].User.Email)

	active, err := repo.ListActive(ctx, model.TeamStudy, team.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, leader.ID, active[0].UserID)
	assert.Equal(t, member.ID, active[1].UserID)

	pending, err := repo.ListPending(ctx, model.TeamStudy, team.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, applicant.ID, pending[0].UserID)
}

func TestMembershipRepository_SetStatus_StorageFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMembershipRepository(db)

	// gorm wraps single writes in its default transaction
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `study_members` SET").WillReturnError(errConnReset)
	mock.ExpectRollback()

	_, err := repo.SetStatus(context.Background(), model.TeamStudy, 1, model.StatusPending, model.StatusApproved)
	assert.ErrorIs(t, err, errConnReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

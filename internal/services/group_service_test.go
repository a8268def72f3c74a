package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/phocus/phocus/internal/apperrors"
	"github.com/phocus/phocus/internal/models"
	"github.com/phocus/phocus/internal/period"
	"github.com/phocus/phocus/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type groupFixture struct {
	groups *memGroupRepo
	users  *memUserRepo
	goals  *memGoalRepo
	bus    *recordingBus
	svc    *services.GroupService
}

func newGroupFixture() *groupFixture {
	f := &groupFixture{
		groups: newMemGroupRepo(),
		users:  newMemUserRepo(),
		goals:  newMemGoalRepo(),
		bus:    &recordingBus{},
	}
	f.svc = services.NewGroupService(f.groups, f.users, f.goals, f.bus)
	return f
}

func (f *groupFixture) seedUser(t *testing.T, user models.User) *models.User {
	t.Helper()
	created, err := f.users.CreateUser(context.Background(), &user)
	require.NoError(t, err)
	return created
}

func TestCreateGroupCreatorIsAdminMember(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c", XP: 300})

	group, err := f.svc.CreateGroup(ctx, "Runners", "morning runs", "fitness", creator.ID)
	require.NoError(t, err)

	assert.True(t, group.IsMember(creator.ID))
	assert.True(t, group.IsAdmin(creator.ID))
	assert.Equal(t, 300, group.TotalXP)

	stored, err := f.users.GetUserByID(ctx, creator.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.GroupsIDs, group.ID)
}

func TestAddMemberLinksBothDirections(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c"})
	joiner := f.seedUser(t, models.User{Email: "d@e.f"})

	group, err := f.svc.CreateGroup(ctx, "Runners", "", "", creator.ID)
	require.NoError(t, err)

	updated, err := f.svc.AddMember(ctx, group.ID, "d@e.f")
	require.NoError(t, err)
	assert.True(t, updated.IsMember(joiner.ID))
	assert.False(t, updated.IsAdmin(joiner.ID))

	stored, err := f.users.GetUserByID(ctx, joiner.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.GroupsIDs, group.ID)

	// Adding the same member again is a no-op.
	again, err := f.svc.AddMember(ctx, group.ID, "d@e.f")
	require.NoError(t, err)
	assert.Len(t, again.MemberIDs, 2)
}

func TestAddMemberUnknownEmail(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c"})
	group, err := f.svc.CreateGroup(ctx, "Runners", "", "", creator.ID)
	require.NoError(t, err)

	_, err = f.svc.AddMember(ctx, group.ID, "nobody@e.f")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestRemoveMemberStripsAdmin(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c"})
	member := f.seedUser(t, models.User{Email: "d@e.f"})

	group, err := f.svc.CreateGroup(ctx, "Runners", "", "", creator.ID)
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, group.ID, "d@e.f")
	require.NoError(t, err)
	_, err = f.svc.ToggleAdmin(ctx, group.ID, member.ID)
	require.NoError(t, err)

	updated, err := f.svc.RemoveMember(ctx, group.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsMember(member.ID))
	assert.False(t, updated.IsAdmin(member.ID))

	stored, err := f.users.GetUserByID(ctx, member.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.GroupsIDs, group.ID)
}

func TestToggleAdminRequiresMembership(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c"})
	outsider := f.seedUser(t, models.User{Email: "d@e.f"})

	group, err := f.svc.CreateGroup(ctx, "Runners", "", "", creator.ID)
	require.NoError(t, err)

	_, err = f.svc.ToggleAdmin(ctx, group.ID, outsider.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)

	// Toggling an existing admin revokes without touching membership.
	updated, err := f.svc.ToggleAdmin(ctx, group.ID, creator.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsAdmin(creator.ID))
	assert.True(t, updated.IsMember(creator.ID))
}

func TestAddGoalEnforcesCap(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c"})
	group, err := f.svc.CreateGroup(ctx, "Runners", "", "", creator.ID)
	require.NoError(t, err)

	for i := 0; i < models.MaxGoalsPerGroup; i++ {
		_, err := f.svc.AddGoal(ctx, group.ID, &models.Goal{
			Title:       fmt.Sprintf("goal %d", i),
			DaysTotal:   7,
			Periodicity: period.Daily,
			RewardXP:    10,
		})
		require.NoError(t, err)
	}

	before, err := f.groups.GetGroupByID(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, before.GoalsIDs, models.MaxGoalsPerGroup)

	_, err = f.svc.AddGoal(ctx, group.ID, &models.Goal{
		Title: "one too many", DaysTotal: 7, Periodicity: period.Daily,
	})
	assert.ErrorIs(t, err, apperrors.ErrLimitExceeded)

	// The rejected goal left no trace.
	after, err := f.groups.GetGroupByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, before.GoalsIDs, after.GoalsIDs)
}

func TestAddGoalSetsGroupOwnership(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c"})
	group, err := f.svc.CreateGroup(ctx, "Runners", "", "", creator.ID)
	require.NoError(t, err)

	created, err := f.svc.AddGoal(ctx, group.ID, &models.Goal{
		Title: "5k together", DaysTotal: 14, Periodicity: period.Daily, RewardXP: 20,
		// Owner fields set by the caller are overridden.
		OwnerID:   creator.ID,
		OwnerType: models.OwnerUser,
	})
	require.NoError(t, err)
	assert.Equal(t, group.ID, created.OwnerID)
	assert.Equal(t, models.OwnerGroup, created.OwnerType)
}

func TestRemoveGoalDeletesGoal(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c"})
	group, err := f.svc.CreateGroup(ctx, "Runners", "", "", creator.ID)
	require.NoError(t, err)

	created, err := f.svc.AddGoal(ctx, group.ID, &models.Goal{Title: "x", DaysTotal: 7, Periodicity: period.Daily})
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveGoal(ctx, group.ID, created.ID))

	stored, err := f.groups.GetGroupByID(ctx, group.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.GoalsIDs, created.ID)
	_, err = f.goals.GetGoalByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrGoalNotFound)
}

func TestRecomputeXPReflectsMemberMutations(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c", XP: 100})
	member := f.seedUser(t, models.User{Email: "d@e.f", XP: 250})

	group, err := f.svc.CreateGroup(ctx, "Runners", "", "", creator.ID)
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, group.ID, "d@e.f")
	require.NoError(t, err)

	total, err := f.svc.RecomputeXP(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 350, total)

	// Member XP changes do not move the cached aggregate until the next
	// recompute.
	member.XP = 1000
	_, err = f.users.UpdateUser(ctx, member.ID, member)
	require.NoError(t, err)

	stale, err := f.groups.GetGroupByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 350, stale.TotalXP)

	total, err = f.svc.RecomputeXP(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1100, total)

	fresh, err := f.groups.GetGroupByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1100, fresh.TotalXP)
}

func TestGetUserGroups(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	creator := f.seedUser(t, models.User{Email: "a@b.c"})

	first, err := f.svc.CreateGroup(ctx, "Runners", "", "", creator.ID)
	require.NoError(t, err)
	second, err := f.svc.CreateGroup(ctx, "Readers", "", "", creator.ID)
	require.NoError(t, err)

	groups, err := f.svc.GetUserGroups(ctx, creator.ID)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	ids := []primitive.ObjectID{groups[0].ID, groups[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestGroupNotFound(t *testing.T) {
	f := newGroupFixture()
	_, err := f.svc.RecomputeXP(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
}

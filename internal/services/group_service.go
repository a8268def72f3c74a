package services

import (
	"context"
	"fmt"
	"time"

	"github.com/phocus/phocus/internal/apperrors"
	"github.com/phocus/phocus/internal/events"
	"github.com/phocus/phocus/internal/models"
	"github.com/phocus/phocus/internal/period"
	"github.com/phocus/phocus/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupService owns group membership, the per-group goal cap and the
// cached XP aggregate.
type GroupService struct {
	repo     GroupRepositoryI
	userRepo UserRepositoryI
	goalRepo GoalRepositoryI
	bus      EventPublisher
}

// NewGroupService creates a new instance of GroupService.
func NewGroupService(repo GroupRepositoryI, userRepo UserRepositoryI, goalRepo GoalRepositoryI, bus EventPublisher) *GroupService {
	return &GroupService{
		repo:     repo,
		userRepo: userRepo,
		goalRepo: goalRepo,
		bus:      bus,
	}
}

// CreateGroup creates a group with the creator as its first member and
// admin, and links the group into the creator's memberships.
func (s *GroupService) CreateGroup(ctx context.Context, name, description, category string, creatorID primitive.ObjectID) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}

	creator, err := s.userRepo.GetUserByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		Category:    category,
		AdminIDs:    []primitive.ObjectID{creatorID},
		MemberIDs:   []primitive.ObjectID{creatorID},
		GoalsIDs:    []primitive.ObjectID{},
		TotalXP:     creator.XP,
	}

	created, err := s.repo.CreateGroup(ctx, group)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to create group")
		return nil, fmt.Errorf("failed to create group: %v", err)
	}

	creator.GroupsIDs = append(creator.GroupsIDs, created.ID)
	if _, err := s.userRepo.UpdateUser(ctx, creator.ID, creator); err != nil {
		return nil, fmt.Errorf("failed to link group to creator: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"group_id": created.ID.Hex(),
		"userID":   creatorID.Hex(),
	}).Info("Group created")
	return created, nil
}

// GetGroup retrieves a group by its ID.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid group ID: %v", err)
	}
	return s.repo.GetGroupByID(ctx, objID)
}

// AddMember adds the user with the given email to the group, linking
// both directions of the membership reference.
func (s *GroupService) AddMember(ctx context.Context, groupID primitive.ObjectID, email string) (*models.Group, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.IsMember(user.ID) {
		group.MemberIDs = append(group.MemberIDs, user.ID)
		if _, err := s.repo.UpdateGroup(ctx, group.ID, group); err != nil {
			return nil, err
		}
	}

	linked := false
	for _, gid := range user.GroupsIDs {
		if gid == groupID {
			linked = true
			break
		}
	}
	if !linked {
		user.GroupsIDs = append(user.GroupsIDs, groupID)
		if _, err := s.userRepo.UpdateUser(ctx, user.ID, user); err != nil {
			return nil, err
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"group_id": groupID.Hex(),
		"userID":   user.ID.Hex(),
	}).Info("Member added to group")
	return group, nil
}

// RemoveMember removes a user from the group. Admin status is removed
// with membership, and the group is unlinked from the user.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (*models.Group, error) {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group.MemberIDs = removeID(group.MemberIDs, userID)
	group.AdminIDs = removeID(group.AdminIDs, userID)
	if _, err := s.repo.UpdateGroup(ctx, group.ID, group); err != nil {
		return nil, err
	}

	if user, err := s.userRepo.GetUserByID(ctx, userID); err == nil {
		user.GroupsIDs = removeID(user.GroupsIDs, groupID)
		_, _ = s.userRepo.UpdateUser(ctx, user.ID, user)
	}

	logger.Log.WithFields(map[string]interface{}{
		"group_id": groupID.Hex(),
		"userID":   userID.Hex(),
	}).Info("Member removed from group")
	return group, nil
}

// ToggleAdmin grants or revokes admin status for an existing member.
// AdminIDs stays a subset of MemberIDs.
func (s *GroupService) ToggleAdmin(ctx context.Context, groupID, userID primitive.ObjectID) (*models.Group, error) {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(userID) {
		return nil, apperrors.ErrNotGroupMember
	}

	if group.IsAdmin(userID) {
		group.AdminIDs = removeID(group.AdminIDs, userID)
	} else {
		group.AdminIDs = append(group.AdminIDs, userID)
	}

	if _, err := s.repo.UpdateGroup(ctx, group.ID, group); err != nil {
		return nil, err
	}
	return group, nil
}

// AddGoal creates a goal owned by the group, enforcing the goal cap.
func (s *GroupService) AddGoal(ctx context.Context, groupID primitive.ObjectID, goal *models.Goal) (*models.Goal, error) {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if len(group.GoalsIDs) >= models.MaxGoalsPerGroup {
		logger.Log.WithField("group_id", groupID.Hex()).Warn("Group goal limit reached")
		return nil, apperrors.ErrLimitExceeded
	}

	goal.OwnerID = groupID
	goal.OwnerType = models.OwnerGroup
	if goal.Periodicity == "" {
		goal.Periodicity = period.Daily
	}
	if err := validateGoal(goal); err != nil {
		return nil, err
	}

	created, err := s.goalRepo.CreateGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create group goal: %v", err)
	}

	group.GoalsIDs = append(group.GoalsIDs, created.ID)
	if _, err := s.repo.UpdateGroup(ctx, group.ID, group); err != nil {
		return nil, fmt.Errorf("failed to link goal to group: %v", err)
	}

	s.bus.Publish(events.Event{Type: events.GoalsChanged, At: time.Now()})

	logger.Log.WithFields(map[string]interface{}{
		"group_id": groupID.Hex(),
		"goal_id":  created.ID.Hex(),
	}).Info("Goal added to group")
	return created, nil
}

// RemoveGoal removes the reference and deletes the underlying goal.
func (s *GroupService) RemoveGoal(ctx context.Context, groupID, goalID primitive.ObjectID) error {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return err
	}

	group.GoalsIDs = removeID(group.GoalsIDs, goalID)
	if _, err := s.repo.UpdateGroup(ctx, group.ID, group); err != nil {
		return err
	}

	if err := s.goalRepo.DeleteGoal(ctx, goalID); err != nil {
		return err
	}

	s.bus.Publish(events.Event{Type: events.GoalsChanged, At: time.Now()})
	return nil
}

// RecomputeXP recalculates the cached aggregate from member XP. This is
// the only writer of TotalXP; it is never patched incrementally.
func (s *GroupService) RecomputeXP(ctx context.Context, groupID primitive.ObjectID) (int, error) {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return 0, err
	}

	members, err := s.userRepo.GetUsersByIDs(ctx, group.MemberIDs)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, m := range members {
		total += m.XP
	}

	group.TotalXP = total
	if _, err := s.repo.UpdateGroup(ctx, group.ID, group); err != nil {
		return 0, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"group_id": groupID.Hex(),
		"total_xp": total,
	}).Info("Group XP recomputed")
	return total, nil
}

// GetUserGroups resolves every group the user belongs to.
func (s *GroupService) GetUserGroups(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetGroupsByIDs(ctx, user.GroupsIDs)
}

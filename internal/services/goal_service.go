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

// GoalService encapsulates the goal lifecycle: creation, administrative
// edits, deletion and the gated completion operation.
type GoalService struct {
	repo                GoalRepositoryI
	userRepo            UserRepositoryI
	groupRepo           GroupRepositoryI
	progression         *ProgressionService
	NotificationService *NotificationService
	bus                 EventPublisher
}

// NewGoalService creates a new instance of GoalService.
func NewGoalService(repo GoalRepositoryI, userRepo UserRepositoryI, groupRepo GroupRepositoryI, progression *ProgressionService, notificationService *NotificationService, bus EventPublisher) *GoalService {
	return &GoalService{
		repo:                repo,
		userRepo:            userRepo,
		groupRepo:           groupRepo,
		progression:         progression,
		NotificationService: notificationService,
		bus:                 bus,
	}
}

// CompletionResult is what a successful completion hands back to the
// caller: the mutated goal and the rewarded user.
type CompletionResult struct {
	Goal *models.Goal `json:"goal"`
	User *models.User `json:"user"`
}

func validateGoal(goal *models.Goal) error {
	if goal.Title == "" {
		return fmt.Errorf("goal title is required")
	}
	if !goal.Periodicity.Valid() {
		return fmt.Errorf("invalid periodicity %q", goal.Periodicity)
	}
	if goal.DaysTotal < 1 {
		return fmt.Errorf("days_total must be at least 1")
	}
	if goal.DaysCompleted < 0 || goal.DaysCompleted > goal.DaysTotal {
		return fmt.Errorf("days_completed must be between 0 and days_total")
	}
	if goal.Category != "" && !models.AllowedCategories[goal.Category] {
		return fmt.Errorf("invalid category %q", goal.Category)
	}
	return nil
}

// CreateGoal validates and stores a personal goal, linking it to the
// owning user. Group goals are created through the group service.
func (s *GoalService) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	goal.OwnerType = models.OwnerUser
	if goal.Periodicity == "" {
		goal.Periodicity = period.Daily
	}
	if err := validateGoal(goal); err != nil {
		logger.Log.WithError(err).Warn("Goal validation failed during creation")
		return nil, err
	}
	if goal.RewardXP < 0 {
		return nil, fmt.Errorf("reward_xp cannot be negative")
	}
	if !goal.DueDate.IsZero() && goal.DueDate.Before(time.Now()) {
		return nil, fmt.Errorf("due date cannot be in the past")
	}

	user, err := s.userRepo.GetUserByID(ctx, goal.OwnerID)
	if err != nil {
		return nil, err
	}

	createdGoal, err := s.repo.CreateGoal(ctx, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create goal")
		return nil, fmt.Errorf("failed to create goal: %v", err)
	}

	user.GoalsIDs = append(user.GoalsIDs, createdGoal.ID)
	if _, err := s.userRepo.UpdateUser(ctx, user.ID, user); err != nil {
		return nil, fmt.Errorf("failed to link goal to user: %v", err)
	}

	s.bus.Publish(events.Event{Type: events.GoalsChanged, At: time.Now()})

	logger.Log.WithField("goal_id", createdGoal.ID.Hex()).Info("Goal created in service layer")
	return createdGoal, nil
}

// GetGoal retrieves a goal by its ID.
func (s *GoalService) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Warn("Invalid goal ID in GetGoal")
		return nil, fmt.Errorf("invalid goal ID: %v", err)
	}
	return s.repo.GetGoalByID(ctx, objID)
}

// GetUserGoals returns the user's personal goals plus the shared goals
// of every group the user belongs to.
func (s *GoalService) GetUserGoals(ctx context.Context, userID primitive.ObjectID) ([]models.Goal, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	goals, err := s.repo.GetGoalsByOwner(ctx, userID, models.OwnerUser)
	if err != nil {
		return nil, err
	}

	for _, groupID := range user.GroupsIDs {
		groupGoals, err := s.repo.GetGoalsByOwner(ctx, groupID, models.OwnerGroup)
		if err != nil {
			return nil, err
		}
		goals = append(goals, groupGoals...)
	}
	return goals, nil
}

// UpdateGoal applies an administrative edit. Ownership fields and
// completion bookkeeping cannot be edited through this path.
func (s *GoalService) UpdateGoal(ctx context.Context, id string, updated *models.Goal) (*models.Goal, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Warn("Invalid goal ID in UpdateGoal")
		return nil, fmt.Errorf("invalid goal ID: %v", err)
	}

	goal, err := s.repo.GetGoalByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if updated.Title != "" {
		goal.Title = updated.Title
	}
	goal.Description = updated.Description
	if updated.Category != "" {
		goal.Category = updated.Category
	}
	if updated.DaysTotal > 0 {
		goal.DaysTotal = updated.DaysTotal
	}
	if updated.Periodicity != "" {
		goal.Periodicity = updated.Periodicity
	}
	if updated.RewardXP > 0 {
		goal.RewardXP = updated.RewardXP
	}
	if !updated.DueDate.IsZero() {
		goal.DueDate = updated.DueDate
	}
	if err := validateGoal(goal); err != nil {
		return nil, err
	}

	saved, err := s.repo.UpdateGoal(ctx, objID, goal)
	if err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Error("Failed to update goal")
		return nil, err
	}

	s.bus.Publish(events.Event{Type: events.GoalsChanged, At: time.Now()})
	logger.Log.WithField("goal_id", id).Info("Goal updated successfully in service layer")
	return saved, nil
}

// DeleteGoal removes a goal and severs its reference from the owner.
func (s *GoalService) DeleteGoal(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Warn("Invalid goal ID in DeleteGoal")
		return fmt.Errorf("invalid goal ID: %v", err)
	}

	goal, err := s.repo.GetGoalByID(ctx, objID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteGoal(ctx, objID); err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Error("Failed to delete goal")
		return err
	}

	switch goal.OwnerType {
	case models.OwnerUser:
		if user, err := s.userRepo.GetUserByID(ctx, goal.OwnerID); err == nil {
			user.GoalsIDs = removeID(user.GoalsIDs, objID)
			_, _ = s.userRepo.UpdateUser(ctx, user.ID, user)
		}
	case models.OwnerGroup:
		if group, err := s.groupRepo.GetGroupByID(ctx, goal.OwnerID); err == nil {
			group.GoalsIDs = removeID(group.GoalsIDs, objID)
			_, _ = s.groupRepo.UpdateGroup(ctx, group.ID, group)
		}
	}

	s.bus.Publish(events.Event{Type: events.GoalsChanged, At: time.Now()})
	logger.Log.WithField("goal_id", id).Info("Goal deleted successfully in service layer")
	return nil
}

// CompleteGoal marks one unit of progress at `now`, applying every gate
// before any mutation: the goal must exist, must not be terminal, and
// the period policy must allow another completion. On success the goal
// and the rewarded user are persisted and observers are notified.
func (s *GoalService) CompleteGoal(ctx context.Context, goalID string, userID primitive.ObjectID, now time.Time) (*CompletionResult, error) {
	objID, err := primitive.ObjectIDFromHex(goalID)
	if err != nil {
		logger.Log.WithField("goal_id", goalID).WithError(err).Warn("Invalid goal ID in CompleteGoal")
		return nil, fmt.Errorf("invalid goal ID: %v", err)
	}

	goal, err := s.repo.GetGoalByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if goal.Completed() {
		return nil, apperrors.ErrGoalCompleted
	}

	if !period.CanComplete(goal.Periodicity, goal.LastCompletedDate, now) {
		logger.Log.WithFields(map[string]interface{}{
			"goal_id":     goalID,
			"periodicity": goal.Periodicity,
		}).Info("Completion denied by period gate")
		return nil, &apperrors.GateDeniedError{Periodicity: goal.Periodicity}
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// All gates passed; mutate.
	goal.DaysCompleted++
	if goal.DaysCompleted > goal.DaysTotal {
		goal.DaysCompleted = goal.DaysTotal
	}
	completedAt := now
	goal.LastCompletedDate = &completedAt
	terminal := goal.Completed()
	if terminal {
		goal.CompletedAt = &completedAt
	}

	if _, err := s.repo.UpdateGoal(ctx, objID, goal); err != nil {
		return nil, fmt.Errorf("failed to persist goal completion: %v", err)
	}

	s.progression.ApplyReward(user, goal.RewardXP)
	if goal.Periodicity == period.Daily {
		s.progression.AdvanceStreak(user, now)
	}
	if _, err := s.userRepo.UpdateUser(ctx, user.ID, user); err != nil {
		return nil, fmt.Errorf("failed to persist user progression: %v", err)
	}

	if terminal && s.NotificationService != nil {
		if err := s.NotificationService.CreateNotification(
			ctx,
			user.ID,
			"goal_completed",
			"Goal Completed",
			fmt.Sprintf("You have completed your goal %q!", goal.Title),
			&goal.ID,
		); err != nil {
			logger.Log.WithError(err).Warn("Failed to send goal completed notification")
		}
	}

	s.bus.Publish(events.Event{Type: events.GoalsChanged, At: now})

	logger.Log.WithFields(map[string]interface{}{
		"goal_id":        goalID,
		"userID":         userID.Hex(),
		"days_completed": goal.DaysCompleted,
		"terminal":       terminal,
	}).Info("Goal completion recorded")

	return &CompletionResult{Goal: goal, User: user}, nil
}

// GetAllGoals retrieves goals across all owners with an optional limit.
func (s *GoalService) GetAllGoals(ctx context.Context, limit int64) ([]models.Goal, error) {
	goals, err := s.repo.GetAllGoals(ctx, limit)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch all goals")
		return nil, fmt.Errorf("failed to fetch goals: %v", err)
	}
	return goals, nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

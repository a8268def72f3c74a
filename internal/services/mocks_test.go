package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/phocus/phocus/internal/apperrors"
	"github.com/phocus/phocus/internal/events"
	"github.com/phocus/phocus/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository doubles. They store value copies so a mutation
// of a returned record only becomes visible after an explicit update,
// matching the persistence discipline of the real repositories.

type memGoalRepo struct {
	goals map[primitive.ObjectID]models.Goal
}

func newMemGoalRepo() *memGoalRepo {
	return &memGoalRepo{goals: make(map[primitive.ObjectID]models.Goal)}
}

func (r *memGoalRepo) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if goal.ID.IsZero() {
		goal.ID = primitive.NewObjectID()
	}
	r.goals[goal.ID] = *goal
	out := *goal
	return &out, nil
}

func (r *memGoalRepo) GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error) {
	goal, ok := r.goals[id]
	if !ok {
		return nil, apperrors.ErrGoalNotFound
	}
	out := goal
	return &out, nil
}

func (r *memGoalRepo) UpdateGoal(ctx context.Context, id primitive.ObjectID, goal *models.Goal) (*models.Goal, error) {
	if _, ok := r.goals[id]; !ok {
		return nil, apperrors.ErrGoalNotFound
	}
	r.goals[id] = *goal
	out := *goal
	return &out, nil
}

func (r *memGoalRepo) DeleteGoal(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.goals[id]; !ok {
		return apperrors.ErrGoalNotFound
	}
	delete(r.goals, id)
	return nil
}

func (r *memGoalRepo) GetGoalsByOwner(ctx context.Context, ownerID primitive.ObjectID, ownerType string) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range r.goals {
		if g.OwnerID == ownerID && g.OwnerType == ownerType {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memGoalRepo) GetAllGoals(ctx context.Context, limit int64) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range r.goals {
		out = append(out, g)
	}
	return out, nil
}

type memUserRepo struct {
	users map[primitive.ObjectID]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]models.User)}
}

func (r *memUserRepo) put(user models.User) models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return user
}

func (r *memUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	stored := r.put(*user)
	out := stored
	return &out, nil
}

func (r *memUserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	out := user
	return &out, nil
}

func (r *memUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepo) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.VerifyToken == token {
			out := u
			return &out, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepo) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.ResetToken == token {
			out := u
			return &out, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, user *models.User) (*models.User, error) {
	if _, ok := r.users[id]; !ok {
		return nil, apperrors.ErrUserNotFound
	}
	r.users[id] = *user
	out := *user
	return &out, nil
}

func (r *memUserRepo) UpdateUserFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	user, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if v, ok := fields["is_verified"].(bool); ok {
		user.IsVerified = v
	}
	if v, ok := fields["verify_token"].(string); ok {
		user.VerifyToken = v
	}
	if v, ok := fields["hashed_password"].(string); ok {
		user.HashedPassword = v
	}
	if v, ok := fields["reset_token"].(string); ok {
		user.ResetToken = v
	}
	if v, ok := fields["reset_token_exp"].(time.Time); ok {
		user.ResetTokenExp = v
	}
	r.users[id] = user
	return nil
}

func (r *memUserRepo) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

type memGroupRepo struct {
	groups map[primitive.ObjectID]models.Group
}

func newMemGroupRepo() *memGroupRepo {
	return &memGroupRepo{groups: make(map[primitive.ObjectID]models.Group)}
}

func (r *memGroupRepo) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	r.groups[group.ID] = *group
	out := *group
	return &out, nil
}

func (r *memGroupRepo) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, apperrors.ErrGroupNotFound
	}
	out := group
	return &out, nil
}

func (r *memGroupRepo) UpdateGroup(ctx context.Context, id primitive.ObjectID, group *models.Group) (*models.Group, error) {
	if _, ok := r.groups[id]; !ok {
		return nil, apperrors.ErrGroupNotFound
	}
	r.groups[id] = *group
	out := *group
	return &out, nil
}

func (r *memGroupRepo) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.groups[id]; !ok {
		return apperrors.ErrGroupNotFound
	}
	delete(r.groups, id)
	return nil
}

func (r *memGroupRepo) GetGroupsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	var out []models.Group
	for _, id := range ids {
		if g, ok := r.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

type memRewardRepo struct {
	rewards map[string]models.Reward
}

func newMemRewardRepo(rewards ...models.Reward) *memRewardRepo {
	r := &memRewardRepo{rewards: make(map[string]models.Reward)}
	for _, reward := range rewards {
		r.rewards[reward.ID] = reward
	}
	return r
}

func (r *memRewardRepo) GetAllRewards(ctx context.Context) ([]models.Reward, error) {
	var out []models.Reward
	for _, reward := range r.rewards {
		out = append(out, reward)
	}
	return out, nil
}

func (r *memRewardRepo) GetRewardByID(ctx context.Context, id string) (*models.Reward, error) {
	reward, ok := r.rewards[id]
	if !ok {
		return nil, apperrors.ErrRewardNotFound
	}
	out := reward
	return &out, nil
}

func (r *memRewardRepo) SeedDefaults(ctx context.Context) error {
	if len(r.rewards) > 0 {
		return nil
	}
	for _, reward := range models.DefaultRewards {
		r.rewards[reward.ID] = reward
	}
	return nil
}

type memNotificationRepo struct {
	notifications []models.Notification
}

func (r *memNotificationRepo) CreateNotification(ctx context.Context, notif *models.Notification) error {
	r.notifications = append(r.notifications, *notif)
	return nil
}

func (r *memNotificationRepo) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) published(t events.Type) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, e := range b.events {
		if e.Type == t {
			count++
		}
	}
	return count
}

type recordingMailer struct {
	sent []string // "to: subject"
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, to+": "+subject)
	return nil
}

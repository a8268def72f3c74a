package services

import (
	"time"

	"github.com/phocus/phocus/internal/models"
	"github.com/phocus/phocus/internal/period"
	"github.com/sirupsen/logrus"
)

// XPPerLevel is the fixed level curve: level = xp/XPPerLevel + 1.
const XPPerLevel = 1000

// ProgressionService owns user XP accrual, level recomputation and
// streak continuity. All methods mutate the passed user in memory only;
// persisting the result is the caller's explicit apply step.
type ProgressionService struct{}

func NewProgressionService() *ProgressionService {
	return &ProgressionService{}
}

// LevelForXP recomputes the level wholly from XP. Level is never
// incremented independently, which prevents level/xp drift.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// ApplyReward credits the completion reward and recomputes the level.
func (s *ProgressionService) ApplyReward(user *models.User, rewardXP int) {
	if rewardXP < 0 {
		return
	}
	user.XP += rewardXP
	user.Level = LevelForXP(user.XP)

	logrus.WithFields(logrus.Fields{
		"userID": user.ID.Hex(),
		"xp":     user.XP,
		"level":  user.Level,
	}).Info("Reward applied to user")
}

// AdvanceStreak advances the daily streak for a completion at `now`.
// A second daily completion the same day is a no-op, completing on
// consecutive days increments, and any gap restarts the streak at 1.
func (s *ProgressionService) AdvanceStreak(user *models.User, now time.Time) {
	today := period.DateKey(now)
	yesterday := period.DateKey(now.AddDate(0, 0, -1))

	switch user.LastStreakDate {
	case today:
		// Already advanced today.
		return
	case yesterday:
		user.Streak++
	default:
		user.Streak = 1
	}
	user.LastStreakDate = today

	logrus.WithFields(logrus.Fields{
		"userID": user.ID.Hex(),
		"streak": user.Streak,
	}).Info("Streak advanced")
}

// ReconcileStreak applies the loss rule after a day rollover: a streak
// whose last advance is older than yesterday is broken. It never
// increments and is safe to re-run any number of times. Returns true if
// the user record changed.
func (s *ProgressionService) ReconcileStreak(user *models.User, now time.Time) bool {
	if user.Streak == 0 || user.LastStreakDate == "" {
		return false
	}

	today := period.DateKey(now)
	yesterday := period.DateKey(now.AddDate(0, 0, -1))
	if user.LastStreakDate == today || user.LastStreakDate == yesterday {
		return false
	}

	user.Streak = 0
	logrus.WithField("userID", user.ID.Hex()).Info("Streak broken after missed day")
	return true
}

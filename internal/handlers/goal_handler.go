package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/phocus/phocus/internal/apperrors"
	"github.com/phocus/phocus/internal/models"
	"github.com/phocus/phocus/internal/services"
	"github.com/phocus/phocus/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalHandler handles HTTP requests related to goals.
type GoalHandler struct {
	Service *services.GoalService
}

// NewGoalHandler creates a new instance of GoalHandler.
func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{Service: goalService}
}

// CreateGoalHandler handles the creation of a new personal goal.
func (h *GoalHandler) CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized access attempt during goal creation")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var goal models.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during goal creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to convert user ID")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}
	goal.OwnerID = userID

	createdGoal, err := h.Service.CreateGoal(r.Context(), &goal)
	if err != nil {
		logrus.WithError(err).Warn("Failed to create goal")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID": claims.UserID,
		"goalID": createdGoal.ID.Hex(),
	}).Info("Goal successfully created")

	writeJSON(w, http.StatusCreated, createdGoal)
}

// GetGoalHandler handles fetching a single goal by its ID.
func (h *GoalHandler) GetGoalHandler(w http.ResponseWriter, r *http.Request) {
	goalID := mux.Vars(r)["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	goal, err := h.Service.GetGoal(r.Context(), goalID)
	if err != nil {
		logrus.WithField("goalID", goalID).Warn("Goal not found")
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// GetGoalsHandler lists the caller's personal and group goals.
func (h *GoalHandler) GetGoalsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	goals, err := h.Service.GetUserGoals(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch user goals")
		http.Error(w, "Failed to fetch goals", statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// CompleteGoalHandler marks one unit of progress on a goal. The gate
// outcome is reported with a periodicity-specific message on conflict.
func (h *GoalHandler) CompleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	goalID := mux.Vars(r)["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized completion attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	result, err := h.Service.CompleteGoal(r.Context(), goalID, userID, time.Now())
	if err != nil {
		var gateErr *apperrors.GateDeniedError
		switch {
		case errors.As(err, &gateErr):
			http.Error(w, gateErr.Error(), http.StatusConflict)
		case errors.Is(err, apperrors.ErrGoalCompleted):
			http.Error(w, "Goal is already fully completed", http.StatusConflict)
		case errors.Is(err, apperrors.ErrGoalNotFound):
			http.Error(w, "Goal not found", http.StatusNotFound)
		default:
			logrus.WithError(err).Error("Goal completion failed")
			http.Error(w, "Failed to complete goal", statusForError(err))
		}
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID": claims.UserID,
		"goalID": goalID,
	}).Info("Goal completion handled")

	writeJSON(w, http.StatusOK, result)
}

// UpdateGoalHandler handles updating an existing goal.
func (h *GoalHandler) UpdateGoalHandler(w http.ResponseWriter, r *http.Request) {
	goalID := mux.Vars(r)["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	existing, err := h.Service.GetGoal(r.Context(), goalID)
	if err != nil {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if existing.OwnerType == models.OwnerUser && existing.OwnerID.Hex() != claims.UserID {
		http.Error(w, "Forbidden: You can only edit your own goals", http.StatusForbidden)
		return
	}

	var updated models.Goal
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	goal, err := h.Service.UpdateGoal(r.Context(), goalID, &updated)
	if err != nil {
		logrus.WithError(err).Warn("Failed to update goal")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// DeleteGoalHandler handles deleting a goal.
func (h *GoalHandler) DeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	goalID := mux.Vars(r)["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	existing, err := h.Service.GetGoal(r.Context(), goalID)
	if err != nil {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if existing.OwnerType == models.OwnerUser && existing.OwnerID.Hex() != claims.UserID {
		http.Error(w, "Forbidden: You can only delete your own goals", http.StatusForbidden)
		return
	}

	if err := h.Service.DeleteGoal(r.Context(), goalID); err != nil {
		logrus.WithError(err).Error("Failed to delete goal")
		http.Error(w, "Failed to delete goal", statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Goal deleted"})
}

// GetAllGoalsHandler lists goals across all users (admin surface).
func (h *GoalHandler) GetAllGoalsHandler(w http.ResponseWriter, r *http.Request) {
	goals, err := h.Service.GetAllGoals(r.Context(), 100)
	if err != nil {
		http.Error(w, "Failed to fetch goals", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

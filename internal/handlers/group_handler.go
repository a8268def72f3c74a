package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/phocus/phocus/internal/models"
	"github.com/phocus/phocus/internal/services"
	"github.com/phocus/phocus/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupHandler handles HTTP requests related to groups.
type GroupHandler struct {
	Service *services.GroupService
}

// NewGroupHandler creates a new instance of GroupHandler.
func NewGroupHandler(service *services.GroupService) *GroupHandler {
	return &GroupHandler{Service: service}
}

func callerID(r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// CreateGroupHandler creates a group with the caller as admin.
func (h *GroupHandler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	group, err := h.Service.CreateGroup(r.Context(), payload.Name, payload.Description, payload.Category, userID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to create group")
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

// GetGroupHandler fetches a single group.
func (h *GroupHandler) GetGroupHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(r); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	group, err := h.Service.GetGroup(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

// GetMyGroupsHandler lists the caller's groups.
func (h *GroupHandler) GetMyGroupsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groups, err := h.Service.GetUserGroups(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to fetch groups", statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) groupForAdminAction(w http.ResponseWriter, r *http.Request) (*models.Group, primitive.ObjectID, bool) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, primitive.NilObjectID, false
	}

	group, err := h.Service.GetGroup(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Group not found", http.StatusNotFound)
		return nil, primitive.NilObjectID, false
	}

	if !group.IsAdmin(userID) {
		http.Error(w, "Forbidden: Only group admins may do this", http.StatusForbidden)
		return nil, primitive.NilObjectID, false
	}
	return group, userID, true
}

// AddMemberHandler adds a user to the group by email.
func (h *GroupHandler) AddMemberHandler(w http.ResponseWriter, r *http.Request) {
	group, _, ok := h.groupForAdminAction(w, r)
	if !ok {
		return
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := h.Service.AddMember(r.Context(), group.ID, payload.Email)
	if err != nil {
		logrus.WithError(err).Warn("Failed to add group member")
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// RemoveMemberHandler removes a member from the group.
func (h *GroupHandler) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	group, _, ok := h.groupForAdminAction(w, r)
	if !ok {
		return
	}

	memberID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	updated, err := h.Service.RemoveMember(r.Context(), group.ID, memberID)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// ToggleAdminHandler grants or revokes a member's admin role.
func (h *GroupHandler) ToggleAdminHandler(w http.ResponseWriter, r *http.Request) {
	group, _, ok := h.groupForAdminAction(w, r)
	if !ok {
		return
	}

	memberID, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	updated, err := h.Service.ToggleAdmin(r.Context(), group.ID, memberID)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// AddGoalHandler creates a shared goal owned by the group.
func (h *GroupHandler) AddGoalHandler(w http.ResponseWriter, r *http.Request) {
	group, _, ok := h.groupForAdminAction(w, r)
	if !ok {
		return
	}

	var goal models.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	created, err := h.Service.AddGoal(r.Context(), group.ID, &goal)
	if err != nil {
		logrus.WithError(err).Warn("Failed to add group goal")
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// RemoveGoalHandler removes a shared goal from the group.
func (h *GroupHandler) RemoveGoalHandler(w http.ResponseWriter, r *http.Request) {
	group, _, ok := h.groupForAdminAction(w, r)
	if !ok {
		return
	}

	goalID, err := primitive.ObjectIDFromHex(mux.Vars(r)["goalId"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.RemoveGoal(r.Context(), group.ID, goalID); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Goal removed"})
}

// RecomputeXPHandler refreshes the group's cached XP aggregate.
func (h *GroupHandler) RecomputeXPHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(r); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	total, err := h.Service.RecomputeXP(r.Context(), groupID)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"total_xp": total})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/phocus/phocus/internal/apperrors"
	"github.com/phocus/phocus/internal/services"
	"github.com/phocus/phocus/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RewardHandler handles HTTP requests for the reward catalog.
type RewardHandler struct {
	Service *services.RewardService
}

// NewRewardHandler creates a new instance of RewardHandler.
func NewRewardHandler(service *services.RewardService) *RewardHandler {
	return &RewardHandler{Service: service}
}

// ListRewardsHandler returns the catalog.
func (h *RewardHandler) ListRewardsHandler(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.Service.ListRewards(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch rewards", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

// RedeemRewardHandler spends the caller's XP on a catalog entry.
func (h *RewardHandler) RedeemRewardHandler(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.Service.Redeem(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInsufficientXP):
			http.Error(w, "Not enough XP for this reward", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrRewardNotFound):
			http.Error(w, "Reward not found", http.StatusNotFound)
		default:
			logrus.WithError(err).Warn("Reward redemption failed")
			http.Error(w, err.Error(), statusForError(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

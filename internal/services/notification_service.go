package services

import (
	"context"
	"fmt"

	"github.com/phocus/phocus/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService files and lists in-app notifications.
type NotificationService struct {
	repo NotificationRepositoryI
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(repo NotificationRepositoryI) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotification stores a notification for the user.
func (s *NotificationService) CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		TargetID: targetID,
	}

	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		logrus.WithError(err).Error("Failed to create notification")
		return fmt.Errorf("failed to create notification: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"type":   notifType,
	}).Info("Notification created")
	return nil
}

// GetUserNotifications returns the user's notifications, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkAsRead flags a notification as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.MarkAsRead(ctx, id)
}

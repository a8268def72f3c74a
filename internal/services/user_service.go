package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
	"github.com/phocus/phocus/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo   UserRepositoryI
	mailer EmailSender
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserRepositoryI, mailer EmailSender) *UserService {
	return &UserService{
		repo:   repo,
		mailer: mailer,
	}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, username, email, password string) (*models.User, error) {
	logrus.Info("Registering new user")

	if email == "" || username == "" || password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("missing required user fields")
	}
	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}

	// Check if the email is already registered
	existingUser, _ := s.repo.GetUserByEmail(ctx, email)
	if existingUser != nil {
		logrus.WithField("email", email).Warn("Email already in use")
		return nil, fmt.Errorf("email already in use")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:        username,
		Email:           email,
		HashedPassword:  string(hashedPwd),
		Role:            "user",
		Level:           1,
		GoalsIDs:        []primitive.ObjectID{},
		GroupsIDs:       []primitive.ObjectID{},
		RedeemedRewards: []string{},
		VerifyToken:     uuid.NewString(),
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	verificationLink := fmt.Sprintf("http://localhost:8080/users/verify?token=%s", user.VerifyToken)
	emailBody := fmt.Sprintf("Welcome to Phocus!\n\nPlease verify your email by clicking the link below:\n%s", verificationLink)
	if err := s.mailer.Send(user.Email, "Email Verification", emailBody); err != nil {
		// Account stays usable; verification can be re-requested.
		logrus.WithError(err).Warn("Failed to send verification email")
	}

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"role":   createdUser.Role,
	}).Info("User registered successfully")
	return createdUser, nil
}

// AuthenticateUser verifies the credentials and returns the user.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Password mismatch during login")
		return nil, fmt.Errorf("invalid email or password")
	}
	return user, nil
}

// VerifyEmail marks the account verified if the token matches.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid or expired verification token")
	}

	update := map[string]interface{}{
		"is_verified":  true,
		"verify_token": "",
	}
	if err := s.repo.UpdateUserFields(ctx, user.ID, update); err != nil {
		return fmt.Errorf("failed to update user verification status: %v", err)
	}
	return nil
}

// RequestPasswordReset issues a reset token and mails the reset link.
func (s *UserService) RequestPasswordReset(ctx context.Context, userEmail string) error {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		return fmt.Errorf("no account found with this email")
	}

	resetToken := uuid.NewString()
	update := map[string]interface{}{
		"reset_token":     resetToken,
		"reset_token_exp": time.Now().Add(1 * time.Hour),
	}
	if err := s.repo.UpdateUserFields(ctx, user.ID, update); err != nil {
		return fmt.Errorf("failed to save reset token")
	}

	resetLink := fmt.Sprintf("http://localhost:8080/users/reset-password?token=%s", resetToken)
	body := fmt.Sprintf("Click the link below to reset your password:\n\n%s", resetLink)
	if err := s.mailer.Send(user.Email, "Reset Your Password", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %v", err)
	}

	logrus.Infof("Password reset email sent to %s", userEmail)
	return nil
}

// ResetPassword sets a new password if the token is valid and unexpired.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token")
	}
	if user.ResetTokenExp.Before(time.Now()) {
		return fmt.Errorf("invalid or expired reset token")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	update := map[string]interface{}{
		"hashed_password": string(hashedPwd),
		"reset_token":     "",
		"reset_token_exp": time.Time{},
	}
	if err := s.repo.UpdateUserFields(ctx, user.ID, update); err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset completed")
	return nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// UpdateProfile applies a username change.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, username string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if username != "" {
		user.Username = username
	}
	return s.repo.UpdateUser(ctx, id, user)
}

// GetAllUsers returns every user (admin surface).
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

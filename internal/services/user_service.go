package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/listing"
	"github.com/gmattworld/applibry-api/internal/mailer"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/principal"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db     *gorm.DB
	assoc  *association.Manager
	mailer mailer.Mailer
}

func NewUserService(db *gorm.DB, assoc *association.Manager, m mailer.Mailer) *UserService {
	return &UserService{db: db, assoc: assoc, mailer: m}
}

func (s *UserService) List(ctx context.Context, search string, off listing.Offset) (listing.Result[models.User], error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).Scopes(listing.Search("email", search))
	return paginate[models.User](q, off, "last_name ASC, first_name ASC", "Role")
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return findByID[models.User](ctx, s.db, id, "User", "Role.Permissions")
}

// Current resolves the authenticated principal. A token whose subject no
// longer matches the stored username is rejected.
func (s *UserService) Current(ctx context.Context, p principal.Principal) (*models.User, error) {
	user, err := s.Get(ctx, p.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Invalid authentication credentials")
		}
		return nil, err
	}
	if user.Username != p.Subject || !user.IsActive || user.IsDeleted {
		return nil, apperr.Unauthorized("Invalid authentication credentials")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor *uuid.UUID, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("User")
			}
			return err
		}
		req.ApplyTo(&user)
		if req.RoleID != nil {
			if err := ensureExists(tx, &models.Role{}, *req.RoleID, "Role"); err != nil {
				return err
			}
			user.RoleID = req.RoleID
		}
		user.Touch(actor)
		return tx.Omit("Role").Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := findByID[models.User](ctx, s.db, id, "User")
	if err != nil {
		return nil, err
	}
	req.ApplyTo(user)
	user.Touch(&id)
	if err := s.db.WithContext(ctx).Omit("Role").Save(user).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *UserService) ToggleStatus(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.User, error) {
	if _, err := toggleActive[models.User](ctx, s.db, id, "User", actor); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the user along with their library, preferences and sessions.
// Subscriber counters on the affected apps and categories are decremented.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.User{}, id, "User"); err != nil {
			return err
		}
		if err := s.assoc.DetachOwner(tx, association.UserApps, id); err != nil {
			return err
		}
		if err := s.assoc.DetachOwner(tx, association.UserCategories, id); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}

// Invite creates a verified admin account with a temporary password and mails
// the password to the invitee.
func (s *UserService) Invite(ctx context.Context, actor *uuid.UUID, req *dto.InviteUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	temp, err := randomToken(9)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		Username:     email,
		Email:        email,
		Password:     string(hash),
		PublicKey:    uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsAdmin:      true,
		AccountType:  models.AccountStarter,
		IsVerified:   true,
		IsVerifiedAt: &now,
		RoleID:       req.RoleID,
	}
	user.Touch(actor)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailAvailable(tx, email); err != nil {
			return err
		}
		if req.RoleID != nil {
			if err := ensureExists(tx, &models.Role{}, *req.RoleID, "Role"); err != nil {
				return err
			}
		}
		return tx.Omit("Role").Create(&user).Error
	})
	if apperr.IsUniqueViolation(err) {
		return nil, apperr.Conflict("Email already registered")
	}
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendInvitation(email, temp); err != nil {
		slog.Error("failed to send invitation", "error", err, "user_id", user.ID)
	}
	return s.Get(ctx, user.ID)
}

// ConfirmPreferences marks onboarding done. At least one preferred category
// is required.
func (s *UserService) ConfirmPreferences(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var prefs int64
	if err := s.db.WithContext(ctx).Model(&models.UserCategory{}).Where("user_id = ?", id).Count(&prefs).Error; err != nil {
		return nil, fmt.Errorf("count preferences: %w", err)
	}
	if prefs == 0 {
		return nil, apperr.Validation("Select at least one category")
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("is_preference_configured", true).Error
	if err != nil {
		return nil, fmt.Errorf("confirm preferences: %w", err)
	}
	return s.Get(ctx, id)
}

func ensureEmailAvailable(tx *gorm.DB, email string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("LOWER(email) = ? OR LOWER(username) = ?", email, email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("Email already registered")
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/observability"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the credential store: user records with hashed secrets
// and the persisted current refresh token.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	// FindByIDProjected loads a user with the password hash and refresh
	// token columns omitted. Used by the authentication gate so secrets
	// never flow into request-scoped context.
	FindByIDProjected(ctx context.Context, id uint) (*domain.User, error)
	// FindByIdentity matches the handle (case-insensitive) or the email.
	FindByIdentity(ctx context.Context, handleOrEmail string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	// PersistRefreshToken overwrites the stored refresh token value;
	// nil clears it. Last write wins.
	PersistRefreshToken(ctx context.Context, userID uint, token *string) error
	// UpdatePassword replaces the stored hash and clears the refresh token
	// in the same write, ending the active session.
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return r.finish(ctx, "find_by_id", &u, err)
}

func (r *GormUserRepository) FindByIDProjected(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Omit("password_hash", "refresh_token").First(&u, id).Error
	return r.finish(ctx, "find_by_id_projected", &u, err)
}

func (r *GormUserRepository) FindByIdentity(ctx context.Context, handleOrEmail string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", strings.ToLower(handleOrEmail), handleOrEmail).
		First(&u).Error
	return r.finish(ctx, "find_by_identity", &u, err)
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&u).Error
	return r.finish(ctx, "find_by_username", &u, err)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return r.finish(ctx, "find_by_email", &u, err)
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.Username = strings.ToLower(user.Username)
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "user", "create", "success")
	return nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "user", "update", "success")
	return nil
}

func (r *GormUserRepository) PersistRefreshToken(ctx context.Context, userID uint, token *string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "persist_refresh_token", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "persist_refresh_token", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, "user", "persist_refresh_token", "success")
	return nil
}

func (r *GormUserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"password_hash": passwordHash, "refresh_token": nil})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "update_password", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "update_password", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, "user", "update_password", "success")
	return nil
}

func (r *GormUserRepository) finish(ctx context.Context, op string, u *domain.User, err error) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", op, "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", op, "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", op, "success")
	return u, nil
}

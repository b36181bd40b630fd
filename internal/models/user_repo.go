package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type UserRepo interface {
	UpsertByOpenID(ctx context.Context, openid, unionid string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	UpdateUser(ctx context.Context, id int64, fields map[string]interface{}) (*User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*User, int, error)
	CreateSession(ctx context.Context, session *UserSession) error
	GetActiveSessionByRefreshToken(ctx context.Context, refreshToken string) (*UserSession, error)
	DeactivateSessions(ctx context.Context, userID int64) error
}

// UpsertByOpenID returns the user for the given open id, creating it on
// first login. Soft-deleted users are reactivated rather than duplicated.
func (r *GormRepo) UpsertByOpenID(ctx context.Context, openid, unionid string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("open_id = ?", openid).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{"is_active": true, "is_deleted": false}
		if unionid != "" && user.UnionID != unionid {
			updates["union_id"] = unionid
		}
		if err := r.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("reactivate user: %w", err)
		}
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = User{OpenID: openid, UnionID: unionid, IsActive: true}
		if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("lookup user by open id: %w", err)
	}
}

func (r *GormRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = false", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *GormRepo) UpdateUser(ctx context.Context, id int64, fields map[string]interface{}) (*User, error) {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ? AND is_deleted = false", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return r.GetUser(ctx, id)
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) ([]*User, int, error) {
	q := r.db.WithContext(ctx).Model(&User{}).Where("is_deleted = false")
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []*User
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, int(total), nil
}

func (r *GormRepo) CreateSession(ctx context.Context, session *UserSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *GormRepo) GetActiveSessionByRefreshToken(ctx context.Context, refreshToken string) (*UserSession, error) {
	var session UserSession
	err := r.db.WithContext(ctx).
		Where("refresh_token = ? AND is_active = true", refreshToken).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (r *GormRepo) DeactivateSessions(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).Model(&UserSession{}).
		Where("user_id = ? AND is_active = true", userID).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("deactivate sessions: %w", err)
	}
	return nil
}

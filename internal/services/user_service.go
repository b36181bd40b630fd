package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"

	"github.com/xinghui/parlor/internal/config"
	"github.com/xinghui/parlor/internal/helpers"
	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/wechat"
)

type UserService struct {
	users   models.UserRepo
	gateway wechat.Gateway
	cld     *cloudinary.Cloudinary
	cfg     *config.Config
	logger  *slog.Logger
}

func NewUserService(users models.UserRepo, gateway wechat.Gateway, cld *cloudinary.Cloudinary, cfg *config.Config, logger *slog.Logger) *UserService {
	return &UserService{
		users:   users,
		gateway: gateway,
		cld:     cld,
		cfg:     cfg,
		logger:  logger,
	}
}

// Login exchanges a mini-program login code for a token pair, creating
// the user on first login.
func (us *UserService) Login(ctx context.Context, code, ipAddress, userAgent string) (*models.User, *helpers.TokenPair, error) {
	if code == "" {
		return nil, nil, fmt.Errorf("%w: login code is required", models.ErrInvalid)
	}

	session, err := us.gateway.Code2Session(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	user, err := us.users.UpsertByOpenID(ctx, session.OpenID, session.UnionID)
	if err != nil {
		return nil, nil, err
	}

	pair, err := us.mintAndStore(ctx, user, ipAddress, userAgent)
	if err != nil {
		return nil, nil, err
	}

	us.logger.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh rotates the token pair from a valid refresh token. The matching
// session row must still be active; rotation deactivates prior sessions.
func (us *UserService) Refresh(ctx context.Context, refreshToken, ipAddress, userAgent string) (*helpers.TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", models.ErrInvalid)
	}

	if _, err := helpers.ValidateToken(us.cfg.JWTSecret, refreshToken, helpers.TokenTypeRefresh); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	session, err := us.users.GetActiveSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: session revoked or unknown", models.ErrUnauthorized)
	}
	if time.Now().After(session.RefreshExpiresAt) {
		return nil, fmt.Errorf("%w: refresh token expired", models.ErrUnauthorized)
	}

	user, err := us.users.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if err := us.users.DeactivateSessions(ctx, user.ID); err != nil {
		return nil, err
	}
	return us.mintAndStore(ctx, user, ipAddress, userAgent)
}

// Logout revokes every active session for the user.
func (us *UserService) Logout(ctx context.Context, userID int64) error {
	return us.users.DeactivateSessions(ctx, userID)
}

func (us *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return us.users.GetUser(ctx, userID)
}

// List pages through registered users. Admin only.
func (us *UserService) List(ctx context.Context, page, size int) ([]*models.User, int, int, int, error) {
	offset, limit, page, size := pageWindow(page, size)
	users, total, err := us.users.ListUsers(ctx, offset, limit)
	return users, total, page, size, err
}

func (us *UserService) UpdateProfile(ctx context.Context, userID int64, update *models.UserUpdate) (*models.User, error) {
	if err := models.Validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalid, err)
	}

	fields := map[string]interface{}{}
	if update.Nickname != nil {
		fields["nickname"] = *update.Nickname
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}
	if update.Phone != nil {
		fields["phone"] = *update.Phone
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrInvalid)
	}
	return us.users.UpdateUser(ctx, userID, fields)
}

// UploadAvatar stores the image on Cloudinary and points the profile at it.
func (us *UserService) UploadAvatar(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.User, error) {
	if us.cld == nil {
		return nil, fmt.Errorf("image uploads are not configured: %w", models.ErrGateway)
	}

	url, err := helpers.UploadImage(ctx, us.cld, file, helpers.AvatarFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGateway, err)
	}
	return us.users.UpdateUser(ctx, userID, map[string]interface{}{"avatar_url": url})
}

func (us *UserService) mintAndStore(ctx context.Context, user *models.User, ipAddress, userAgent string) (*helpers.TokenPair, error) {
	role := user.Role
	if role == "" {
		role = "user"
	}
	accessTTL := time.Duration(us.cfg.JWTExpireMinutes) * time.Minute
	refreshTTL := time.Duration(us.cfg.RefreshExpireMins) * time.Minute

	pair, err := helpers.MintTokenPair(us.cfg.JWTSecret, user.ID, user.OpenID, role, accessTTL, refreshTTL)
	if err != nil {
		return nil, err
	}

	session := &models.UserSession{
		UserID:           user.ID,
		Token:            pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresAt:        pair.ExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		IsActive:         true,
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
	}
	if err := us.users.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return pair, nil
}

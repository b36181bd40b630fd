package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/xinghui/parlor/internal/config"
	"github.com/xinghui/parlor/internal/helpers"
	"github.com/xinghui/parlor/internal/models"
	"github.com/xinghui/parlor/internal/wechat"
)

// fakeUsers is an in-memory models.UserRepo.
type fakeUsers struct {
	users    map[int64]*models.User
	sessions []*models.UserSession
	nextID   int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeUsers) UpsertByOpenID(ctx context.Context, openid, unionid string) (*models.User, error) {
	for _, u := range f.users {
		if u.OpenID == openid {
			u.IsActive = true
			u.IsDeleted = false
			if unionid != "" {
				u.UnionID = unionid
			}
			return u, nil
		}
	}
	u := &models.User{ID: f.nextID, OpenID: openid, UnionID: unionid, Role: "user", IsActive: true}
	f.nextID++
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok || u.IsDeleted {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUsers) UpdateUser(ctx context.Context, id int64, fields map[string]interface{}) (*models.User, error) {
	u, err := f.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := fields["nickname"].(string); ok {
		u.Nickname = v
	}
	if v, ok := fields["avatar_url"].(string); ok {
		u.AvatarURL = v
	}
	if v, ok := fields["phone"].(string); ok {
		u.Phone = v
	}
	if v, ok := fields["email"].(string); ok {
		u.Email = v
	}
	return u, nil
}

func (f *fakeUsers) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int, error) {
	var out []*models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeUsers) CreateSession(ctx context.Context, session *models.UserSession) error {
	session.ID = int64(len(f.sessions) + 1)
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeUsers) GetActiveSessionByRefreshToken(ctx context.Context, refreshToken string) (*models.UserSession, error) {
	for _, s := range f.sessions {
		if s.RefreshToken == refreshToken && s.IsActive {
			return s, nil
		}
	}
	return nil, fmt.Errorf("session: %w", models.ErrNotFound)
}

func (f *fakeUsers) DeactivateSessions(ctx context.Context, userID int64) error {
	for _, s := range f.sessions {
		if s.UserID == userID {
			s.IsActive = false
		}
	}
	return nil
}

func userFixtures(t *testing.T, gateway *fakeGateway) (*UserService, *fakeUsers) {
	t.Helper()
	users := newFakeUsers()
	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTExpireMinutes:  120,
		RefreshExpireMins: 10080,
	}
	svc := NewUserService(users, gateway, nil, cfg, discardLogger())
	return svc, users
}

func TestLoginCreatesUserAndSession(t *testing.T) {
	gateway := &fakeGateway{session: &wechat.SessionInfo{OpenID: "openid-abc", UnionID: "union-1"}}
	svc, users := userFixtures(t, gateway)

	user, pair, err := svc.Login(context.Background(), "code-1", "1.2.3.4", "mini-program")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.OpenID != "openid-abc" {
		t.Errorf("openid = %q", user.OpenID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("token pair incomplete")
	}
	if len(users.sessions) != 1 || !users.sessions[0].IsActive {
		t.Fatalf("expected one active session, got %d", len(users.sessions))
	}

	claims, err := helpers.ValidateToken("test-secret", pair.AccessToken, helpers.TokenTypeAccess)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != user.ID || claims.OpenID != user.OpenID {
		t.Errorf("claims = %+v", claims)
	}

	// A second login reuses the user row.
	again, _, err := svc.Login(context.Background(), "code-2", "1.2.3.4", "mini-program")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("second login created user %d, want %d", again.ID, user.ID)
	}
}

func TestLoginRequiresCode(t *testing.T) {
	svc, _ := userFixtures(t, &fakeGateway{})
	if _, _, err := svc.Login(context.Background(), "", "", ""); !errors.Is(err, models.ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestLoginSurfacesGatewayFailure(t *testing.T) {
	gateway := &fakeGateway{sessionErr: fmt.Errorf("code2session error 40029: %w", models.ErrGateway)}
	svc, _ := userFixtures(t, gateway)
	if _, _, err := svc.Login(context.Background(), "bad-code", "", ""); !errors.Is(err, models.ErrGateway) {
		t.Errorf("error = %v, want ErrGateway", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	gateway := &fakeGateway{session: &wechat.SessionInfo{OpenID: "openid-abc"}}
	svc, users := userFixtures(t, gateway)

	_, pair, err := svc.Login(context.Background(), "code-1", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.AccessToken == pair.AccessToken {
		t.Error("access token not rotated")
	}

	// The original refresh token is now revoked.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken, "", ""); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("reused refresh token error = %v, want ErrUnauthorized", err)
	}

	active := 0
	for _, s := range users.sessions {
		if s.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("active sessions = %d, want 1", active)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	gateway := &fakeGateway{session: &wechat.SessionInfo{OpenID: "openid-abc"}}
	svc, _ := userFixtures(t, gateway)

	_, pair, err := svc.Login(context.Background(), "code-1", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.AccessToken, "", ""); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("access-token refresh error = %v, want ErrUnauthorized", err)
	}
}

func TestLogoutDeactivatesSessions(t *testing.T) {
	gateway := &fakeGateway{session: &wechat.SessionInfo{OpenID: "openid-abc"}}
	svc, users := userFixtures(t, gateway)

	user, pair, err := svc.Login(context.Background(), "code-1", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	for _, s := range users.sessions {
		if s.IsActive {
			t.Errorf("session %d still active after logout", s.ID)
		}
	}
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken, "", ""); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("post-logout refresh error = %v, want ErrUnauthorized", err)
	}
}

func TestListUsersPages(t *testing.T) {
	gateway := &fakeGateway{session: &wechat.SessionInfo{OpenID: "openid-abc"}}
	svc, users := userFixtures(t, gateway)

	for i := int64(1); i <= 3; i++ {
		users.users[i] = &models.User{ID: i, OpenID: fmt.Sprintf("openid-%d", i), Role: "user", IsActive: true}
	}

	got, total, page, size, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(got) != 3 {
		t.Errorf("total = %d, len = %d, want 3", total, len(got))
	}
	if page != 1 || size != DefaultPageSize {
		t.Errorf("page/size = %d/%d, want 1/%d", page, size, DefaultPageSize)
	}
}

func TestUpdateProfile(t *testing.T) {
	gateway := &fakeGateway{session: &wechat.SessionInfo{OpenID: "openid-abc"}}
	svc, _ := userFixtures(t, gateway)

	user, _, err := svc.Login(context.Background(), "code-1", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	nickname := "Night Owl"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, &models.UserUpdate{Nickname: &nickname})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Nickname != "Night Owl" {
		t.Errorf("nickname = %q", updated.Nickname)
	}

	if _, err := svc.UpdateProfile(context.Background(), user.ID, &models.UserUpdate{}); !errors.Is(err, models.ErrInvalid) {
		t.Errorf("empty update error = %v, want ErrInvalid", err)
	}

	bad := "not-an-email"
	if _, err := svc.UpdateProfile(context.Background(), user.ID, &models.UserUpdate{Email: &bad}); !errors.Is(err, models.ErrInvalid) {
		t.Errorf("bad email error = %v, want ErrInvalid", err)
	}
}

func TestTokenPairExpiries(t *testing.T) {
	pair, err := helpers.MintTokenPair("secret", 1, "openid", "user", 2*time.Hour, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("MintTokenPair: %v", err)
	}
	if !pair.RefreshExpiresAt.After(pair.ExpiresAt) {
		t.Error("refresh expiry should outlive access expiry")
	}
}

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// AuthService handles account registration, authentication and
// credential recovery
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. The blacklist
// may be nil; logout and password-change revocation become no-ops.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Register creates a new buyer account
func (s *AuthService) Register(ctx context.Context, tenantID uuid.UUID, req RegisterRequest) (*UserInfo, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, tenantID, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	user, err := identity.NewUser(tenantID, req.Name, req.Email, req.Password, req.Answer)
	if err != nil {
		return nil, err
	}
	if req.Phone != "" {
		if err := user.SetPhone(req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Address != "" {
		if err := user.SetAddress(req.Address); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", tenantID.String()))

	info := ToUserInfo(user)
	return &info, nil
}

// Login authenticates a user and returns an issued token
func (s *AuthService) Login(ctx context.Context, tenantID uuid.UUID, req LoginRequest) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, tenantID, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email", zap.String("tenant_id", tenantID.String()))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	issued, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Name:     user.Name,
		Role:     user.Role,
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Login still succeeds; the timestamp is best effort
		s.logger.Error("Failed to record login time", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &LoginResult{
		User:      ToUserInfo(user),
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// Logout blacklists the presented token for the remainder of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil {
		return nil
	}
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("Failed to blacklist token on logout", zap.Error(err))
		return err
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// CurrentUser returns the account for the authenticated subject
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// UpdateProfile applies the provided profile changes. A password change
// invalidates every previously issued token for the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := user.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		if err := user.SetPhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		if err := user.SetAddress(*req.Address); err != nil {
			return nil, err
		}
	}

	passwordChanged := false
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
		passwordChanged = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if passwordChanged {
		s.revokeUserTokens(ctx, user.ID)
	}

	info := ToUserInfo(user)
	return &info, nil
}

// ForgotPassword resets the password after verifying the security answer.
// Unknown email and wrong answer produce the same error so the endpoint
// does not reveal which accounts exist.
func (s *AuthService) ForgotPassword(ctx context.Context, tenantID uuid.UUID, req ForgotPasswordRequest) error {
	user, err := s.userRepo.FindByEmail(ctx, tenantID, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or security answer")
		}
		return err
	}

	if !user.VerifyAnswer(req.Answer) {
		s.logger.Warn("Wrong security answer", zap.String("user_id", user.ID.String()))
		return shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or security answer")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.revokeUserTokens(ctx, user.ID)
	s.logger.Info("Password reset via security answer", zap.String("user_id", user.ID.String()))
	return nil
}

// revokeUserTokens invalidates every outstanding token for the user.
// Failures are logged and swallowed; the credential change itself has
// already been persisted.
func (s *AuthService) revokeUserTokens(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	ttl := s.jwtService.GetExpiration()
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := s.blacklist.RevokeUser(ctx, userID.String(), ttl); err != nil {
		s.logger.Warn("Failed to revoke user tokens", zap.Error(err),
			zap.String("user_id", userID.String()))
	}
}

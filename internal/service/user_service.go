package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/repository"
	"github.com/iliyamo/food-ordering/internal/storage"
	"github.com/iliyamo/food-ordering/internal/utils"
)

const profileFolder = "profile"

type RegisterInput struct {
	Name     string `json:"name" form:"name" validate:"required,min=3,max=255"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Username string `json:"username" form:"username" validate:"required,min=3,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=255"`
	Role     string `json:"role" query:"role" validate:"oneof=buyer seller"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"omitempty,min=3,max=255"`
	Password string `json:"password" validate:"required,min=6,max=255"`
}

type VerifyEmailInput struct {
	Token string `json:"token" validate:"required"`
}

type RefreshInput struct {
	UserID       uint64 `json:"user_id" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ForgetPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Email         string `json:"email" validate:"required,email"`
	Token         string `json:"token" validate:"required"`
	NewPassword   string `json:"new_password" validate:"required,min=6,max=255"`
	ValidPassword string `json:"valid_password" validate:"required,min=6,max=255"`
}

type UpdateProfileInput struct {
	Username *string `json:"username" form:"username" validate:"omitempty,min=3,max=255"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// AuthConfig holds token and hashing parameters.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
	OTPTTL         time.Duration
	DefaultPicture string
}

// UserService handles registration, verification, sessions and profiles.
type UserService struct {
	users    UserStore
	tokens   TokenStore
	mailer   Mailer
	images   images
	validate Validator
	cfg      AuthConfig
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewUserService(users UserStore, tokens TokenStore, mailer Mailer, store storage.ImageStore, v Validator,
	cfg AuthConfig, log logrus.FieldLogger) *UserService {
	return &UserService{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		images:   images{store: store, log: log},
		validate: v,
		cfg:      cfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an unverified account and mails its verification
// code. The uploaded picture is removed if the account cannot be saved.
func (s *UserService) Register(ctx context.Context, in RegisterInput, picture *Upload) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleBuyer
	}
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperror.Internal("failed to save user data", err)
	}
	otp, err := utils.NewOTP()
	if err != nil {
		return nil, apperror.Internal("failed to save user data", err)
	}
	exp := s.now().Add(s.cfg.OTPTTL)

	url, uploaded, err := s.images.put(ctx, profileFolder, picture, s.cfg.DefaultPicture)
	if err != nil {
		return nil, apperror.Internal("failed to upload image", err)
	}
	u := &model.User{
		Name:                  in.Name,
		Email:                 in.Email,
		Username:              in.Username,
		PasswordHash:          hash,
		Role:                  in.Role,
		Picture:               url,
		VerificationToken:     &otp,
		VerificationExpiresAt: &exp,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if uploaded {
			s.images.discard(ctx, url)
		}
		if errors.Is(err, repository.ErrUserExists) {
			return nil, apperror.Conflict("Username or email already exists")
		}
		return nil, apperror.Internal("failed to save user data", err)
	}
	// the account exists either way; the code can be resent
	if err := s.mailer.SendOTP(ctx, u.Email, "Send TOKEN for verifications email", otp, exp); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("verification mail not sent")
	}
	return u, nil
}

// ResendToken rotates the verification code of the actor.
func (s *UserService) ResendToken(ctx context.Context, actor model.Actor) error {
	u, err := s.users.GetByEmail(ctx, actor.Email)
	if err != nil {
		return userError(err, "Email not found", "failed to resend TOKEN")
	}
	if u.IsVerified {
		return apperror.InvalidState("Email already verified")
	}
	otp, err := utils.NewOTP()
	if err != nil {
		return apperror.Internal("failed to resend TOKEN", err)
	}
	exp := s.now().Add(s.cfg.OTPTTL)
	if err := s.users.SetVerificationToken(ctx, u.Email, otp, exp); err != nil {
		return userError(err, "Email not found", "failed to resend TOKEN")
	}
	if err := s.mailer.SendOTP(ctx, u.Email, "Resend TOKEN for verifications", otp, exp); err != nil {
		return apperror.Internal("failed to resend TOKEN", err)
	}
	return nil
}

// VerifyEmail consumes the actor's verification code.
func (s *UserService) VerifyEmail(ctx context.Context, actor model.Actor, in VerifyEmailInput) error {
	if err := s.validate.Validate(&in); err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, actor.Email)
	if err != nil {
		return userError(err, "Email not found", "failed for verified your email, please try again")
	}
	if u.IsVerified {
		return apperror.InvalidState("Email already verified, thanks")
	}
	ok, err := s.users.Verify(ctx, u.Email, in.Token, s.now())
	if err != nil {
		return apperror.Internal("failed for verified your email, please try again", err)
	}
	if !ok {
		return apperror.InvalidState("failed for verified your email, please try again")
	}
	return nil
}

// Login authenticates by username or email and issues a token pair.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*TokenPair, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	if in.Username == "" && in.Email == "" {
		return nil, apperror.Validation("Validation Error", []apperror.FieldError{
			{Path: "username", Message: "Please fill username or email for login"},
		})
	}
	var (
		u   *model.User
		err error
	)
	if in.Username != "" {
		u, err = s.users.GetByUsername(ctx, in.Username)
	}
	// Fall back to the email only when the username is unknown.
	if in.Email != "" && (in.Username == "" || errors.Is(err, repository.ErrUserNotFound)) {
		u, err = s.users.GetByEmail(ctx, in.Email)
	}
	if err != nil {
		return nil, userError(err, "user not found", "Failed to login, please try again")
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, apperror.Unauthorized("Invalid Password, please try again")
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token into a new pair.
func (s *UserService) Refresh(ctx context.Context, in RefreshInput) (*TokenPair, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	if err := s.tokens.ValidateRefresh(ctx, in.UserID, utils.HashRefreshRaw(in.RefreshToken)); err != nil {
		if errors.Is(err, repository.ErrRefreshInvalid) {
			return nil, apperror.Unauthorized("Invalid refresh token")
		}
		return nil, apperror.Internal("failed to refresh token", err)
	}
	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.Unauthorized("Invalid refresh token")
		}
		return nil, apperror.Internal("failed to refresh token", err)
	}
	return s.issue(ctx, u)
}

// Logout drops the actor's refresh token.
func (s *UserService) Logout(ctx context.Context, actor model.Actor) error {
	if err := s.tokens.Revoke(ctx, actor.ID); err != nil {
		return apperror.Internal("failed to logout", err)
	}
	return nil
}

func (s *UserService) issue(ctx context.Context, u *model.User) (*TokenPair, error) {
	actor := model.Actor{ID: u.ID, Email: u.Email, Username: u.Username, IsVerified: u.IsVerified, Role: u.Role}
	at, err := utils.NewAccessToken(s.cfg.JWTSecret, actor, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, apperror.Internal("Failed to generated token", err)
	}
	rt, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, apperror.Internal("Failed to generated token", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(rt.Raw), time.Until(rt.Exp)); err != nil {
		return nil, apperror.Internal("Failed to generated token", err)
	}
	return &TokenPair{AccessToken: at.Token, AccessExpiresAt: at.Exp, RefreshToken: rt.Raw, RefreshExpiresAt: rt.Exp}, nil
}

// ForgetPassword mails a password reset code.
func (s *UserService) ForgetPassword(ctx context.Context, in ForgetPasswordInput) error {
	if err := s.validate.Validate(&in); err != nil {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err != nil {
		return userError(err, "Email not found", "Failed to create token")
	}
	otp, err := utils.NewOTP()
	if err != nil {
		return apperror.Internal("Failed to create token", err)
	}
	exp := s.now().Add(s.cfg.OTPTTL)
	if err := s.users.SetResetToken(ctx, in.Email, otp, exp); err != nil {
		return userError(err, "Email not found", "Failed to create token")
	}
	if err := s.mailer.SendOTP(ctx, in.Email, "Send TOKEN for reset password", otp, exp); err != nil {
		return apperror.Internal("Failed to send token", err)
	}
	return nil
}

// ResetPassword consumes a reset code and replaces the password.
func (s *UserService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := s.validate.Validate(&in); err != nil {
		return err
	}
	now := s.now()
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return apperror.Internal("failed to reset your password, please try again", err)
	}
	if u == nil || u.ResetToken == nil || *u.ResetToken != in.Token || u.ResetExpiresAt == nil || !u.ResetExpiresAt.After(now) {
		return apperror.InvalidState("user not found or token expired")
	}
	if in.NewPassword != in.ValidPassword {
		return apperror.Validation("Password not match", []apperror.FieldError{
			{Path: "valid_password", Message: "Password not match"},
		})
	}
	hash, err := utils.HashPassword(in.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("failed to reset your password, please try again", err)
	}
	ok, err := s.users.ResetPassword(ctx, in.Email, in.Token, hash, now)
	if err != nil {
		return apperror.Internal("failed to reset your password, please try again", err)
	}
	if !ok {
		return apperror.InvalidState("user not found or token expired")
	}
	return nil
}

// Profile returns the actor's account.
func (s *UserService) Profile(ctx context.Context, actor model.Actor) (*model.User, error) {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, userError(err, "User not found", "failed to get profile")
	}
	return u, nil
}

// UpdateProfile changes username and picture. The new picture is uploaded
// before the old one is deleted.
func (s *UserService) UpdateProfile(ctx context.Context, actor model.Actor, in UpdateProfileInput, picture *Upload) (*model.User, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, userError(err, "User not found", "failed to update profile")
	}
	username := u.Username
	if in.Username != nil {
		username = *in.Username
	}
	oldPicture := u.Picture
	url, uploaded, err := s.images.put(ctx, profileFolder, picture, oldPicture)
	if err != nil {
		return nil, apperror.Internal("failed to upload image", err)
	}
	updated, err := s.users.UpdateProfile(ctx, u.ID, username, url)
	if err != nil {
		if uploaded {
			s.images.discard(ctx, url)
		}
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, apperror.Conflict("Username already exists")
		}
		return nil, userError(err, "User not found", "failed to update profile")
	}
	if uploaded && oldPicture != s.cfg.DefaultPicture {
		s.images.discard(ctx, oldPicture)
	}
	return updated, nil
}

func userError(err error, notFound, fallback string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperror.NotFound("%s", notFound)
	}
	return apperror.Internal(fallback, err)
}

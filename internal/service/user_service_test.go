package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/repository"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uint64]*model.User
	next  uint64

	usernameErr error // returned by GetByUsername when set
}

func newMemUsers() *memUsers { return &memUsers{users: map[uint64]*model.User{}} }

func (m *memUsers) Create(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email || x.Username == u.Username {
			return repository.ErrUserExists
		}
	}
	m.next++
	u.ID = m.next
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) find(pred func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if pred(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email })
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.usernameErr != nil {
		return nil, m.usernameErr
	}
	return m.find(func(u *model.User) bool { return u.Username == username })
}

func (m *memUsers) update(email string, fn func(*model.User) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return fn(u)
		}
	}
	return false
}

func (m *memUsers) SetVerificationToken(ctx context.Context, email, token string, exp time.Time) error {
	if !m.update(email, func(u *model.User) bool { u.VerificationToken, u.VerificationExpiresAt = &token, &exp; return true }) {
		return repository.ErrUserNotFound
	}
	return nil
}

func (m *memUsers) Verify(ctx context.Context, email, token string, now time.Time) (bool, error) {
	return m.update(email, func(u *model.User) bool {
		if u.VerificationToken == nil || *u.VerificationToken != token || !u.VerificationExpiresAt.After(now) {
			return false
		}
		u.IsVerified, u.VerificationToken, u.VerificationExpiresAt = true, nil, nil
		return true
	}), nil
}

func (m *memUsers) SetResetToken(ctx context.Context, email, token string, exp time.Time) error {
	if !m.update(email, func(u *model.User) bool { u.ResetToken, u.ResetExpiresAt = &token, &exp; return true }) {
		return repository.ErrUserNotFound
	}
	return nil
}

func (m *memUsers) ResetPassword(ctx context.Context, email, token, hash string, now time.Time) (bool, error) {
	return m.update(email, func(u *model.User) bool {
		if u.ResetToken == nil || *u.ResetToken != token || !u.ResetExpiresAt.After(now) {
			return false
		}
		u.PasswordHash, u.ResetToken, u.ResetExpiresAt = hash, nil, nil
		return true
	}), nil
}

func (m *memUsers) UpdateProfile(ctx context.Context, id uint64, username, picture string) (*model.User, error) {
	m.mu.Lock()
	for _, u := range m.users {
		if u.ID != id && u.Username == username {
			m.mu.Unlock()
			return nil, repository.ErrUsernameTaken
		}
	}
	u, ok := m.users[id]
	if ok {
		u.Username, u.Picture = username, picture
	}
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return m.GetByID(ctx, id)
}

type memTokens struct {
	mu     sync.Mutex
	hashes map[uint64]string
}

func (m *memTokens) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[userID] = tokenHash
	return nil
}

func (m *memTokens) ValidateRefresh(ctx context.Context, userID uint64, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hashes[userID] != tokenHash || tokenHash == "" {
		return repository.ErrRefreshInvalid
	}
	return nil
}

func (m *memTokens) Revoke(ctx context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hashes, userID)
	return nil
}

type sentMail struct{ to, subject, otp string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) SendOTP(ctx context.Context, to, subject, otp string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to, subject, otp})
	return nil
}

func (f *fakeMailer) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type userFixture struct {
	svc    *UserService
	users  *memUsers
	tokens *memTokens
	mail   *fakeMailer
	img    *fakeImages
}

func newUserFixture() userFixture {
	f := userFixture{users: newMemUsers(), tokens: &memTokens{hashes: map[uint64]string{}}, mail: &fakeMailer{}, img: &fakeImages{}}
	log, _ := testLogger()
	f.svc = NewUserService(f.users, f.tokens, f.mail, f.img, newValidator(), AuthConfig{
		JWTSecret: "s3cret", AccessTTLMin: 15, RefreshTTLDays: 30, BcryptCost: 4,
		OTPTTL: 5 * time.Minute, DefaultPicture: "/static/profile.png",
	}, log)
	return f
}

var registerInput = RegisterInput{Name: "Budi", Email: "budi@x.io", Username: "budi", Password: "secret1"}

func TestRegisterVerifyLogin(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	u, err := f.svc.Register(ctx, registerInput, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RoleBuyer, u.Role)
	assert.Equal(t, "/static/profile.png", u.Picture)
	assert.False(t, u.IsVerified)
	mail := f.mail.last()
	assert.Equal(t, "budi@x.io", mail.to)
	assert.Len(t, mail.otp, 6)

	actor := model.Actor{ID: u.ID, Email: u.Email}
	err = f.svc.VerifyEmail(ctx, actor, VerifyEmailInput{Token: "000000x"})
	assert.Equal(t, "failed for verified your email, please try again", err.Error())
	require.NoError(t, f.svc.VerifyEmail(ctx, actor, VerifyEmailInput{Token: mail.otp}))
	err = f.svc.VerifyEmail(ctx, actor, VerifyEmailInput{Token: mail.otp})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Equal(t, "Email already verified", f.svc.ResendToken(ctx, actor).Error())

	pair, err := f.svc.Login(ctx, LoginInput{Email: "budi@x.io", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = f.svc.Login(ctx, LoginInput{Username: "budi", Password: "wrong-one"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	_, err = f.svc.Login(ctx, LoginInput{Username: "nobody", Password: "secret1"})
	assert.Equal(t, "user not found", err.Error())
	_, err = f.svc.Login(ctx, LoginInput{Password: "secret1"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestLoginFallsBackToEmailOnlyForUnknownUsername(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerInput, nil)
	require.NoError(t, err)

	pair, err := f.svc.Login(ctx, LoginInput{Username: "ghost", Email: "budi@x.io", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	f.users.usernameErr = errBoom
	_, err = f.svc.Login(ctx, LoginInput{Username: "budi", Email: "budi@x.io", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInternal))
	assert.ErrorIs(t, err, errBoom)
}

func TestRegisterDuplicateRemovesUpload(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerInput, nil)
	require.NoError(t, err)

	in := registerInput
	in.Email = "other@x.io"
	_, err = f.svc.Register(ctx, in, upload())
	assert.Equal(t, 409, apperror.StatusOf(err))
	assert.Equal(t, f.img.uploaded, f.img.deleted)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	u, err := f.svc.Register(ctx, registerInput, nil)
	require.NoError(t, err)

	first, err := f.svc.Login(ctx, LoginInput{Username: "budi", Password: "secret1"})
	require.NoError(t, err)
	second, err := f.svc.Refresh(ctx, RefreshInput{UserID: u.ID, RefreshToken: first.RefreshToken})
	require.NoError(t, err)

	// the first refresh token was replaced
	_, err = f.svc.Refresh(ctx, RefreshInput{UserID: u.ID, RefreshToken: first.RefreshToken})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	require.NoError(t, f.svc.Logout(ctx, model.Actor{ID: u.ID}))
	_, err = f.svc.Refresh(ctx, RefreshInput{UserID: u.ID, RefreshToken: second.RefreshToken})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestForgetAndResetPassword(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerInput, nil)
	require.NoError(t, err)

	err = f.svc.ForgetPassword(ctx, ForgetPasswordInput{Email: "nobody@x.io"})
	assert.Equal(t, "Email not found", err.Error())

	require.NoError(t, f.svc.ForgetPassword(ctx, ForgetPasswordInput{Email: "budi@x.io"}))
	otp := f.mail.last().otp

	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "budi@x.io", Token: "999999x", NewPassword: "newpass1", ValidPassword: "newpass1"})
	assert.Equal(t, "user not found or token expired", err.Error())

	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "budi@x.io", Token: otp, NewPassword: "newpass1", ValidPassword: "newpass2"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "budi@x.io", Token: otp, NewPassword: "newpass1", ValidPassword: "newpass1"}))
	_, err = f.svc.Login(ctx, LoginInput{Username: "budi", Password: "newpass1"})
	assert.NoError(t, err)

	// the token is single use
	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "budi@x.io", Token: otp, NewPassword: "newpass3", ValidPassword: "newpass3"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestUpdateProfile(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	u, err := f.svc.Register(ctx, registerInput, nil)
	require.NoError(t, err)
	in := registerInput
	in.Email, in.Username = "ani@x.io", "ani"
	_, err = f.svc.Register(ctx, in, nil)
	require.NoError(t, err)
	actor := model.Actor{ID: u.ID}

	_, err = f.svc.UpdateProfile(ctx, actor, UpdateProfileInput{Username: strp("ani")}, upload())
	assert.Equal(t, "Username already exists", err.Error())
	assert.Equal(t, f.img.uploaded, f.img.deleted)

	got, err := f.svc.UpdateProfile(ctx, actor, UpdateProfileInput{Username: strp("budi2")}, upload())
	require.NoError(t, err)
	assert.Equal(t, "budi2", got.Username)
	assert.Equal(t, f.img.uploaded[1], got.Picture)
	// the default picture is never deleted
	assert.NotContains(t, f.img.deleted, "/static/profile.png")

	p, err := f.svc.Profile(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "budi2", p.Username)
}

package user

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustynLim/SoC-SMS/core"
)

type fakeUserRepo struct {
	users map[string]User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]User)}
}

func (r *fakeUserRepo) CheckEmailUniqueness(email string, excl ...User) error {
	for _, usr := range r.users {
		if usr.Email != email {
			continue
		}
		excluded := false
		for _, ex := range excl {
			if ex.ID == usr.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeUserRepo) CreateUser(usr User) (User, error) {
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *fakeUserRepo) QueryAllUsers() ([]User, error) {
	all := make([]User, 0, len(r.users))
	for _, usr := range r.users {
		all = append(all, usr)
	}
	return all, nil
}

func (r *fakeUserRepo) GetUserByID(id string) (User, error) {
	usr, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (User, error) {
	for _, usr := range r.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeUserRepo) UpdateUser(usr User, isActive *bool) (User, error) {
	orig, ok := r.users[usr.ID]
	if !ok {
		return User{}, ErrNotFound
	}
	if usr.Name != "" {
		orig.Name = usr.Name
	}
	if usr.Email != "" {
		orig.Email = usr.Email
	}
	if usr.Role != "" {
		orig.Role = usr.Role
	}
	if len(usr.PasswordHash) > 0 {
		orig.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	if !usr.LastLogin.IsZero() {
		orig.LastLogin = usr.LastLogin
	}
	orig.TwoFAVerified = orig.TwoFAVerified || usr.TwoFAVerified
	orig.UpdatedAt = usr.UpdatedAt
	r.users[usr.ID] = orig
	return orig, nil
}

func (r *fakeUserRepo) DeleteUsersByID(ids ...string) error {
	for _, id := range ids {
		delete(r.users, id)
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testService(t *testing.T) (*Service, *fakeUserRepo, *core.Config) {
	t.Helper()
	repo := newFakeUserRepo()
	conf := &core.Config{
		SecretKey:                 "test-secret-key",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	return NewService(repo, conf, nopLogger{}), repo, conf
}

func TestServiceCreateAndAuthenticate(t *testing.T) {
	svc, _, _ := testService(t)

	usr, err := svc.Create(NewUser{
		Name:     "Jane Staff",
		Email:    "jane@soc.test",
		Password: "W1nter-Gr8tness",
		Role:     RoleStaff,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.True(t, usr.IsActive)

	t.Run("valid credentials", func(t *testing.T) {
		got, err := svc.Authenticate(Credentials{Email: "jane@soc.test", Password: "W1nter-Gr8tness"})
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
		assert.False(t, got.LastLogin.IsZero())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(Credentials{Email: "jane@soc.test", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(Credentials{Email: "ghost@soc.test", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated user", func(t *testing.T) {
		inactive := false
		_, err := svc.Update(usr.ID, UpdateUser{IsActive: &inactive})
		require.NoError(t, err)
		_, err = svc.Authenticate(Credentials{Email: "jane@soc.test", Password: "W1nter-Gr8tness"})
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestServiceTwoFA(t *testing.T) {
	svc, _, conf := testService(t)

	usr, err := svc.Create(NewUser{
		Name:     "Admin One",
		Email:    "admin@soc.test",
		Password: "W1nter-Gr8tness",
		Role:     RoleAdmin,
	})
	require.NoError(t, err)

	key, err := GenerateTOTPKey(usr.Email)
	require.NoError(t, err)
	conf.TwoFASecret = key.Secret()

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	require.NoError(t, err)

	t.Run("bad otp rejected", func(t *testing.T) {
		_, err := svc.Authenticate(Credentials{Email: "admin@soc.test", Password: "W1nter-Gr8tness", OTP: "000000"})
		assert.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("valid otp accepted", func(t *testing.T) {
		got, err := svc.Authenticate(Credentials{Email: "admin@soc.test", Password: "W1nter-Gr8tness", OTP: code})
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
	})

	t.Run("verify enrollment", func(t *testing.T) {
		got, err := svc.VerifyTwoFA(usr, VerifyTwoFA{OTP: code})
		require.NoError(t, err)
		assert.True(t, got.TwoFAVerified)
	})
}

func TestServicePasswordReset(t *testing.T) {
	svc, repo, _ := testService(t)

	usr, err := svc.Create(NewUser{
		Name:     "Forgetful",
		Email:    "forgot@soc.test",
		Password: "W1nter-Gr8tness",
	})
	require.NoError(t, err)

	uid, token := svc.MakeResetToken(usr)

	got, err := svc.ResetPassword(ResetUserPassword{
		Token:           token,
		UID:             uid,
		Password:        "Aut0mn-Gr8tness",
		PasswordConfirm: "Aut0mn-Gr8tness",
	})
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("Aut0mn-Gr8tness"))

	t.Run("token single use", func(t *testing.T) {
		// hash changed; the old token no longer verifies
		_, err := svc.ResetPassword(ResetUserPassword{
			Token:           token,
			UID:             uid,
			Password:        "Summ3r-Gr8tness",
			PasswordConfirm: "Summ3r-Gr8tness",
		})
		assert.ErrorIs(t, err, errInvalidToken)
	})

	t.Run("unknown uid", func(t *testing.T) {
		delete(repo.users, usr.ID)
		_, err := svc.ResetPassword(ResetUserPassword{
			Token: token, UID: uid, Password: "x", PasswordConfirm: "x",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNewUserValidation(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.Create(NewUser{
		Name:     "Dup",
		Email:    "dup@soc.test",
		Password: "W1nter-Gr8tness",
	})
	require.NoError(t, err)

	nu := NewUser{
		Name:            "Dup Two",
		Email:           "dup@soc.test",
		Password:        "W1nter-Gr8tness",
		PasswordConfirm: "W1nter-Gr8tness",
	}
	err = nu.Validate(svc)
	require.Error(t, err)
	var vErr *core.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

package user

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JustynLim/SoC-SMS/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOTP         = errors.New("invalid one-time password")
	ErrUserInactive       = errors.New("user account is deactivated")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		UpdateUser(user User, isActive *bool) (User, error)
		DeleteUsersByID(ids ...string) error
	}

	Service struct {
		repo Repository
		conf *core.Config
		log  core.Logger
	}
)

func NewService(repo Repository, conf *core.Config, log core.Logger) *Service {
	secretKey = []byte(conf.SecretKey)
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &Service{repo: repo, conf: conf, log: log}
}

func (svc *Service) checkEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  true,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

// Authenticate checks a user's credentials and the shared TOTP code.
// On success the user's LastLogin is advanced.
func (svc *Service) Authenticate(creds Credentials) (User, error) {
	usr, err := svc.repo.GetUserByEmail(core.CleanString(creds.Email, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if usr.CheckPassword(creds.Password) != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrUserInactive
	}
	if svc.conf.TwoFASecret != "" {
		if !ValidateTOTP(creds.OTP, svc.conf.TwoFASecret) {
			return User{}, ErrInvalidOTP
		}
	}
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(usr, nil)
}

// SetupTwoFA generates and persists a fresh TOTP secret and returns the
// provisioning URL to display as a QR code. It is a no-op when a secret
// already exists.
func (svc *Service) SetupTwoFA(accountName string) (string, error) {
	if svc.conf.TwoFASecret != "" {
		return "", nil
	}
	key, err := GenerateTOTPKey(accountName)
	if err != nil {
		return "", err
	}
	if err = svc.conf.SaveTwoFASecret(key.Secret()); err != nil {
		return "", err
	}
	return key.URL(), nil
}

// VerifyTwoFA validates a code and marks the user's enrollment complete.
func (svc *Service) VerifyTwoFA(usr User, v VerifyTwoFA) (User, error) {
	if !ValidateTOTP(v.OTP, svc.conf.TwoFASecret) {
		return User{}, ErrInvalidOTP
	}
	usr.TwoFAVerified = true
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr, nil)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Email:     uu.Email,
		Role:      uu.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(usr, uu.IsActive)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteUsersByID(ids...)
}

// MakeResetToken builds the uid/token pair embedded in a password reset link.
func (svc *Service) MakeResetToken(usr User) (uid, token string) {
	return EncodeUID(usr), makeToken(usr)
}

// ResetPassword validates a reset token and sets the new password.
func (svc *Service) ResetPassword(rp ResetUserPassword) (User, error) {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return User{}, errInvalidToken
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr, nil)
}

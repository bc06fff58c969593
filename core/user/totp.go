package user

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "SoC-SMS"

// GenerateTOTPKey creates a new time-based OTP key for a user. The returned
// key's Secret is stored server-side and its URL can be rendered as a QR code
// for authenticator apps.
func GenerateTOTPKey(accountName string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountName,
	})
}

// ValidateTOTP checks a 6-digit code against the shared secret.
func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}

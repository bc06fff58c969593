package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenGenerator(t *testing.T) {
	usr := User{ID: "0e62b642-b1ef-4c1f-9e7a-ba8f0a12ffd7", Email: "awa@test.cm"}
	usr.SetPassword("LeeTom@Number1")

	t.Run("make token", func(t *testing.T) {
		token := makeToken(usr)
		assert.NotEmpty(t, token)
		assert.NoError(t, verifyToken(usr, token))
	})

	t.Run("10 tokens", func(t *testing.T) {
		// multiple tokens generated at the same time remain valid
		tokens := make([]string, 10)
		for i := range tokens {
			tokens[i] = makeToken(usr)
		}
		for _, token := range tokens {
			assert.NoError(t, verifyToken(usr, token))
		}
	})

	t.Run("failures", func(t *testing.T) {
		tests := []struct {
			name    string
			token   func() string
			wantErr error
		}{
			{
				name:    "empty token",
				token:   func() string { return "" },
				wantErr: errInvalidToken,
			},
			{
				name:    "malformed token",
				token:   func() string { return "no-dash-separated-garbage!!" },
				wantErr: errInvalidToken,
			},
			{
				name: "tampered token",
				token: func() string {
					other := usr
					other.SetPassword("An0ther-Passw0rd")
					return makeToken(other)
				},
				wantErr: errInvalidToken,
			},
			{
				name: "expired token",
				token: func() string {
					defer func() { nowFunc = time.Now }()
					nowFunc = func() time.Time {
						return time.Now().Add(-(passwordResetTimeoutDelta + 24*time.Hour))
					}
					return makeToken(usr)
				},
				wantErr: errTokenExpired,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := verifyToken(usr, tt.token())
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})

	t.Run("uid round trip", func(t *testing.T) {
		uid := EncodeUID(usr)
		id, err := decodeUID(uid)
		assert.NoError(t, err)
		assert.Equal(t, usr.ID, id)
	})
}

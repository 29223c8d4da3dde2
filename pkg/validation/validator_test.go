package validation

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	FirstName string `json:"first_name" binding:"required,personname"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
}

func engine(t *testing.T) *validator.Validate {
	t.Helper()
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v
}

func TestInit_Aliases(t *testing.T) {
	v := engine(t)

	tests := []struct {
		name    string
		payload signupPayload
		wantErr bool
	}{
		{
			name:    "valid payload",
			payload: signupPayload{FirstName: "Ada", Email: "a@b.co", Password: "secret5"},
			wantErr: false,
		},
		{
			name:    "password too short",
			payload: signupPayload{FirstName: "Ada", Email: "a@b.co", Password: "abcd"},
			wantErr: true,
		},
		{
			// bcrypt rejects input over 72 bytes, so the alias has to
			// stop such passwords before they reach the hasher
			name:    "password at bcrypt limit",
			payload: signupPayload{FirstName: "Ada", Email: "a@b.co", Password: strings.Repeat("p", 72)},
			wantErr: false,
		},
		{
			name:    "password over bcrypt limit",
			payload: signupPayload{FirstName: "Ada", Email: "a@b.co", Password: strings.Repeat("p", 73)},
			wantErr: true,
		},
		{
			name:    "name too short",
			payload: signupPayload{FirstName: "A", Email: "a@b.co", Password: "secret5"},
			wantErr: true,
		},
		{
			name:    "bad email",
			payload: signupPayload{FirstName: "Ada", Email: "not-an-email", Password: "secret5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToDetails_UsesJSONFieldNames(t *testing.T) {
	v := engine(t)

	err := v.Struct(signupPayload{FirstName: "Ada", Email: "a@b.co", Password: "abcd"})
	require.Error(t, err)

	details := ToDetails(err)
	require.Contains(t, details, "password")
	assert.NotContains(t, details, "Password")
}

func TestToDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, ToDetails(nil))

	details := ToDetails(assert.AnError)
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, details)
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid username - lowercase",
			username: "aficionado",
		},
		{
			name:     "valid username - with dot and underscore",
			username: "cigar.lover_42",
		},
		{
			name:     "valid username - max length",
			username: "a12345678901234567890123456789", // 30 символов
		},
		{
			name:     "empty",
			username: "",
			wantErr:  true,
			errMsg:   "cannot be empty",
		},
		{
			name:     "too short",
			username: "ab",
			wantErr:  true,
			errMsg:   "at least 3",
		},
		{
			name:     "too long",
			username: "a123456789012345678901234567890",
			wantErr:  true,
			errMsg:   "must not exceed 30",
		},
		{
			name:     "invalid characters",
			username: "bad-name!",
			wantErr:  true,
			errMsg:   "can only contain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalid)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

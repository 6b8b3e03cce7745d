package auth

import (
	"testing"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePin(t *testing.T) {
	tests := []struct {
		pin     string
		wantErr bool
	}{
		{"1234", false},
		{"0000", false},
		{"123", true},
		{"12345", true},
		{"12a4", true},
		{"", true},
		{"١٢٣٤", true},
	}
	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			err := ValidatePin(tt.pin)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrorValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPinHasher(t *testing.T) {
	h := NewPinHasher(bcrypt.MinCost)

	hash, err := h.Hash("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", hash)

	assert.True(t, h.Check(hash, "1234"))
	assert.False(t, h.Check(hash, "4321"))
	assert.False(t, h.Check("not-a-hash", "1234"))
}

func TestNewPinHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPinHasher(0).cost)
	assert.Equal(t, bcrypt.MinCost, NewPinHasher(1).cost)
	assert.Equal(t, bcrypt.MaxCost, NewPinHasher(99).cost)
}

func TestHashToken(t *testing.T) {
	a := HashToken("abc")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashToken("abc"))
	assert.NotEqual(t, a, HashToken("abd"))
}

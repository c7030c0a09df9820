package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNilRecord", ErrNilRecord},
		{"ErrInvalidAgency", ErrInvalidAgency},
		{"ErrStructuralConflict", ErrStructuralConflict},
		{"ErrReferentialIntegrity", ErrReferentialIntegrity},
		{"ErrEncoding", ErrEncoding},
		{"ErrNotReady", ErrNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestUpdateError_IsKind(t *testing.T) {
	err := NewUpdateError(ErrStructuralConflict, KeyEnrichmentHasParent, nil, "123", 700400)

	assert.True(t, errors.Is(err, ErrStructuralConflict))
	assert.False(t, errors.Is(err, ErrReferentialIntegrity))
	assert.Equal(t, "Påhængsposten '123:700400' må ikke pege på en hovedpost", err.Error())
}

func TestUpdateError_UnwrapsCause(t *testing.T) {
	cause := errors.New("strconv failure")
	err := NewUpdateError(ErrInvalidAgency, KeyInvalidAgency, cause, "abc")

	assert.ErrorIs(t, err, ErrInvalidAgency)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Biblioteksnummeret 'abc' er ikke et tal", err.Error())
}

func TestUpdateError_As(t *testing.T) {
	inner := NewUpdateError(ErrReferentialIntegrity, KeyDeleteHoldings, nil, "123", 700400, []int{700500})
	inner.Agencies = []int{700500}
	wrapped := fmt.Errorf("update record: %w", inner)

	var target *UpdateError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, KeyDeleteHoldings, target.Key)
	assert.Equal(t, []int{700500}, target.Agencies)
}

func TestUpdateError_ErrorWithoutMessage(t *testing.T) {
	err := &UpdateError{Kind: ErrEncoding, Err: errors.New("bad xml")}
	assert.Equal(t, "encoding failed: bad xml", err.Error())

	bare := &UpdateError{Kind: ErrNotReady}
	assert.Equal(t, "service not ready", bare.Error())
}

func TestMessage(t *testing.T) {
	t.Run("known key with args", func(t *testing.T) {
		msg := Message(KeySaveEmptyRecord, "42", 191919)
		assert.Equal(t, "Posten '42:191919' kan ikke gemmes, da den er tom", msg)
	})

	t.Run("known key without args", func(t *testing.T) {
		assert.Equal(t, "Posten er ikke angivet", Message(KeyRecordIsNull))
	})

	t.Run("unknown key renders key", func(t *testing.T) {
		assert.Equal(t, "no.such.key", Message("no.such.key"))
	})
}

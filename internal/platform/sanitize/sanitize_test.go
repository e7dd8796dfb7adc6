package sanitize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"rest", false},
		{"Paracetamol 500mg every 8 hours", false},
		{"O'Higgins", false},
		{"Ordering supplies", false},
		{"Candy", false},
		{"selection of gauze", false},
		{"", false},
		{"x; DROP TABLE account", true},
		{"ana' --", true},
		{"/* hidden */", true},
		{"1 or 1=1", true},
		{"salt AND pepper", true},
		{"a UNION b", true},
		{"select", true},
		{"Insert coin", true},
		{"please update me", true},
		{"delete", true},
		{"exec xp_cmdshell", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := Check("description", tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrSuspiciousInput))
				var fe *FieldError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, "description", fe.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFields_FirstFailureWins(t *testing.T) {
	err := Fields("name", "Ana", "surname", "Diaz; --", "locality", "x OR y")
	require.Error(t, err)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "surname", fe.Field)
	assert.Equal(t, ";", fe.Token)

	assert.NoError(t, Fields("name", "Ana", "surname", "Diaz"))
}

func TestFields_OddArgsPanics(t *testing.T) {
	assert.Panics(t, func() { _ = Fields("name") })
}

package cnpj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"94.984.296/0001-76", true},
		{"11.222.333/0001-81", true},
		{"11222333000181", true},
		{"11.222.333/0001-82", false},
		{"00.000.000/0000-00", false},
		{"1122233300018", false},
		{"1122233300018a", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Valid(tc.in), tc.in)
	}
}

func TestFormat(t *testing.T) {
	got, err := Format("11222333000181")
	require.NoError(t, err)
	assert.Equal(t, "11.222.333/0001-81", got)

	_, err = Format("123")
	require.ErrorIs(t, err, ErrInvalid)
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0908805805", "0908805805"},
		{"+886-912-345-678", "912345678"},
		{"(0908) 805-805", "0908805805"},
		{"886908805805", "908805805"},
		{"+39 347 123 4567 89", "7123456789"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

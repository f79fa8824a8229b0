package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  Hanshin   Tigers ", "hanshin tigers"},
		{"Orix Buffaloes", "orix buffaloes"},
		{"Saitama Seibu Lions", "saitama seibu lions"},
		{"Fukuoka SoftBank Hawks", "fukuoka softbank hawks"},
		{"Tōhoku Rakuten", "tohoku rakuten"},
		{"한화 이글스", "한화 이글스"},
		{"KIA", "kia"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestAliases(t *testing.T) {
	a := make(Aliases)
	a.Add("SK 와이번스", "SSG")
	a.Add("", "nobody")

	id, ok := a.Lookup("sk  와이번스")
	assert.True(t, ok)
	assert.Equal(t, "SSG", id)

	_, ok = a.Lookup("nobody")
	assert.False(t, ok)
	assert.Len(t, a, 1)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "hello there", nil},
		{"empty", "", nil},
		{"bare at", "mail me @ home", nil},
		{"single", "hi @B how are you", []string{"B"}},
		{"dedup keeps first order", "@bob @alice @bob", []string{"bob", "alice"}},
		{"punctuation ends handle", "ping @bob, @alice!", []string{"bob", "alice"}},
		{"underscore and digits", "@anna_2 here", []string{"anna_2"}},
		{"cyrillic", "привет @Маша", []string{"Маша"}},
		{"email-like", "write to a@b.c", []string{"b"}},
		{"case sensitive", "@Bob @bob", []string{"Bob", "bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMentions(tt.text))
		})
	}
}

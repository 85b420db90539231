package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	valid := []string{"bob", "alice_99", "ABC", strings.Repeat("a", 30)}
	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), "username %q", u)
	}

	invalid := []string{"", "ab", "has space", "bad!", "émile", strings.Repeat("a", 31)}
	for _, u := range invalid {
		assert.Error(t, ValidateUsername(u), "username %q", u)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateEmail("a@b.co"))
	assert.NoError(t, ValidateEmail("first.last+tag@example.org"))

	invalid := []string{"", "plain", "@no.local", "no@tld", "two@@example.com", "sp ace@example.com"}
	for _, e := range invalid {
		assert.Error(t, ValidateEmail(e), "email %q", e)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePassword("secret1234"))
	assert.NoError(t, ValidatePassword("A1"+strings.Repeat("x", 10)))

	tests := map[string]string{
		"too short": "abc1",
		"no digit":  "onlyletters",
		"no letter": "12345678",
		"too long":  strings.Repeat("a1", 70),
	}
	for name, password := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidatePassword(password))
		})
	}
}

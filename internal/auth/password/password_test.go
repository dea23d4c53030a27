package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	assert.True(t, Verify("correct horse battery staple", encoded))
	assert.False(t, Verify("correct horse battery stapl", encoded))
	assert.False(t, Verify("", encoded))
}

func TestHash_UniqueSalts(t *testing.T) {
	a, err := Hash("same-password")
	require.NoError(t, err)
	b, err := Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	assert.True(t, Verify("same-password", a))
	assert.True(t, Verify("same-password", b))
}

func TestVerify_MalformedEncodings(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=abc,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!",
	}
	for _, encoded := range cases {
		assert.False(t, Verify("whatever", encoded), encoded)
	}
}

package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = Params{Memory: 8 * 1024, Time: 1, Threads: 1}

func TestHash_VerifiesOriginal(t *testing.T) {
	for _, secret := range []string{"", "correct horse battery staple", "pässwörd", strings.Repeat("x", 200)} {
		hash, err := HashWithParams(secret, fastParams)
		require.NoError(t, err)

		assert.True(t, Verify(secret, hash), secret)
	}
}

func TestHash_RejectsOtherSecrets(t *testing.T) {
	hash, err := HashWithParams("s3cret", fastParams)
	require.NoError(t, err)

	assert.False(t, Verify("s3cret ", hash))
	assert.False(t, Verify("S3cret", hash))
	assert.False(t, Verify("", hash))
}

func TestHash_IsSalted(t *testing.T) {
	first, err := HashWithParams("same", fastParams)
	require.NoError(t, err)
	second, err := HashWithParams("same", fastParams)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("same", first))
	assert.True(t, Verify("same", second))
}

func TestHash_DefaultParams(t *testing.T) {
	hash, err := Hash("default")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=4$"))
	assert.True(t, Verify("default", hash))
}

func TestVerify_MalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$",
	} {
		assert.False(t, Verify("anything", encoded), encoded)
	}
}

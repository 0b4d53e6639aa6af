package upload

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanFilename(t *testing.T) {
	name, err := CleanFilename("dir/../photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", name)

	for _, bad := range []string{"", " ", "..", `a\b`} {
		_, err := CleanFilename(bad)
		assert.Error(t, err, bad)
	}
}

func TestCleanKey(t *testing.T) {
	key, err := CleanKey(" 0190a1b2-c3d4 ")
	require.NoError(t, err)
	assert.Equal(t, "0190a1b2-c3d4", key)

	for _, bad := range []string{"", "a/b", "..", "a_b"} {
		_, err := CleanKey(bad)
		assert.Error(t, err, bad)
	}
}

type secretStore struct {
	Store
}

func (secretStore) HMAC(key string, filename string, w int, h int, ts int64) string {
	return HMAC([]byte("secret"), key, filename, w, h, ts)
}

func TestSignedUrl(t *testing.T) {
	var signed = SignedUrl(secretStore{}, "abc", "photo.jpg", 288, 0, 1700000000)

	u, err := url.Parse(signed)
	require.NoError(t, err)

	loc, err := ParseUrl(u)
	require.NoError(t, err)
	assert.Equal(t, "abc", loc.Key)
	assert.Equal(t, "photo.jpg", loc.Filename)
	assert.True(t, loc.Resize)
	assert.Equal(t, 288, loc.W)
	assert.Equal(t, 0, loc.H)
	assert.Equal(t, int64(1700000000), loc.TS)
	assert.Equal(t, HMAC([]byte("secret"), "abc", "photo.jpg", 288, 0, 1700000000), string(loc.Sig))
}

func TestParseUrl(t *testing.T) {
	loc, err := ParseUrl(&url.URL{Path: "abc/talk.mp3", RawQuery: "w=100"})
	require.NoError(t, err)
	assert.False(t, loc.Resize)

	_, err = ParseUrl(&url.URL{Path: "a/b/photo.jpg"})
	assert.Error(t, err)
}

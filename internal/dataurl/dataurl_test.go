package dataurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	s := Encode("image/jpeg", []byte{0xff, 0xd8, 0xff})
	assert.Equal(t, "data:image/jpeg;base64,/9j/", s)

	mime, data, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
}

func TestDecode_BarePayload(t *testing.T) {
	mime, data, err := Decode("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
	assert.Equal(t, "hello", string(data))
}

func TestDecode_Invalid(t *testing.T) {
	for _, in := range []string{"", "data:image/png,abc", "data:image/png;base64", "data:image/png;base64,***"} {
		_, _, err := Decode(in)
		assert.ErrorIs(t, err, ErrInvalid, in)
	}
}

func TestSniff(t *testing.T) {
	assert.Equal(t, "image/png", Sniff([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")))
	assert.Equal(t, "image/jpeg", Sniff([]byte{0xff, 0xd8, 0xff, 0xe0}))
}

func TestDecodeImage(t *testing.T) {
	mime, _, err := DecodeImage("data:image/jpeg;base64,/9j/4AAQSkZJRg==")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	mime, _, err = DecodeImage("iVBORw0KGgo=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	// Valid base64, but text.
	_, _, err = DecodeImage("aGVsbG8gd29ybGQ=")
	assert.ErrorIs(t, err, ErrNotImage)
	_, _, err = DecodeImage("data:image/png;base64,aGVsbG8gd29ybGQ=")
	assert.ErrorIs(t, err, ErrNotImage)

	_, _, err = DecodeImage("data:image/png;base64,***")
	assert.ErrorIs(t, err, ErrInvalid)
}

// Package dataurl encodes and decodes the base64 image data URLs used for
// photos and signatures on the wire.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrInvalid  = errors.New("invalid data url")
	ErrNotImage = errors.New("data url does not hold an image")
)

// Encode returns "data:<mime>;base64,<payload>".
func Encode(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode returns the MIME type and raw bytes of a data URL. A bare base64
// payload without the "data:" prefix is accepted; its MIME type is sniffed.
func Decode(s string) (string, []byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil, ErrInvalid
	}

	mime := ""
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, rest, ok := strings.Cut(s, ",")
		if !ok {
			return "", nil, ErrInvalid
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return "", nil, ErrInvalid
		}
		mime = strings.TrimSuffix(meta, ";base64")
		payload = rest
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrInvalid, err)
	}
	if mime == "" {
		mime = Sniff(data)
	}
	return mime, data, nil
}

// DecodeImage is Decode for photo and signature data: the payload itself
// must sniff as an image, whatever the header claims. The returned MIME
// type is the sniffed one.
func DecodeImage(s string) (string, []byte, error) {
	_, data, err := Decode(s)
	if err != nil {
		return "", nil, err
	}
	mime := Sniff(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", nil, fmt.Errorf("%w: %s", ErrNotImage, mime)
	}
	return mime, data, nil
}

// Sniff detects the MIME type of raw bytes, without parameters.
func Sniff(data []byte) string {
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return mime
}

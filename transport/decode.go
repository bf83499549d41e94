// Package transport decodes ROM images received as encoded text payloads
// (base64, base64url or hex) and checks them against the size and SHA-256
// digest declared alongside the payload by the publishing layer.
package transport

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Encoding identifies the textual encoding of a ROM payload.
type Encoding string

const (
	EncodingBase64    Encoding = "base64"
	EncodingBase64URL Encoding = "base64url"
	EncodingHex       Encoding = "hex"
)

// Compression identifies the payload compression. Only "none" is accepted;
// compressed payloads are a non-goal of this layer.
type Compression string

const CompressionNone Compression = "none"

// DefaultMaxDecodedSize bounds memory use against hostile declared sizes.
const DefaultMaxDecodedSize = 4 * 1024 * 1024

var (
	// ErrUnsupportedEncoding is returned for an encoding other than
	// base64, base64url or hex.
	ErrUnsupportedEncoding = errors.New("unsupported payload encoding")

	// ErrUnsupportedCompression is returned for any compression other
	// than "none".
	ErrUnsupportedCompression = errors.New("unsupported payload compression")

	// ErrMalformedPayload is returned when the payload contains bytes
	// outside the encoding's alphabet or has an impossible length.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrSizeMismatch is returned when the decoded length differs from
	// the declared size.
	ErrSizeMismatch = errors.New("decoded size mismatch")

	// ErrHashMismatch is returned when the computed SHA-256 differs from
	// the declared digest.
	ErrHashMismatch = errors.New("sha256 mismatch")

	// ErrTooLarge is returned when the payload would decode to more than
	// the configured maximum.
	ErrTooLarge = errors.New("payload exceeds maximum decoded size")
)

// Meta carries the validation attributes declared next to a payload.
// Zero values mean "not declared" (except Compression, which defaults to
// none). MaxSize of 0 selects DefaultMaxDecodedSize.
type Meta struct {
	Encoding    Encoding
	Compression Compression
	Size        int    // declared decoded byte count; 0 = undeclared
	SHA256      string // declared hex digest; "" = undeclared
	MaxSize     int    // decoded size cap; 0 = DefaultMaxDecodedSize
}

// Result is a successfully decoded payload. SHA256 is always the computed
// digest of Data, whether or not a declared digest was present, so callers
// that only warn on mismatch still have it for diagnostics.
type Result struct {
	Data   []byte
	SHA256 string
}

// Decode decodes payload according to meta, enforcing the size bound before
// decoding wherever the decoded size is knowable in advance.
func Decode(payload string, meta Meta) (*Result, error) {
	if meta.Compression != "" && meta.Compression != CompressionNone {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, meta.Compression)
	}

	maxSize := meta.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxDecodedSize
	}
	if meta.Size > maxSize {
		return nil, fmt.Errorf("%w: declared %d bytes, limit %d", ErrTooLarge, meta.Size, maxSize)
	}

	var data []byte
	var err error
	switch meta.Encoding {
	case EncodingBase64:
		data, err = decodeBase64(payload, base64.StdEncoding, maxSize)
	case EncodingBase64URL:
		data, err = decodeBase64(payload, base64.URLEncoding, maxSize)
	case EncodingHex:
		data, err = decodeHex(payload, maxSize)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, meta.Encoding)
	}
	if err != nil {
		return nil, err
	}

	if meta.Size != 0 && len(data) != meta.Size {
		return nil, fmt.Errorf("%w: declared %d bytes, decoded %d", ErrSizeMismatch, meta.Size, len(data))
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	if meta.SHA256 != "" && !strings.EqualFold(meta.SHA256, digest) {
		return nil, fmt.Errorf("%w: declared %s, computed %s", ErrHashMismatch, strings.ToLower(meta.SHA256), digest)
	}

	return &Result{Data: data, SHA256: digest}, nil
}

// decodeBase64 decodes with the given alphabet, tolerating stripped padding.
func decodeBase64(payload string, enc *base64.Encoding, maxSize int) ([]byte, error) {
	// Re-pad: publishers are allowed to strip trailing '='.
	if !strings.HasSuffix(payload, "=") {
		switch len(payload) % 4 {
		case 1:
			return nil, fmt.Errorf("%w: impossible base64 length %d", ErrMalformedPayload, len(payload))
		case 2:
			payload += "=="
		case 3:
			payload += "="
		}
	}

	// Worst-case decoded size is known before decoding.
	if enc.DecodedLen(len(payload)) > maxSize+2 {
		return nil, fmt.Errorf("%w: payload is %d characters", ErrTooLarge, len(payload))
	}

	data, err := enc.Strict().DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(data) > maxSize {
		return nil, fmt.Errorf("%w: decoded %d bytes", ErrTooLarge, len(data))
	}
	return data, nil
}

func decodeHex(payload string, maxSize int) ([]byte, error) {
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("%w: odd hex length %d", ErrMalformedPayload, len(payload))
	}
	if len(payload)/2 > maxSize {
		return nil, fmt.Errorf("%w: payload is %d characters", ErrTooLarge, len(payload))
	}
	data, err := hex.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return data, nil
}

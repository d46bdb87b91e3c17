package ark

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Encoding selects how file content crosses the string boundary of
// ReadFileString and WriteFileString.
type Encoding string

const (
	// EncodingUTF8 treats the string as literal text. The default.
	EncodingUTF8 Encoding = "utf8"
	// EncodingBase64 is standard base64.
	EncodingBase64 Encoding = "base64"
	// EncodingHex is lowercase hexadecimal.
	EncodingHex Encoding = "hex"
	// EncodingBinary passes raw bytes through unchanged.
	EncodingBinary Encoding = "binary"
)

// Decode converts encoded text into raw bytes for storage.
func (e Encoding) Decode(s string) ([]byte, error) {
	switch e {
	case EncodingUTF8, "":
		return []byte(s), nil
	case EncodingBase64:
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64 payload: %v", ErrInvalidArgument, err)
		}
		return data, nil
	case EncodingHex:
		data, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad hex payload: %v", ErrInvalidArgument, err)
		}
		return data, nil
	case EncodingBinary:
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrInvalidArgument, string(e))
	}
}

// Encode converts raw bytes into encoded text for reading.
func (e Encoding) Encode(data []byte) (string, error) {
	switch e {
	case EncodingUTF8, "", EncodingBinary:
		return string(data), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(data), nil
	case EncodingHex:
		return hex.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", ErrInvalidArgument, string(e))
	}
}

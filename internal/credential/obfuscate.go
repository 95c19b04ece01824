package credential

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"
)

// mask ships inside every copy of the binary, so anyone holding the binary
// can unmask a stored value. Obfuscate keeps the secret from sitting in
// plaintext at rest and nothing more. It is not encryption and must not be
// presented as such.
var mask = []byte("just-app::local-obfuscation::v1")

var ErrCorruptValue = errors.New("stored credential is corrupt")

func Obfuscate(secret string) string {
	return base64.StdEncoding.EncodeToString(xorMask([]byte(secret)))
}

func Deobfuscate(stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", ErrCorruptValue
	}
	plain := xorMask(raw)
	if len(plain) == 0 || !utf8.Valid(plain) {
		return "", ErrCorruptValue
	}
	return string(plain), nil
}

func xorMask(input []byte) []byte {
	output := make([]byte, len(input))
	for index, value := range input {
		output[index] = value ^ mask[index%len(mask)]
	}
	return output
}

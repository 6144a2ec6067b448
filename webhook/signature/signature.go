package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// SecretPrefix is the prefix of endpoint signing secrets
	SecretPrefix = "whsec_"

	// Scheme is the signature scheme Header emits
	Scheme = "v1"

	// MinSecretLength is the minimum length of the part after the prefix
	MinSecretLength = 24
)

var errSecretMissingPrefix = fmt.Errorf("secret must start with %s", SecretPrefix)

// Secret is an endpoint signing secret. The whole string, prefix included,
// is the HMAC key.
type Secret struct {
	value string
}

// ParseSecret validates an encoded secret.
func ParseSecret(encoded string) (Secret, error) {
	if !strings.HasPrefix(encoded, SecretPrefix) {
		return Secret{}, errSecretMissingPrefix
	}
	if len(encoded)-len(SecretPrefix) < MinSecretLength {
		return Secret{}, fmt.Errorf("secret must have at least %d characters after the prefix", MinSecretLength)
	}
	return Secret{value: encoded}, nil
}

func (s Secret) String() string {
	return s.value
}

// Sign returns the hex HMAC-SHA256 of "{timestamp}.{payload}".
func Sign(secret Secret, timestamp time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret.value))
	mac.Write([]byte(strconv.FormatInt(timestamp.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Header builds the signature header value: t=<unix>,v1=<hex>
func Header(secret Secret, timestamp time.Time, payload []byte) string {
	return fmt.Sprintf("t=%d,%s=%s", timestamp.Unix(), Scheme, Sign(secret, timestamp, payload))
}

package signature

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Receiver side of the scheme, kept with the tests that check Header output.

const defaultTolerance = 5 * time.Minute

var (
	errInvalidHeader     = errors.New("invalid signature header")
	errNoValidSignature  = errors.New("no signature matches the payload")
	errTimestampTooOld   = errors.New("timestamp outside the tolerance window")
	errUnsupportedScheme = errors.New("no v1 signature in header")
)

type parsed struct {
	timestamp  time.Time
	signatures []string
}

// parseHeader skips unknown schemes; several v1 entries appear during
// secret rotation.
func parseHeader(header string) (parsed, error) {
	var p parsed
	var haveTimestamp bool
	for _, item := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			return parsed{}, fmt.Errorf("%w: %q", errInvalidHeader, item)
		}
		switch key {
		case "t":
			unix, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return parsed{}, fmt.Errorf("%w: bad timestamp %q", errInvalidHeader, value)
			}
			p.timestamp = time.Unix(unix, 0)
			haveTimestamp = true
		case Scheme:
			p.signatures = append(p.signatures, value)
		}
	}
	if !haveTimestamp {
		return parsed{}, fmt.Errorf("%w: missing timestamp", errInvalidHeader)
	}
	if len(p.signatures) == 0 {
		return parsed{}, errUnsupportedScheme
	}
	return p, nil
}

// verify checks header against payload. A zero tolerance skips the age check.
func verify(secret Secret, header string, payload []byte, now time.Time, tolerance time.Duration) error {
	p, err := parseHeader(header)
	if err != nil {
		return err
	}
	if tolerance > 0 && now.Sub(p.timestamp) > tolerance {
		return errTimestampTooOld
	}

	expected, _ := hex.DecodeString(Sign(secret, p.timestamp, payload))
	for _, sig := range p.signatures {
		got, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if subtle.ConstantTimeCompare(expected, got) == 1 {
			return nil
		}
	}
	return errNoValidSignature
}

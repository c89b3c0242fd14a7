package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenFormat = errors.New("invalid token format")
	ErrTokenSig    = errors.New("invalid token signature")
	ErrTokenExp    = errors.New("token expired")
	ErrTokenSID    = errors.New("session id mismatch")
)

// GenerateTransportToken builds the bearer token the transport presents when
// dialing the session websocket.
// Format: base64url(session_id + "." + exp_unix + "." + hex(hmac_sha256(secret, session_id+"."+exp)))
func GenerateTransportToken(secret, sessionID string, expUnix int64) string {
	msg := sessionID + "." + strconv.FormatInt(expUnix, 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	sig := hex.EncodeToString(mac.Sum(nil))
	return base64.RawURLEncoding.EncodeToString([]byte(msg + "." + sig))
}

// ValidateTransportToken checks signature, session binding and expiry (with
// clock skew allowance). Returns the embedded expiry on success.
func ValidateTransportToken(secret, token, expectSessionID string, now time.Time, skewSeconds int) (int64, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrTokenFormat
	}
	parts := strings.Split(string(b), ".")
	if len(parts) != 3 {
		return 0, ErrTokenFormat
	}
	sid, expStr, sigHex := parts[0], parts[1], parts[2]

	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return 0, ErrTokenFormat
	}
	if expectSessionID != "" && sid != expectSessionID {
		return 0, ErrTokenSID
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sid + "." + expStr))
	want := mac.Sum(nil)
	got, err := hex.DecodeString(sigHex)
	if err != nil {
		return 0, ErrTokenFormat
	}
	if !hmac.Equal(want, got) {
		return 0, ErrTokenSig
	}

	if now.Unix() > exp+int64(skewSeconds) {
		return 0, ErrTokenExp
	}
	return exp, nil
}

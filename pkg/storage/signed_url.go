package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenInvalid = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// SignedURLSigner issues HMAC-SHA256 download tokens of the form
// <resource id>.<expiry unix>.<base64 path>.<signature>. A token only opens the
// file it was issued for, and only for the resource it names.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *SignedURLSigner) sign(resourceID, expiry, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(resourceID + "|" + expiry + "|" + encodedPath)) //nolint:errcheck
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Generate binds relPath to resourceID until the signer TTL elapses.
func (s *SignedURLSigner) Generate(resourceID, relPath string) (string, time.Time, error) {
	if resourceID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("sign download: resource id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("sign download: secret not configured")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	token := strings.Join([]string{resourceID, expiry, encodedPath, s.sign(resourceID, expiry, encodedPath)}, ".")
	return token, expiresAt, nil
}

// Parse checks the signature and, unless allowExpired, the expiry.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (resourceID, relPath string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	resourceID, expiry, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(resourceID, expiry, encodedPath)), []byte(signature)) {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	expiresAt = time.Unix(unix, 0)
	if !allowExpired && s.now().After(expiresAt) {
		return "", "", time.Time{}, ErrTokenExpired
	}
	return resourceID, string(rawPath), expiresAt, nil
}

// Verify returns the stored path when token is current and was issued for resourceID.
func (s *SignedURLSigner) Verify(token, resourceID string) (string, error) {
	id, relPath, _, err := s.Parse(token, false)
	if err != nil {
		return "", err
	}
	if id != resourceID {
		return "", ErrTokenInvalid
	}
	return relPath, nil
}

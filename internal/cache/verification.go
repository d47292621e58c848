package cache

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// Verification kinds. Each kind keeps its own keyspace so an admin signup
// code can never validate a password reset.
const (
	VerifyAdminSignup   = "admin_signup"
	VerifyAdminEmail    = "admin_email"
	VerifyPasswordReset = "password_reset"
	VerifyUserSignup    = "user_signup"
)

// VerificationStore keeps pending OTP verifications in the cache. Entries
// expire through the cache TTL; there is no explicit cleanup.
type VerificationStore struct {
	cache Cache
}

// NewVerificationStore creates a verification store.
func NewVerificationStore(cache Cache) *VerificationStore {
	return &VerificationStore{cache: cache}
}

type verificationRecord struct {
	Code    string          `json:"code"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func verificationKey(kind, email string) string {
	return fmt.Sprintf("verify:%s:%s", kind, email)
}

// GenerateCode returns a 6-digit OTP.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Put stores a pending verification, replacing any previous one for the
// same (kind, email).
func (s *VerificationStore) Put(ctx context.Context, kind, email, code string, payload interface{}, ttl time.Duration) error {
	rec := verificationRecord{Code: code}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal verification payload: %w", err)
		}
		rec.Payload = data
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal verification record: %w", err)
	}
	return s.cache.Set(ctx, verificationKey(kind, email), string(data), ttl)
}

// Consume validates a code and, on success, removes the record and returns
// the stored payload. ok is false for an unknown email, an expired record
// or a wrong code.
func (s *VerificationStore) Consume(ctx context.Context, kind, email, code string) (payload json.RawMessage, ok bool, err error) {
	key := verificationKey(kind, email)
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}

	var rec verificationRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal verification record: %w", err)
	}
	if rec.Code != code {
		return nil, false, nil
	}

	if err := s.cache.Del(ctx, key); err != nil {
		return nil, false, err
	}
	return rec.Payload, true, nil
}

// Peek validates a code without consuming it. Used by the two-step password
// reset, where the code is checked once for UI feedback and consumed on the
// actual reset.
func (s *VerificationStore) Peek(ctx context.Context, kind, email, code string) (bool, error) {
	raw, err := s.cache.Get(ctx, verificationKey(kind, email))
	if err != nil {
		return false, err
	}
	if raw == "" {
		return false, nil
	}
	var rec verificationRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return false, fmt.Errorf("failed to unmarshal verification record: %w", err)
	}
	return rec.Code == code, nil
}

package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrIdempotencyConflict   = errors.New("idempotency key conflicts with existing request")
	ErrIdempotencyInProgress = errors.New("idempotency key is already being processed")
)

// Idempotency guards role mutations retried with the same Idempotency-Key so
// a retried promote does not climb twice. A key is claimed before the
// mutation runs. Completing the claim stores the response for replay;
// releasing it lets the next retry run again.
//
// Claim returns the stored response and true when the key already completed.
// It fails with ErrIdempotencyConflict when the key was used for a different
// body and with ErrIdempotencyInProgress while another request holds it.
type Idempotency interface {
	Claim(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Complete(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error
	Release(ctx context.Context, userID, endpoint, key, requestHash string) error
}

const (
	// DefaultIdempotencyWindow bounds how long a key replays its response.
	DefaultIdempotencyWindow = 24 * time.Hour
	// DefaultClaimTimeout frees a claim whose request never completed.
	DefaultClaimTimeout = time.Minute
)

type IdempotencyStore struct {
	db           *pgxpool.Pool
	window       time.Duration
	claimTimeout time.Duration
	now          func() time.Time
}

func NewIdempotencyStore(db *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{db: db, window: DefaultIdempotencyWindow, claimTimeout: DefaultClaimTimeout, now: time.Now}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Claim inserts a pending row for the key. An existing row is taken over
// only when it expired or was abandoned mid-request.
func (s *IdempotencyStore) Claim(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	now := s.now()
	var claimedAt time.Time
	err := s.db.QueryRow(ctx, `
    INSERT INTO idempotency_keys (user_id, key, endpoint, request_hash, response_json, created_at)
    VALUES ($1, $2, $3, $4, NULL, $5)
    ON CONFLICT (user_id, key, endpoint)
    DO UPDATE SET request_hash = EXCLUDED.request_hash,
                  response_json = NULL,
                  created_at = EXCLUDED.created_at
    WHERE idempotency_keys.created_at < $6
       OR (idempotency_keys.response_json IS NULL AND idempotency_keys.created_at < $7)
    RETURNING created_at
  `, userID, key, endpoint, requestHash, now, now.Add(-s.window), now.Add(-s.claimTimeout)).Scan(&claimedAt)
	if err == nil {
		return nil, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	var storedHash string
	var stored json.RawMessage
	err = s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
  `, userID, key, endpoint).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		// Released between the insert and this read.
		return nil, false, ErrIdempotencyInProgress
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	if stored == nil {
		return nil, false, ErrIdempotencyInProgress
	}
	return stored, true, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	tag, err := s.db.Exec(ctx, `
    UPDATE idempotency_keys
    SET response_json = $5
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
      AND request_hash = $4 AND response_json IS NULL
  `, userID, key, endpoint, requestHash, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, userID, endpoint, key, requestHash string) error {
	_, err := s.db.Exec(ctx, `
    DELETE FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
      AND request_hash = $4 AND response_json IS NULL
  `, userID, key, endpoint, requestHash)
	return err
}

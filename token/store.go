package token

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tenantsec/accesscore/internal"
)

// ErrUnavailable is an exported constant or variable used by the access control core.
var ErrUnavailable = errors.New("token store unavailable")

const (
	refreshKeyPrefix = "art"
	resetKeyPrefix   = "apr"

	refreshRecordVersionV1 = 1
	resetRecordVersionV1   = 1

	consumeMaxRetries = 4
)

// Store persists refresh and reset tokens in Redis and provides the atomic
// single-winner guarantee for rotation and consumption through optimistic
// WATCH transactions.
//
//	Security: CAS prevents two racing callers from both rotating a token.
type Store struct {
	redis     redis.UniversalClient
	retention time.Duration
}

// NewStore creates a token [Store] backed by the given Redis client.
// retention controls how long terminal-state records are kept for replay
// detection and rotation-chain inspection after their lifetime ends.
func NewStore(redisClient redis.UniversalClient, retention time.Duration) *Store {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Store{redis: redisClient, retention: retention}
}

func (s *Store) refreshKey(tenantID, tokenID string) string {
	return refreshKeyPrefix + ":" + normalizeTenantID(tenantID) + ":" + tokenID
}

func (s *Store) resetKey(tenantID, tokenID string) string {
	return resetKeyPrefix + ":" + normalizeTenantID(tenantID) + ":" + tokenID
}

func normalizeTenantID(tenantID string) string {
	if tenantID == "" {
		return "0"
	}
	return tenantID
}

func (s *Store) liveTTL(expiresAt int64, now time.Time) time.Duration {
	ttl := time.Unix(expiresAt, 0).Sub(now) + s.retention
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// SaveRefresh persists a refresh token. The record outlives the token's
// expiry by the retention window so terminal states stay observable.
func (s *Store) SaveRefresh(ctx context.Context, t *RefreshToken, now time.Time) error {
	encoded, err := encodeRefreshRecord(t)
	if err != nil {
		return err
	}

	key := s.refreshKey(t.TenantID, t.ID)
	if err := s.redis.Set(ctx, key, encoded, s.liveTTL(t.ExpiresAt, now)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GetRefresh fetches a refresh token without mutating any state.
func (s *Store) GetRefresh(ctx context.Context, tenantID, tokenID string) (*RefreshToken, error) {
	data, err := s.redis.Get(ctx, s.refreshKey(tenantID, tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeRefreshRecord(data, tenantID, tokenID)
}

// RotateRefresh atomically marks the predecessor token Used and persists its
// active successor. Exactly one of two racing callers wins; the loser
// observes [ErrAlreadyUsed]. The predecessor record is retained with the
// successor ID recorded, extending the rotation chain.
func (s *Store) RotateRefresh(
	ctx context.Context,
	tenantID, tokenID string,
	providedHash [32]byte,
	successor *RefreshToken,
	now time.Time,
	actorIP string,
) (*RefreshToken, error) {
	key := s.refreshKey(tenantID, tokenID)

	for i := 0; i < consumeMaxRetries; i++ {
		var rotated *RefreshToken

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			predecessor, err := decodeRefreshRecord(data, tenantID, tokenID)
			if err != nil {
				return err
			}

			if !internal.HashesEqual(predecessor.SecretHash, providedHash) {
				return ErrSecretMismatch
			}
			if err := predecessor.MarkUsed(now, successor.ID, actorIP); err != nil {
				return err
			}

			updated, err := encodeRefreshRecord(predecessor)
			if err != nil {
				return err
			}
			successorBlob, err := encodeRefreshRecord(successor)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, s.retention)
				pipe.Set(ctx, s.refreshKey(successor.TenantID, successor.ID), successorBlob, s.liveTTL(successor.ExpiresAt, now))
				return nil
			})
			if err != nil {
				return err
			}

			rotated = predecessor
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, ErrNotFound
			case errors.Is(err, ErrAlreadyUsed),
				errors.Is(err, ErrAlreadyRevoked),
				errors.Is(err, ErrExpired),
				errors.Is(err, ErrSecretMismatch):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}

		return rotated, nil
	}

	return nil, fmt.Errorf("%w: rotation contention not resolved", ErrUnavailable)
}

// RevokeRefresh atomically transitions a refresh token to Revoked, recording
// the reason and acting caller's IP. Terminal states are absorbing.
func (s *Store) RevokeRefresh(
	ctx context.Context,
	tenantID, tokenID, reason, actorIP string,
	now time.Time,
) (*RefreshToken, error) {
	key := s.refreshKey(tenantID, tokenID)

	for i := 0; i < consumeMaxRetries; i++ {
		var revoked *RefreshToken

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeRefreshRecord(data, tenantID, tokenID)
			if err != nil {
				return err
			}
			if err := record.Revoke(now, reason, actorIP); err != nil {
				return err
			}

			updated, err := encodeRefreshRecord(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, s.retention)
				return nil
			})
			if err != nil {
				return err
			}

			revoked = record
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, ErrNotFound
			case errors.Is(err, ErrAlreadyUsed), errors.Is(err, ErrAlreadyRevoked):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}

		return revoked, nil
	}

	return nil, fmt.Errorf("%w: revoke contention not resolved", ErrUnavailable)
}

// SaveReset persists a password-reset token.
func (s *Store) SaveReset(ctx context.Context, t *ResetToken, now time.Time) error {
	encoded, err := encodeResetRecord(t)
	if err != nil {
		return err
	}

	key := s.resetKey(t.TenantID, t.ID)
	if err := s.redis.Set(ctx, key, encoded, s.liveTTL(t.ExpiresAt, now)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GetReset fetches a reset token without mutating any state.
func (s *Store) GetReset(ctx context.Context, tenantID, tokenID string) (*ResetToken, error) {
	data, err := s.redis.Get(ctx, s.resetKey(tenantID, tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeResetRecord(data, tenantID, tokenID)
}

// ConsumeReset atomically validates and marks a reset token Used. Validation
// order follows [ResetToken.ValidateCanBeUsed]: used-state, invalidated-state,
// then expiry, each reported distinctly.
func (s *Store) ConsumeReset(
	ctx context.Context,
	tenantID, tokenID string,
	providedHash [32]byte,
	actorIP string,
	now time.Time,
) (*ResetToken, error) {
	key := s.resetKey(tenantID, tokenID)

	for i := 0; i < consumeMaxRetries; i++ {
		var consumed *ResetToken

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeResetRecord(data, tenantID, tokenID)
			if err != nil {
				return err
			}

			if err := record.ValidateCanBeUsed(now); err != nil {
				return err
			}
			if !internal.HashesEqual(record.SecretHash, providedHash) {
				return ErrSecretMismatch
			}
			if err := record.MarkUsed(now, actorIP); err != nil {
				return err
			}

			updated, err := encodeResetRecord(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, s.retention)
				return nil
			})
			if err != nil {
				return err
			}

			consumed = record
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, ErrNotFound
			case errors.Is(err, ErrAlreadyUsed),
				errors.Is(err, ErrAlreadyInvalidated),
				errors.Is(err, ErrExpired),
				errors.Is(err, ErrSecretMismatch):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}

		return consumed, nil
	}

	return nil, fmt.Errorf("%w: consume contention not resolved", ErrUnavailable)
}

// InvalidateReset atomically transitions a reset token to Invalidated with a
// reason.
func (s *Store) InvalidateReset(
	ctx context.Context,
	tenantID, tokenID, reason string,
	now time.Time,
) (*ResetToken, error) {
	key := s.resetKey(tenantID, tokenID)

	for i := 0; i < consumeMaxRetries; i++ {
		var invalidated *ResetToken

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeResetRecord(data, tenantID, tokenID)
			if err != nil {
				return err
			}
			if err := record.Invalidate(now, reason); err != nil {
				return err
			}

			updated, err := encodeResetRecord(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, s.retention)
				return nil
			})
			if err != nil {
				return err
			}

			invalidated = record
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, ErrNotFound
			case errors.Is(err, ErrAlreadyUsed), errors.Is(err, ErrAlreadyInvalidated):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}

		return invalidated, nil
	}

	return nil, fmt.Errorf("%w: invalidate contention not resolved", ErrUnavailable)
}

func encodeRefreshRecord(t *RefreshToken) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(refreshRecordVersionV1)
	buf.WriteByte(byte(t.State))

	for _, v := range []int64{t.CreatedAt, t.ExpiresAt, t.UsedAt, t.RevokedAt} {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}

	for _, s := range []string{t.UserID, t.ReplacedByID, t.RevokeReason, t.ActorIP} {
		if err := writeString16(&buf, s); err != nil {
			return nil, err
		}
	}

	buf.Write(t.SecretHash[:])
	return buf.Bytes(), nil
}

func decodeRefreshRecord(data []byte, tenantID, tokenID string) (*RefreshToken, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != refreshRecordVersionV1 {
		return nil, errors.New("invalid refresh record version")
	}

	state, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	t := &RefreshToken{
		ID:       tokenID,
		TenantID: tenantID,
		State:    RefreshState(state),
	}

	for _, dst := range []*int64{&t.CreatedAt, &t.ExpiresAt, &t.UsedAt, &t.RevokedAt} {
		if err := binary.Read(reader, binary.BigEndian, dst); err != nil {
			return nil, err
		}
	}

	for _, dst := range []*string{&t.UserID, &t.ReplacedByID, &t.RevokeReason, &t.ActorIP} {
		if *dst, err = readString16(reader); err != nil {
			return nil, err
		}
	}

	if _, err := io.ReadFull(reader, t.SecretHash[:]); err != nil {
		return nil, err
	}
	return t, nil
}

func encodeResetRecord(t *ResetToken) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(resetRecordVersionV1)
	buf.WriteByte(byte(t.State))

	for _, v := range []int64{t.CreatedAt, t.ExpiresAt, t.UsedAt, t.InvalidatedAt} {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}

	for _, s := range []string{t.UserID, t.InvalidReason, t.ActorIP} {
		if err := writeString16(&buf, s); err != nil {
			return nil, err
		}
	}

	buf.Write(t.SecretHash[:])
	return buf.Bytes(), nil
}

func decodeResetRecord(data []byte, tenantID, tokenID string) (*ResetToken, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != resetRecordVersionV1 {
		return nil, errors.New("invalid reset record version")
	}

	state, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	t := &ResetToken{
		ID:       tokenID,
		TenantID: tenantID,
		State:    ResetState(state),
	}

	for _, dst := range []*int64{&t.CreatedAt, &t.ExpiresAt, &t.UsedAt, &t.InvalidatedAt} {
		if err := binary.Read(reader, binary.BigEndian, dst); err != nil {
			return nil, err
		}
	}

	for _, dst := range []*string{&t.UserID, &t.InvalidReason, &t.ActorIP} {
		if *dst, err = readString16(reader); err != nil {
			return nil, err
		}
	}

	if _, err := io.ReadFull(reader, t.SecretHash[:]); err != nil {
		return nil, err
	}
	return t, nil
}

func writeString16(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errors.New("token record field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString16(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

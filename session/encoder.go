package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionFormatVersionV1 = 1

const (
	flagLocked  = 1 << 0
	flagRevoked = 1 << 1
)

// Encode serializes a [Session] into the versioned binary record stored in
// Redis. SessionID lives in the key, not the record.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionV1)

	var flags byte
	if s.Locked {
		flags |= flagLocked
	}
	if s.Revoked {
		flags |= flagRevoked
	}
	buf.WriteByte(flags)

	for _, field := range []string{s.UserID, s.TenantID, s.Device, s.IP, s.RevokeReason} {
		if len(field) > 255 {
			return nil, errors.New("session field too long")
		}
		buf.WriteByte(byte(len(field)))
		buf.WriteString(field)
	}

	buf.Write(s.TokenHash[:])

	for _, v := range []int64{s.CreatedAt, s.ExpiresAt, s.LastActivityAt, s.RevokedAt} {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// Decode deserializes a binary record produced by [Encode].
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionV1 {
		return nil, errors.New("invalid session version")
	}

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	s := &Session{
		Locked:  flags&flagLocked != 0,
		Revoked: flags&flagRevoked != 0,
	}

	for _, dst := range []*string{&s.UserID, &s.TenantID, &s.Device, &s.IP, &s.RevokeReason} {
		length, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		*dst = string(raw)
	}

	if _, err := io.ReadFull(reader, s.TokenHash[:]); err != nil {
		return nil, err
	}

	for _, dst := range []*int64{&s.CreatedAt, &s.ExpiresAt, &s.LastActivityAt, &s.RevokedAt} {
		if err := binary.Read(reader, binary.BigEndian, dst); err != nil {
			return nil, err
		}
	}

	return s, nil
}

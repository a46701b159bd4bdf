// Copyright 2025 Certen Protocol
//

package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/hexcodec"
)

type keyRepository struct {
	db *sql.DB
}

type publicKeysWire struct {
	AnnouncementKey string `json:"announcement_key"`
}

func (r *keyRepository) get(ctx context.Context) ([group.XOnlySize]byte, bool, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'public_keys'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return [group.XOnlySize]byte{}, false, nil
	}
	if err != nil {
		return [group.XOnlySize]byte{}, false, fmt.Errorf("sqlstore: get public keys: %w", err)
	}
	var wire publicKeysWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return [group.XOnlySize]byte{}, false, fmt.Errorf("sqlstore: decode public keys: %w", err)
	}
	decoded, err := hexcodec.DecodeValidated(wire.AnnouncementKey, group.XOnlySize, group.ValidateXOnly)
	if err != nil {
		return [group.XOnlySize]byte{}, false, fmt.Errorf("sqlstore: stored public key malformed: %w", err)
	}
	var key [group.XOnlySize]byte
	copy(key[:], decoded)
	return key, true, nil
}

func (r *keyRepository) set(ctx context.Context, key [group.XOnlySize]byte) error {
	raw, err := json.Marshal(publicKeysWire{AnnouncementKey: hexcodec.Encode(key[:])})
	if err != nil {
		return fmt.Errorf("sqlstore: encode public keys: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('public_keys', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, raw)
	if err != nil {
		return fmt.Errorf("sqlstore: set public keys: %w", err)
	}
	return nil
}

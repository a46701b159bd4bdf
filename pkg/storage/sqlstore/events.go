// Copyright 2025 Certen Protocol
//

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
	"github.com/oliviaoracle/olivia/pkg/storage"
)

// eventRepository persists AnnouncedEvent rows: one file per concern,
// parameterized SQL, sql.ErrNoRows mapped to a domain sentinel.
type eventRepository struct {
	db *sql.DB
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows, letting
// scanEventRow serve both the single-row get() and the QueryEvents scan.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEventRow(row rowScanner) (oracleevent.AnnouncedEvent, bool, error) {
	var (
		idStr        string
		expectedTime sql.NullTime
		annData      []byte
		annSig       []byte
		attOutcome   sql.NullString
		attScalars   pq.ByteaArray
		attEcdsaSig  []byte
		attTime      sql.NullTime
	)
	if err := row.Scan(&idStr, &expectedTime, &annData, &annSig, &attOutcome, &attScalars, &attEcdsaSig, &attTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return oracleevent.AnnouncedEvent{}, false, nil
		}
		return oracleevent.AnnouncedEvent{}, false, fmt.Errorf("sqlstore: scan event: %w", err)
	}

	id, err := eventpath.ParseEventId(idStr)
	if err != nil {
		return oracleevent.AnnouncedEvent{}, false, fmt.Errorf("sqlstore: stored id %q does not parse: %w", idStr, err)
	}

	var sig [group.SignatureSize]byte
	copy(sig[:], annSig)

	var ot *time.Time
	if expectedTime.Valid {
		t := expectedTime.Time
		ot = &t
	}

	ev := oracleevent.AnnouncedEvent{
		Event: oracleevent.Event{ID: id, ExpectedOutcomeTime: ot},
		Announcement: oracleevent.RawAnnouncement{
			OracleEvent: oracleevent.RawOracleEvent{Encoding: "json", Data: annData},
			Signature:   sig,
		},
	}

	if attOutcome.Valid {
		var schemes oracleevent.AttestationSchemes
		if len(attScalars) > 0 {
			scalars := make([][group.ScalarSize]byte, len(attScalars))
			for i, b := range attScalars {
				copy(scalars[i][:], b)
			}
			schemes.OliviaV1 = &oracleevent.OliviaV1Attestation{Scalars: scalars}
		}
		if len(attEcdsaSig) > 0 {
			var s [group.SignatureSize]byte
			copy(s[:], attEcdsaSig)
			schemes.EcdsaV1 = &oracleevent.EcdsaV1Attestation{Signature: s}
		}
		att := oracleevent.Attestation{Outcome: attOutcome.String, Schemes: schemes, Time: attTime.Time}
		ev.Attestation = &att
	}

	return ev, true, nil
}

func (r *eventRepository) get(ctx context.Context, id eventpath.EventId) (oracleevent.AnnouncedEvent, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, expected_outcome_time, ann_oracle_event, ann_signature,
		       att_outcome, att_olivia_v1_scalars, att_ecdsa_v1_signature, att_time
		FROM event WHERE id = $1`, id.String())
	return scanEventRow(row)
}

// insert runs inside tx, part of the single-transaction InsertEvent
// contract enforced by Store.InsertEvent.
func (r *eventRepository) insert(ctx context.Context, tx *sql.Tx, event oracleevent.AnnouncedEvent) error {
	parent, err := event.Event.ID.ParentPath()
	if err != nil {
		return fmt.Errorf("sqlstore: event has no parent path: %w", err)
	}
	var expected sql.NullTime
	if event.Event.ExpectedOutcomeTime != nil {
		expected = sql.NullTime{Time: *event.Event.ExpectedOutcomeTime, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO event (id, path, expected_outcome_time, ann_oracle_event, ann_signature)
		VALUES ($1, $2, $3, $4, $5)`,
		event.Event.ID.String(), parent.String(), expected,
		event.Announcement.OracleEvent.Data, event.Announcement.Signature[:])
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("sqlstore: insert event: %w", err)
	}
	return nil
}

func (r *eventRepository) complete(ctx context.Context, id eventpath.EventId, att oracleevent.Attestation) error {
	var scalars pq.ByteaArray
	var ecdsaSig []byte
	if att.Schemes.OliviaV1 != nil {
		for _, s := range att.Schemes.OliviaV1.Scalars {
			scalars = append(scalars, append([]byte(nil), s[:]...))
		}
	}
	if att.Schemes.EcdsaV1 != nil {
		ecdsaSig = append([]byte(nil), att.Schemes.EcdsaV1.Signature[:]...)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE event SET att_outcome = $1, att_olivia_v1_scalars = $2,
		                  att_ecdsa_v1_signature = $3, att_time = $4
		WHERE id = $5`,
		att.Outcome, scalars, ecdsaSig, att.Time, id.String())
	if err != nil {
		return fmt.Errorf("sqlstore: complete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: complete event rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrEventNotExist
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505), following lib/pq's *pq.Error shape.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

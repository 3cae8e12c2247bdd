package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createRecordListsTable = `CREATE TABLE IF NOT EXISTS record_lists (
	list_key   TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type PGRecordStore struct {
	db *pgxpool.Pool
}

func NewPGRecordStore(db *pgxpool.Pool) *PGRecordStore {
	return &PGRecordStore{db: db}
}

// Migrate creates the record_lists table when missing.
func (r *PGRecordStore) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createRecordListsTable)
	return err
}

func (r *PGRecordStore) Load(ctx context.Context, key string) ([]domain.Record, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT payload FROM record_lists WHERE list_key=$1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decodeRecords(payload)
}

func (r *PGRecordStore) Save(ctx context.Context, key string, records []domain.Record) error {
	payload, err := encodeRecords(records)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO record_lists (list_key, payload, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (list_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`, key, payload)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (r *PGRecordStore) Close() error {
	r.db.Close()
	return nil
}

var _ RecordStore = (*PGRecordStore)(nil)

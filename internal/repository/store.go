package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/civicbook/internal/domain"
)

// RecordStore is the persistence collaborator: a key-value store of record
// lists. Load of a missing key returns an empty list.
type RecordStore interface {
	Load(ctx context.Context, key string) ([]domain.Record, error)
	Save(ctx context.Context, key string, records []domain.Record) error
	Close() error
}

// Key builds the store key holding the records of one category.
func Key(prefix string, category domain.Category) string {
	if prefix == "" {
		return "records:" + string(category)
	}
	return fmt.Sprintf("%s:records:%s", prefix, category)
}

func encodeRecords(records []domain.Record) ([]byte, error) {
	if records == nil {
		records = []domain.Record{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return payload, nil
}

func decodeRecords(payload []byte) ([]domain.Record, error) {
	if len(payload) == 0 {
		return []domain.Record{}, nil
	}
	var records []domain.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

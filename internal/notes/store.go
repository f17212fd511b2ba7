package notes

import (
	"context"
	"fmt"
)

// Store reads and writes the whole note list as one record under a fixed key.
type Store struct {
	kv  KV
	key string
}

func NewStore(kv KV, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

// Key returns the key the record is stored under.
func (s *Store) Key() string { return s.key }

// Load returns the persisted list. When no record exists yet an empty one
// is written first. A record that does not decode is copied to BackupKey
// and reported as ErrCorruptRecord.
func (s *Store) Load(ctx context.Context) ([]Note, error) {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	if !ok {
		if err := s.Save(ctx, []Note{}); err != nil {
			return nil, fmt.Errorf("load notes: %w: %w", ErrRecordNotCreated, err)
		}
		return []Note{}, nil
	}
	list, err := Decode(data)
	if err != nil {
		if berr := s.kv.Set(ctx, s.BackupKey(), data); berr != nil {
			return nil, fmt.Errorf("back up unreadable record: %w", berr)
		}
		return nil, fmt.Errorf("load notes: %w: %w", ErrCorruptRecord, err)
	}
	return list, nil
}

// BackupKey is where an unreadable record is preserved.
func (s *Store) BackupKey() string { return s.key + ".corrupt" }

// Save overwrites the record with list.
func (s *Store) Save(ctx context.Context, list []Note) error {
	data, err := Encode(list)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

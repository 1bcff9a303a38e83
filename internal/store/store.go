package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"orkio/internal/types"
)

var (
	bucketCredentials = []byte("credentials")
	bucketState       = []byte("state")
	keyConsoleState   = []byte("console")
)

// Store is the bbolt-backed local database holding one credential slot
// per domain plus the persisted UI state.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCredentials, bucketState} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReadSlot returns the raw contents of a credential slot, or nil when
// the slot is empty. Callers parse the value; a slot may hold either a
// JSON credential or a bare token string.
func (s *Store) ReadSlot(domain types.CredentialDomain) ([]byte, error) {
	if !domain.Valid() {
		return nil, errors.New("unknown credential domain: " + string(domain))
	}
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketCredentials).Get([]byte(domain))
		if len(value) > 0 {
			out = append([]byte{}, value...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) WriteSlot(domain types.CredentialDomain, value []byte) error {
	if !domain.Valid() {
		return errors.New("unknown credential domain: " + string(domain))
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCredentials).Put([]byte(domain), value)
	})
}

func (s *Store) ClearSlot(domain types.CredentialDomain) error {
	if !domain.Valid() {
		return errors.New("unknown credential domain: " + string(domain))
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCredentials).Delete([]byte(domain))
	})
}

func (s *Store) ReadState() (*types.ConsoleState, error) {
	var state *types.ConsoleState
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketState).Get(keyConsoleState)
		if len(value) == 0 {
			return nil
		}
		var decoded types.ConsoleState
		if err := json.Unmarshal(value, &decoded); err != nil {
			return nil // stale or corrupt state is not fatal
		}
		state = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if state == nil {
		return &types.ConsoleState{}, nil
	}
	return state, nil
}

func (s *Store) WriteState(state *types.ConsoleState) error {
	if state == nil {
		return errors.New("state is required")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put(keyConsoleState, data)
	})
}

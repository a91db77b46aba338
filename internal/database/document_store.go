package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Well-known document keys. Sessions and quizzes are stored under
// prefixed keys, one document each.
const (
	KeyMemory        = "memory"
	KeyWords         = "words"
	KeyConversations = "conversations"
	KeyKnowledge     = "knowledge"
	KeyStreak        = "streak"

	SessionKeyPrefix = "session:"
	QuizKeyPrefix    = "quiz:"
)

// DocumentStore handles read/write of named JSON documents. Reads of a
// missing or unparsable document write the default shape back and return
// it, so corruption never propagates to callers. Writes are full
// overwrites; concurrent writers to the same key are serialized by a
// per-key mutex, but the contract stays last-write-wins.
type DocumentStore struct {
	locks sync.Map // key -> *sync.Mutex
}

// NewDocumentStore creates a new store instance
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

func (s *DocumentStore) keyLock(key string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Read loads the document stored under key into out. If the key is absent
// or the stored data does not parse, def is written back and copied into
// out instead.
func (s *DocumentStore) Read(key string, def, out any) error {
	mu := s.keyLock(key)
	mu.Lock()
	defer mu.Unlock()
	return s.read(key, def, out)
}

func (s *DocumentStore) read(key string, def, out any) error {
	var data string
	err := DB.Get(&data, "SELECT data FROM documents WHERE key = $1", key)
	if err == nil {
		if jsonErr := json.Unmarshal([]byte(data), out); jsonErr == nil {
			return nil
		}
		log.Printf("[store] document %q is unparsable, resetting to default", key)
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("failed to read document %q: %v", key, err)
	}

	if err := s.write(key, def); err != nil {
		return err
	}
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal default for %q: %v", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to apply default for %q: %v", key, err)
	}
	return nil
}

// Write stores doc under key, replacing any previous document
func (s *DocumentStore) Write(key string, doc any) error {
	mu := s.keyLock(key)
	mu.Lock()
	defer mu.Unlock()
	return s.write(key, doc)
}

func (s *DocumentStore) write(key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %v", key, err)
	}
	_, err = DB.Exec(`
		INSERT INTO documents (key, data, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET data = $2, updated_at = CURRENT_TIMESTAMP
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write document %q: %v", key, err)
	}
	return nil
}

// Update runs a read-modify-write cycle under the key's lock. The
// modifier receives the current document (or the default) in out and its
// result is written back unless it returns an error.
func (s *DocumentStore) Update(key string, def, out any, modify func() error) error {
	mu := s.keyLock(key)
	mu.Lock()
	defer mu.Unlock()

	if err := s.read(key, def, out); err != nil {
		return err
	}
	if err := modify(); err != nil {
		return err
	}
	return s.write(key, out)
}

// Exists reports whether a document is stored under key
func (s *DocumentStore) Exists(key string) (bool, error) {
	var n int
	err := DB.Get(&n, "SELECT COUNT(*) FROM documents WHERE key = $1", key)
	if err != nil {
		return false, fmt.Errorf("failed to check document %q: %v", key, err)
	}
	return n > 0, nil
}

// Delete removes the document stored under key, if any
func (s *DocumentStore) Delete(key string) error {
	mu := s.keyLock(key)
	mu.Lock()
	defer mu.Unlock()
	_, err := DB.Exec("DELETE FROM documents WHERE key = $1", key)
	if err != nil {
		return fmt.Errorf("failed to delete document %q: %v", key, err)
	}
	return nil
}

// DeleteByPrefix removes every document whose key starts with prefix and
// returns the number deleted
func (s *DocumentStore) DeleteByPrefix(prefix string) (int, error) {
	res, err := DB.Exec("DELETE FROM documents WHERE key LIKE $1", prefix+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents %q*: %v", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// ListKeys returns all keys starting with prefix
func (s *DocumentStore) ListKeys(prefix string) ([]string, error) {
	var keys []string
	err := DB.Select(&keys, "SELECT key FROM documents WHERE key LIKE $1 ORDER BY key", prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents %q*: %v", prefix, err)
	}
	return keys, nil
}

// ReadAll returns the raw payload of every document whose key starts with
// prefix. Unparsable documents are skipped, not repaired: bulk readers
// only ever consume, never own, these keys.
func (s *DocumentStore) ReadAll(prefix string) (map[string]json.RawMessage, error) {
	rows, err := DB.Queryx("SELECT key, data FROM documents WHERE key LIKE $1 ORDER BY key", prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to read documents %q*: %v", prefix, err)
	}
	defer rows.Close()

	docs := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %v", err)
		}
		if !json.Valid([]byte(data)) {
			log.Printf("[store] skipping unparsable document %q", key)
			continue
		}
		docs[key] = json.RawMessage(data)
	}
	return docs, rows.Err()
}

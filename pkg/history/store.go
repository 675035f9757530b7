package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/younsl/gradesync/pkg/publishing"
	bolt "go.etcd.io/bbolt"
)

var bucketTransitions = []byte("transitions")

// Entry is one recorded status change
type Entry struct {
	Seq        uint64               `json:"seq"`
	Course     string               `json:"course"`
	From       publishing.JobStatus `json:"from"`
	To         publishing.JobStatus `json:"to"`
	Report     map[string]int       `json:"report,omitempty"`
	RecordedAt time.Time            `json:"recorded_at"`
}

// Store persists status transitions in BoltDB, one nested bucket per course
type Store struct {
	db *bolt.DB
}

var _ publishing.Recorder = (*Store)(nil)

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTransitions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordTransition appends t to the course's history
func (s *Store) RecordTransition(t publishing.Transition) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		course, err := tx.Bucket(bucketTransitions).CreateBucketIfNotExists([]byte(t.Course))
		if err != nil {
			return err
		}

		seq, err := course.NextSequence()
		if err != nil {
			return err
		}

		entry := Entry{
			Seq:        seq,
			Course:     t.Course,
			From:       t.From,
			To:         t.To,
			Report:     t.Report,
			RecordedAt: t.At,
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to encode history entry: %w", err)
		}
		return course.Put(seqKey(seq), data)
	})
}

// List returns up to limit entries for course, newest first. A limit of zero
// or less returns every entry.
func (s *Store) List(course string, limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTransitions).Bucket([]byte(course))
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt history entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			entries = append(entries, entry)
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

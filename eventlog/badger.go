package eventlog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// sequenceBandwidth is how many ids a partition sequence leases at once.
const sequenceBandwidth = 128

// BadgerLog is the embedded backend, used for single-node deployments and
// tests. Entry keys embed a zero-padded sequence number so a plain prefix
// scan returns entries in append order; the cursor is that padded number.
type BadgerLog struct {
	db *badger.DB

	mu      sync.Mutex
	seqs    map[string]*badger.Sequence
	appends map[string]*sync.Mutex
}

// NewBadgerLog wraps an open database. The caller keeps ownership of db
// and closes it after Close released the partition sequences.
func NewBadgerLog(db *badger.DB) *BadgerLog {
	return &BadgerLog{
		db:      db,
		seqs:    make(map[string]*badger.Sequence),
		appends: make(map[string]*sync.Mutex),
	}
}

func (l *BadgerLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for _, seq := range l.seqs {
		if err := seq.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.seqs = make(map[string]*badger.Sequence)
	return firstErr
}

func (l *BadgerLog) Append(_ context.Context, partition string, evt Event) error {
	payload, err := Encode(evt)
	if err != nil {
		return err
	}

	// Taking the next sequence number and committing the entry must not
	// interleave with another append to the same partition: if a later
	// number commits first, a concurrent cursor-tracked read advances
	// past the still-pending earlier entry and it is never delivered.
	lock := l.appendLock(partition)
	lock.Lock()
	defer lock.Unlock()

	seq, err := l.sequence(partition)
	if err != nil {
		return err
	}
	n, err := seq.Next()
	if err != nil {
		return err
	}

	key := entryKey(partition, n)
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, payload)
	})
}

func (l *BadgerLog) appendLock(partition string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.appends[partition]
	if !ok {
		lock = &sync.Mutex{}
		l.appends[partition] = lock
	}
	return lock
}

func (l *BadgerLog) Read(_ context.Context, partition string, after Cursor) ([]Event, Cursor, error) {
	var events []Event
	last := after

	err := l.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("log:%s:", partition))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		seekKey := prefix
		if after != "" {
			seekKey = append(append([]byte{}, prefix...), []byte(after)...)
		}
		it.Seek(seekKey)

		// The seek lands on the cursor entry itself; it was already consumed.
		if after != "" && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var payload []byte
			if err := item.Value(func(v []byte) error {
				payload = append([]byte{}, v...)
				return nil
			}); err != nil {
				return err
			}
			evt, err := Decode(payload)
			if err != nil {
				return err
			}
			events = append(events, evt)
			last = Cursor(item.Key()[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, after, err
	}
	return events, last, nil
}

func (l *BadgerLog) CommitCursor(_ context.Context, partition, group string, cur Cursor) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerCursorKey(partition, group), []byte(cur))
	})
}

func (l *BadgerLog) LoadCursor(_ context.Context, partition, group string) (Cursor, error) {
	var cur Cursor
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerCursorKey(partition, group))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			cur = Cursor(v)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cur, nil
}

func (l *BadgerLog) sequence(partition string) (*badger.Sequence, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if seq, ok := l.seqs[partition]; ok {
		return seq, nil
	}
	seq, err := l.db.GetSequence([]byte("seq:"+partition), sequenceBandwidth)
	if err != nil {
		return nil, err
	}
	l.seqs[partition] = seq
	return seq, nil
}

// entryKey uses 20-digit zero padding so lexicographical order matches
// append order under a prefix scan.
func entryKey(partition string, seq uint64) []byte {
	return []byte(fmt.Sprintf("log:%s:%020d", partition, seq))
}

func badgerCursorKey(partition, group string) []byte {
	return []byte(fmt.Sprintf("cursor:%s:%s", partition, group))
}

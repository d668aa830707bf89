package bench

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	dbm "github.com/cosmos/cosmos-db"
)

var ErrHashMismatch = errors.New("hash mismatch")

// HashLog records the committed hash of every version so that a later replay
// of the same changesets can be checked against it.
type HashLog struct {
	db dbm.DB
}

// OpenHashLog opens (or creates) a goleveldb backed hash log in dir.
func OpenHashLog(dir string) (*HashLog, error) {
	db, err := dbm.NewGoLevelDB("hashlog", dir, nil)
	if err != nil {
		return nil, fmt.Errorf("error opening hash log in %s: %w", dir, err)
	}
	return &HashLog{db: db}, nil
}

// NewHashLog wraps an already opened database, e.g. dbm.NewMemDB() in tests.
func NewHashLog(db dbm.DB) *HashLog {
	return &HashLog{db: db}
}

func hashLogKey(version int64) []byte {
	var key [9]byte
	key[0] = 'h'
	binary.BigEndian.PutUint64(key[1:], uint64(version))
	return key[:]
}

func (l *HashLog) Record(version int64, hash []byte) error {
	return l.db.Set(hashLogKey(version), hash)
}

// Get returns the logged hash for version, nil if none was recorded.
func (l *HashLog) Get(version int64) ([]byte, error) {
	return l.db.Get(hashLogKey(version))
}

// Verify compares hash with the logged one. It records hash if the version
// was never logged and reports whether a comparison took place.
func (l *HashLog) Verify(version int64, hash []byte) (checked bool, err error) {
	logged, err := l.Get(version)
	if err != nil {
		return false, err
	}
	if logged == nil {
		return false, l.Record(version, hash)
	}
	if !bytes.Equal(logged, hash) {
		return true, fmt.Errorf("%w at version %d: logged %X, got %X", ErrHashMismatch, version, logged, hash)
	}
	return true, nil
}

// LastVersion returns the highest logged version, 0 if the log is empty.
func (l *HashLog) LastVersion() (int64, error) {
	itr, err := l.db.ReverseIterator([]byte{'h'}, []byte{'i'})
	if err != nil {
		return 0, err
	}
	defer itr.Close()
	if !itr.Valid() {
		return 0, itr.Error()
	}
	return int64(binary.BigEndian.Uint64(itr.Key()[1:])), nil
}

func (l *HashLog) Close() error {
	return l.db.Close()
}

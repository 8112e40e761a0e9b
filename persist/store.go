// Package persist saves ledger snapshots to a key-value store.
//
// A snapshot is kept as one opaque blob under the key "chainstate". It is
// written in a single batch together with a few metadata entries, so a
// reader never sees a partially written snapshot.
package persist

import (
	"errors"
	"fmt"
	"time"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/leveldb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/ledger"
)

var (
	ErrNotFound           = errors.New("no snapshot stored")
	ErrCorruptSnapshot    = errors.New("corrupt snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

var (
	chainStateKey = []byte("chainstate")

	metaPrefix   = []byte("meta/")
	networkIDKey = []byte("networkid")
	pohSeqKey    = []byte("pohseq")
	savedAtKey   = []byte("savedat")
)

// Info describes the stored snapshot without decoding it.
type Info struct {
	NetworkID uint64
	PoHSeq    uint64
	SavedAt   inter.Timestamp
	Size      int
}

type reader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
}

// Store reads and writes snapshots.
type Store struct {
	db   kvdb.Store
	meta reader
	log  logrus.FieldLogger
}

// New wraps db. The Store takes ownership of db.
func New(db kvdb.Store, log logrus.FieldLogger) *Store {
	return &Store{
		db:   db,
		meta: table.New(db, metaPrefix),
		log:  log,
	}
}

// OpenLevelDB opens or creates an on-disk store.
func OpenLevelDB(path string, cacheMB, handles int) (kvdb.Store, error) {
	db, err := leveldb.New(path, cacheMB, handles, func() error { return nil }, func() {})
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return db, nil
}

// NewMemoryDB returns a volatile store.
func NewMemoryDB() kvdb.Store {
	return memorydb.New()
}

// Save writes snap, replacing the previous snapshot.
func (s *Store) Save(snap *ledger.Snapshot) (err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			snapshotFailures.Inc()
		}
	}()

	blob, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	batch := s.db.NewBatch()
	if err := batch.Put(chainStateKey, blob); err != nil {
		return err
	}
	meta := map[string][]byte{
		string(networkIDKey): bigendian.Uint64ToBytes(snap.NetworkID),
		string(pohSeqKey):    bigendian.Uint64ToBytes(uint64(len(snap.PoH.Records))),
		string(savedAtKey):   inter.Now().Bytes(),
	}
	for k, v := range meta {
		if err := batch.Put(append(append([]byte(nil), metaPrefix...), k...), v); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	snapshotDuration.Observe(time.Since(start).Seconds())
	snapshotBytes.Set(float64(len(blob)))
	s.log.WithFields(logrus.Fields{
		"size":    len(blob),
		"poh":     len(snap.PoH.Records),
		"elapsed": time.Since(start),
	}).Debug("Snapshot saved")
	return nil
}

// Load reads the stored snapshot. It returns ErrNotFound when nothing was
// saved yet; any other error means the stored data cannot be trusted.
func (s *Store) Load() (*ledger.Snapshot, error) {
	blob, err := s.get(s.db, chainStateKey)
	if err != nil {
		return nil, err
	}
	return Decode(blob)
}

// Info returns the metadata of the stored snapshot.
func (s *Store) Info() (Info, error) {
	blob, err := s.get(s.db, chainStateKey)
	if err != nil {
		return Info{}, err
	}
	info := Info{Size: len(blob)}
	for key, dst := range map[string]*uint64{
		string(networkIDKey): &info.NetworkID,
		string(pohSeqKey):    &info.PoHSeq,
		string(savedAtKey):   (*uint64)(&info.SavedAt),
	} {
		v, err := s.get(s.meta, []byte(key))
		if err != nil {
			return Info{}, fmt.Errorf("meta %s: %w", key, err)
		}
		if len(v) != 8 {
			return Info{}, fmt.Errorf("%w: meta %s has %d bytes", ErrCorruptSnapshot, key, len(v))
		}
		*dst = bigendian.BytesToUint64(v)
	}
	return info, nil
}

func (s *Store) get(db reader, key []byte) ([]byte, error) {
	ok, err := db.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return db.Get(key)
}

// Close releases the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

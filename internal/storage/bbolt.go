package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	lperrors "github.com/illarion/lockpass/internal/errors"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket      = []byte("config")      // vault id, timestamps - unencrypted
	IndexBucket       = []byte("index")       // Generation metadata for history - unencrypted
	GenerationsBucket = []byte("generations") // Previous vault files, still encrypted
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigVaultID  = []byte("vault_id")
)

// DefaultLockTimeout is how long Open waits for another process to
// release the database.
const DefaultLockTimeout = 5 * time.Second

// Generation describes one archived vault file.
type Generation struct {
	Seq     uint64    `json:"seq"`
	SavedAt time.Time `json:"savedAt"` // When this generation was replaced
	Reason  string    `json:"reason"`  // Operation that replaced it
	Size    int       `json:"size"`    // Encrypted size in bytes
	Records int       `json:"records"` // Record count at the time
	KDF     string    `json:"kdf"`     // Cost parameters of the archived file
}

// Storage provides BBolt-based history storage for lockpass. An open
// read-write Storage holds an exclusive lock on the database file.
type Storage struct {
	db   *bolt.DB
	path string
	opts *bolt.Options
}

// maxReopen bounds how often open retries after losing a race with Compact.
const maxReopen = 3

// Open opens or creates a history database, waiting up to timeout for
// another process to release it.
func Open(path string, timeout time.Duration) (*Storage, error) {
	return open(path, &bolt.Options{Timeout: timeout})
}

// OpenReadOnly opens an existing history database with a shared lock.
func OpenReadOnly(path string, timeout time.Duration) (*Storage, error) {
	return open(path, &bolt.Options{Timeout: timeout, ReadOnly: true})
}

func open(path string, opts *bolt.Options) (*Storage, error) {
	for attempt := 0; attempt < maxReopen; attempt++ {
		before, _ := os.Stat(path)

		db, err := bolt.Open(path, 0600, opts)
		if err != nil {
			if errors.Is(err, bolt.ErrTimeout) {
				return nil, lperrors.ErrVaultBusy
			}
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// Compact renames a new file over path while holding the lock. A
		// lock won on the replaced file protects nothing.
		after, err := os.Stat(path)
		if before != nil && (err != nil || !os.SameFile(before, after)) {
			db.Close()
			continue
		}

		return &Storage{db: db, path: path, opts: opts}, nil
	}
	return nil, lperrors.ErrVaultBusy
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.path
}

// Initialize creates the bucket structure. Existing data is kept.
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, IndexBucket, GenerationsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// configValue returns a copy of the value stored under key in the config
// bucket, or nil if it is not set.
func (s *Storage) configValue(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if config := tx.Bucket(ConfigBucket); config != nil {
			if v := config.Get(key); v != nil {
				value = append([]byte(nil), v...)
			}
		}
		return nil
	})
	return value, err
}

// IsInitialized reports whether Initialize has run on this database.
func (s *Storage) IsInitialized() (bool, error) {
	version, err := s.configValue(ConfigVersion)
	return version != nil, err
}

// UpdateModified records the time of the last vault save.
func (s *Storage) UpdateModified() error {
	modified, err := time.Now().MarshalBinary()
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		config, err := tx.CreateBucketIfNotExists(ConfigBucket)
		if err != nil {
			return err
		}
		return config.Put(ConfigModified, modified)
	})
}

// GetModified returns the time of the last vault save.
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	data, err := s.configValue(ConfigModified)
	if err != nil {
		return modified, err
	}
	if data == nil {
		return modified, fmt.Errorf("modified time not set")
	}
	err = modified.UnmarshalBinary(data)
	return modified, err
}

// GetVaultID returns the id keying this vault's keyring entry.
func (s *Storage) GetVaultID() (string, error) {
	data, err := s.configValue(ConfigVaultID)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", fmt.Errorf("vault id not set")
	}
	return string(data), nil
}

// GetOrCreateVaultID retrieves existing vault ID or generates a new one
func (s *Storage) GetOrCreateVaultID() (string, error) {
	vaultID, err := s.GetVaultID()
	if err == nil {
		return vaultID, nil
	}

	vaultID = uuid.NewString()
	err = s.db.Update(func(tx *bolt.Tx) error {
		config, err := tx.CreateBucketIfNotExists(ConfigBucket)
		if err != nil {
			return err
		}
		return config.Put(ConfigVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}

	return vaultID, nil
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// AppendGeneration archives an encrypted vault file and returns its
// sequence number. Sequence numbers only grow.
func (s *Storage) AppendGeneration(data []byte, gen Generation) (uint64, error) {
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		blobs := tx.Bucket(GenerationsBucket)
		index := tx.Bucket(IndexBucket)
		if blobs == nil || index == nil {
			return fmt.Errorf("history buckets not found")
		}

		var err error
		seq, err = blobs.NextSequence()
		if err != nil {
			return err
		}

		gen.Seq = seq
		gen.Size = len(data)
		meta, err := json.Marshal(gen)
		if err != nil {
			return err
		}

		if err := blobs.Put(seqKey(seq), data); err != nil {
			return err
		}
		return index.Put(seqKey(seq), meta)
	})
	return seq, err
}

// ListGenerations returns all archived generations, oldest first.
func (s *Storage) ListGenerations() ([]Generation, error) {
	var gens []Generation
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return nil
		}
		return index.ForEach(func(k, v []byte) error {
			var gen Generation
			if err := json.Unmarshal(v, &gen); err != nil {
				return err
			}
			gens = append(gens, gen)
			return nil
		})
	})
	return gens, err
}

// GetGeneration returns the archived file bytes and metadata for seq.
func (s *Storage) GetGeneration(seq uint64) ([]byte, *Generation, error) {
	var data []byte
	var gen Generation
	err := s.db.View(func(tx *bolt.Tx) error {
		blobs := tx.Bucket(GenerationsBucket)
		index := tx.Bucket(IndexBucket)
		if blobs == nil || index == nil {
			return fmt.Errorf("%w: %d", lperrors.ErrGenerationNotFound, seq)
		}

		raw := blobs.Get(seqKey(seq))
		meta := index.Get(seqKey(seq))
		if raw == nil || meta == nil {
			return fmt.Errorf("%w: %d", lperrors.ErrGenerationNotFound, seq)
		}
		// Make a copy since the slice is only valid during the transaction
		data = append([]byte(nil), raw...)
		return json.Unmarshal(meta, &gen)
	})
	if err != nil {
		return nil, nil, err
	}
	return data, &gen, nil
}

// Prune deletes the oldest generations so that at most keep remain.
// It returns the number of generations removed.
func (s *Storage) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		blobs := tx.Bucket(GenerationsBucket)
		index := tx.Bucket(IndexBucket)
		if blobs == nil || index == nil {
			return nil
		}

		var keys [][]byte
		c := index.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		if len(keys) <= keep {
			return nil
		}
		doomed := keys[:len(keys)-keep]

		for _, k := range doomed {
			if err := index.Delete(k); err != nil {
				return err
			}
			if err := blobs.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// ClearGenerations deletes every archived generation. Sequence numbers
// keep growing afterwards.
func (s *Storage) ClearGenerations() (int, error) {
	return s.Prune(0)
}

// Compact rewrites the database into a new file to drop free pages, which
// may still hold deleted generations. The new file is locked before it is
// renamed over the old one, so the exclusive lock is never released.
func (s *Storage) Compact() error {
	if s.opts != nil && s.opts.ReadOnly {
		return fmt.Errorf("cannot compact a read-only database")
	}

	tmpPath := s.path + ".compact"
	os.Remove(tmpPath)

	dst, err := bolt.Open(tmpPath, 0600, s.opts)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets, keeping bucket sequences so generation numbers
	// are never reused.
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				if err := dstBucket.SetSequence(srcBucket.Sequence()); err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})
	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace database: %w", err)
	}

	old := s.db
	s.db = dst
	if err := old.Close(); err != nil {
		return fmt.Errorf("failed to close replaced database: %w", err)
	}
	return nil
}

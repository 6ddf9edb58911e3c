// Package store connects to the data store and manages the persisted
// timer state snapshot.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/radum/pontaj/internal/models"
)

const (
	stateBucket = "state"

	// StateKey is the versioned namespace key holding the full
	// JSON-serialized timer state.
	StateKey = "tt2_state_v1"
)

var errAlreadyRunning = errors.New(
	"is pontaj already running? Only one instance can be active at a time",
)

// DB is the persistence adapter used by the timer engine.
type DB interface {
	// LoadState returns the stored state snapshot. Absent or corrupted
	// data yields the default initial state, not an error.
	LoadState() (*models.TimerState, error)
	// SaveState durably stores a state snapshot, overwriting the
	// previous one.
	SaveState(state *models.TimerState) error
	// Close ends the database connection
	Close() error
	// Open begins a database connection
	Open() error
}

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
	path string
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	// Create the state bucket if it does not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		_, berr := tx.CreateBucketIfNotExists([]byte(stateBucket))
		return berr
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
		dbPath,
	}, nil
}

func (c *Client) LoadState() (*models.TimerState, error) {
	var raw []byte

	err := c.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(stateBucket)).Get([]byte(StateKey))
		if v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return models.DefaultState(), nil
	}

	state := models.DefaultState()

	err = json.Unmarshal(raw, state)
	if err != nil {
		// unparsable stored state is treated as absent
		slog.Warn("discarding corrupted stored state",
			slog.String("key", StateKey),
			slog.Any("error", err),
		)

		return models.DefaultState(), nil
	}

	if n := migrateLegacyBreaks(state); n > 0 {
		slog.Info("embedded legacy break sessions", slog.Int("count", n))
	}

	return state, nil
}

func (c *Client) SaveState(state *models.TimerState) error {
	value, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put([]byte(StateKey), value)
	})
}

func (c *Client) Open() error {
	db, err := openDB(c.path)
	if err != nil {
		return err
	}

	c.DB = db

	return nil
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		// a held file lock surfaces as ErrTimeout once the timeout lapses
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errAlreadyRunning
		}

		return nil, err
	}

	return db, nil
}

// Package store persists corpus embeddings in SQLite so the static
// variant-description vectors survive process restarts. Entries are keyed by
// (model identity, text hash); switching embedding models never serves stale
// vectors.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"vizsel/internal/logging"
)

// EmbedCache is a sqlite-backed embedding cache.
type EmbedCache struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
}

// OpenEmbedCache initializes the cache database at the given path.
func OpenEmbedCache(path string) (*EmbedCache, error) {
	timer := logging.StartTimer(logging.CategoryStore, "OpenEmbedCache")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS embeddings (
		model      TEXT NOT NULL,
		text_hash  TEXT NOT NULL,
		dims       INTEGER NOT NULL,
		vec        BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (model, text_hash)
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Store("EmbedCache opened at %s", path)
	return &EmbedCache{db: db, dbPath: path}, nil
}

// Get returns the cached embedding for (model, text), if present.
func (c *EmbedCache) Get(model, text string) ([]float32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var dims int
	var blob []byte
	err := c.db.QueryRow(
		`SELECT dims, vec FROM embeddings WHERE model = ? AND text_hash = ?`,
		model, hashText(text),
	).Scan(&dims, &blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embed cache read failed: %w", err)
	}

	vec, err := decodeFloat32Blob(blob, dims)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Put stores an embedding for (model, text), replacing any previous entry.
func (c *EmbedCache) Put(model, text string, vec []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO embeddings (model, text_hash, dims, vec) VALUES (?, ?, ?, ?)`,
		model, hashText(text), len(vec), encodeFloat32Blob(vec),
	)
	if err != nil {
		return fmt.Errorf("embed cache write failed: %w", err)
	}
	return nil
}

// Invalidate drops all entries for a model identity.
func (c *EmbedCache) Invalidate(model string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(`DELETE FROM embeddings WHERE model = ?`, model)
	if err != nil {
		return fmt.Errorf("embed cache invalidate failed: %w", err)
	}
	logging.Store("EmbedCache invalidated for model %s", model)
	return nil
}

// Close closes the underlying database.
func (c *EmbedCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// encodeFloat32Blob encodes a float32 slice as a little-endian binary blob.
func encodeFloat32Blob(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeFloat32Blob(blob []byte, dims int) ([]float32, error) {
	if len(blob) != 4*dims {
		return nil, fmt.Errorf("embedding blob size %d does not match dims %d", len(blob), dims)
	}
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}

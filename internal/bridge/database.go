package bridge

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
	"zapper/internal/device"
)

// ActionRecord is one processed action in the history table
type ActionRecord struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	Params    string    `json:"params,omitempty"` // JSON as stored
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKey is a scripting credential accepted by the bridge API
type APIKey struct {
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// Database handles SQLite storage for action history and API keys
type Database struct {
	db *sql.DB
}

// NewDatabase opens the database and ensures the schema exists
func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	database := &Database{db: db}
	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			action_type TEXT NOT NULL,
			action TEXT NOT NULL,
			params TEXT,
			success INTEGER NOT NULL,
			error TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS api_keys (
			key TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			last_used DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_device_id ON actions(device_id)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_created_at ON actions(created_at)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// RecordAction stores a processed action and its outcome
func (d *Database) RecordAction(deviceID string, request *device.ActionRequest, response *device.ActionResponse) error {
	params := ""
	if len(request.Parameters) > 0 {
		encoded, err := json.Marshal(request.Parameters)
		if err != nil {
			return fmt.Errorf("failed to marshal action parameters: %w", err)
		}
		params = string(encoded)
	}

	query := `INSERT INTO actions (id, device_id, action_type, action, params, success, error, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := d.db.Exec(query,
		uuid.New().String(),
		deviceID,
		string(request.Type),
		request.Action,
		params,
		response.Success,
		response.Error,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}

	return nil
}

// RecentActions returns the newest actions across all devices
func (d *Database) RecentActions(limit int) ([]*ActionRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `SELECT id, device_id, action_type, action, params, success, error, created_at
			  FROM actions ORDER BY created_at DESC, rowid DESC LIMIT ?`

	return d.queryActions(query, limit)
}

// DeviceActions returns the newest actions for a single device
func (d *Database) DeviceActions(deviceID string, limit int) ([]*ActionRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `SELECT id, device_id, action_type, action, params, success, error, created_at
			  FROM actions WHERE device_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`

	return d.queryActions(query, deviceID, limit)
}

func (d *Database) queryActions(query string, args ...interface{}) ([]*ActionRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var records []*ActionRecord
	for rows.Next() {
		var record ActionRecord
		err := rows.Scan(
			&record.ID, &record.DeviceID, &record.Type, &record.Action,
			&record.Params, &record.Success, &record.Error, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// PurgeBefore deletes actions older than the cutoff and reports how many went
func (d *Database) PurgeBefore(cutoff time.Time) (int64, error) {
	result, err := d.db.Exec(`DELETE FROM actions WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge actions: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged actions: %w", err)
	}
	return purged, nil
}

// CreateAPIKey mints a new API key under the given name
func (d *Database) CreateAPIKey(name string) (*APIKey, error) {
	key := &APIKey{
		Key:       uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO api_keys (key, name, created_at) VALUES (?, ?, ?)`
	if _, err := d.db.Exec(query, key.Key, key.Name, key.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	return key, nil
}

// LookupAPIKey returns the API key row for a presented key, or an error
// when the key is unknown
func (d *Database) LookupAPIKey(key string) (*APIKey, error) {
	query := `SELECT key, name, created_at, last_used FROM api_keys WHERE key = ?`

	var apiKey APIKey
	var lastUsed sql.NullTime
	err := d.db.QueryRow(query, key).Scan(&apiKey.Key, &apiKey.Name, &apiKey.CreatedAt, &lastUsed)
	if err != nil {
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}

	if lastUsed.Valid {
		apiKey.LastUsed = &lastUsed.Time
	}
	return &apiKey, nil
}

// TouchAPIKey records that a key was just used
func (d *Database) TouchAPIKey(key string) error {
	query := `UPDATE api_keys SET last_used = ? WHERE key = ?`
	if _, err := d.db.Exec(query, time.Now().UTC(), key); err != nil {
		return fmt.Errorf("failed to touch API key: %w", err)
	}
	return nil
}

// ListAPIKeys returns all API keys, newest first
func (d *Database) ListAPIKeys() ([]*APIKey, error) {
	query := `SELECT key, name, created_at, last_used FROM api_keys ORDER BY created_at DESC`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query API keys: %w", err)
	}
	defer rows.Close()

	var keys []*APIKey
	for rows.Next() {
		var apiKey APIKey
		var lastUsed sql.NullTime
		if err := rows.Scan(&apiKey.Key, &apiKey.Name, &apiKey.CreatedAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan API key: %w", err)
		}
		if lastUsed.Valid {
			apiKey.LastUsed = &lastUsed.Time
		}
		keys = append(keys, &apiKey)
	}

	return keys, rows.Err()
}

package properties

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Querier is the slice of the database the store needs. Satisfied by
// *database.DB and *sql.DB.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLiteStore reads and writes controller device properties.
//
// Properties are stored per (device, name) as an ordered array of string
// rows: scalars use a single row with idx 0, arrays one row per element.
// Type coercion happens at the consumer against the class schema, the
// store deals in raw strings only.
//
// Thread Safety:
//   - Safe for concurrent use; SQLite serialises access underneath.
type SQLiteStore struct {
	db Querier
}

// NewSQLiteStore creates a property store over the given database.
func NewSQLiteStore(db Querier) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("properties: database is required")
	}
	return &SQLiteStore{db: db}, nil
}

// DeviceProperties loads the stored rows for the named properties of one
// device. Properties with no stored rows are absent from the result, the
// caller decides between schema default and missing-property handling.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - dev: The device name the properties belong to
//   - names: Property names to load; empty loads nothing
//
// Returns:
//   - map[string][]string: Rows per property name, ordered by idx
//   - error: Query failures
func (s *SQLiteStore) DeviceProperties(ctx context.Context, dev string, names []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(names) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(names))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(
		`SELECT name, value FROM device_properties
		 WHERE device = ? AND name IN (%s)
		 ORDER BY name, idx`, placeholders)

	args := make([]any, 0, len(names)+1)
	args = append(args, dev)
	for _, name := range names {
		args = append(args, name)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("properties: query %s: %w", dev, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("properties: scan %s: %w", dev, err)
		}
		result[name] = append(result[name], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("properties: iterate %s: %w", dev, err)
	}

	return result, nil
}

// Put replaces the stored rows of one property.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - dev: The device name the property belongs to
//   - name: The property name
//   - values: New rows in order; empty deletes the property
func (s *SQLiteStore) Put(ctx context.Context, dev, name string, values []string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM device_properties WHERE device = ? AND name = ?`,
		dev, name); err != nil {
		return fmt.Errorf("properties: clear %s.%s: %w", dev, name, err)
	}

	for i, value := range values {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO device_properties (device, name, idx, value) VALUES (?, ?, ?, ?)`,
			dev, name, i, value); err != nil {
			return fmt.Errorf("properties: insert %s.%s[%d]: %w", dev, name, i, err)
		}
	}
	return nil
}

// Delete removes all stored properties of one device.
func (s *SQLiteStore) Delete(ctx context.Context, dev string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM device_properties WHERE device = ?`, dev); err != nil {
		return fmt.Errorf("properties: delete %s: %w", dev, err)
	}
	return nil
}

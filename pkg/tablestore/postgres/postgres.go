// Package postgres implements the table store primitives on a self-hosted
// PostgreSQL instance, for deployments that do not use the hosted backend.
// Rows live as jsonb so the four generic primitives stay schema-agnostic.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/akorchemkin/sitebase/pkg/tablestore"
	"github.com/akorchemkin/sitebase/pkg/tablestore/postgres/migrations"
)

// Store is a tablestore.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx pool, pings it and runs pending migrations.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := runMigrations(ctx, dsn); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func runMigrations(ctx context.Context, dsn string) error {
	// goose wants database/sql; open a short-lived connection through the
	// pgx stdlib driver.
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Pool exposes the underlying pool for health checks.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// EnsureTable registers a logical table if it does not exist yet and
// returns its identifier.
func (s *Store) EnsureTable(ctx context.Context, name string) (string, error) {
	id := uuid.NewString()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO store_tables (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, id, name)
	var got string
	if err := row.Scan(&got); err != nil {
		return "", fmt.Errorf("%w: ensure table: %v", tablestore.ErrUnavailable, err)
	}
	return got, nil
}

func (s *Store) ListTables(ctx context.Context) ([]tablestore.Table, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM store_tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: list tables: %v", tablestore.ErrUnavailable, err)
	}
	defer rows.Close()

	out := []tablestore.Table{}
	for rows.Next() {
		var t tablestore.Table
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("%w: scan table: %v", tablestore.ErrUnavailable, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list tables: %v", tablestore.ErrUnavailable, err)
	}
	return out, nil
}

func (s *Store) QueryByEquality(ctx context.Context, tableID, field, value string) ([]tablestore.Row, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, data FROM store_rows
		WHERE table_id = $1 AND data->>$2 = $3
	`, tableID, field, value)
	if err != nil {
		return nil, fmt.Errorf("%w: query rows: %v", tablestore.ErrUnavailable, err)
	}
	defer rows.Close()

	out := []tablestore.Row{}
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", tablestore.ErrUnavailable, err)
		}
		row := tablestore.Row{}
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, fmt.Errorf("%w: decode row: %v", tablestore.ErrUnavailable, err)
		}
		row["id"] = id
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query rows: %v", tablestore.ErrUnavailable, err)
	}
	return out, nil
}

func (s *Store) InsertRow(ctx context.Context, tableID string, row tablestore.Row) (tablestore.InsertResult, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return tablestore.InsertResult{}, fmt.Errorf("encode row: %w", err)
	}
	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO store_rows (id, table_id, data) VALUES ($1, $2, $3)
	`, id, tableID, data); err != nil {
		return tablestore.InsertResult{}, fmt.Errorf("%w: insert row: %v", tablestore.ErrUnavailable, err)
	}
	return tablestore.InsertResult{Success: true, InsertedID: id}, nil
}

func (s *Store) UpdateRow(ctx context.Context, tableID, rowID string, partial tablestore.Row) error {
	data, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("encode partial row: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE store_rows SET data = data || $3::jsonb
		WHERE id = $1 AND table_id = $2
	`, rowID, tableID, data)
	if err != nil {
		return fmt.Errorf("%w: update row: %v", tablestore.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", tablestore.ErrRowNotFound, rowID)
	}
	return nil
}

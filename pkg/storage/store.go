package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"architecture-risk-engine/pkg/graph"
)

var ErrDiagramNotFound = errors.New("diagram not found")

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// DiagramStore keeps named diagrams in SQLite so they can be re-analyzed
// later by id.
type DiagramStore struct {
	db *sql.DB
}

func NewDiagramStore(dbPath string) (*DiagramStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &DiagramStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *DiagramStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS diagrams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL,
		body TEXT NOT NULL,
		correlation_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_diagrams_created_at ON diagrams(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (s *DiagramStore) Close() error {
	return s.db.Close()
}

type SaveDiagramInput struct {
	Name          string
	Diagram       graph.Diagram
	CorrelationID string
}

// DiagramSummary is what listings return; the body is only loaded by id.
type DiagramSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NodeCount int    `json:"nodeCount"`
	EdgeCount int    `json:"edgeCount"`
	CreatedAt string `json:"createdAt"`
}

type DiagramRecord struct {
	DiagramSummary
	Nodes         []graph.Node `json:"nodes"`
	Edges         []graph.Edge `json:"edges"`
	CorrelationID string       `json:"correlationId,omitempty"`
}

func (r DiagramRecord) Diagram() graph.Diagram {
	return graph.Diagram{Nodes: r.Nodes, Edges: r.Edges}
}

func (s *DiagramStore) SaveDiagram(ctx context.Context, input SaveDiagramInput) (*DiagramSummary, error) {
	body, err := json.Marshal(input.Diagram)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diagram: %w", err)
	}

	summary := &DiagramSummary{
		ID:        uuid.New().String(),
		Name:      input.Name,
		NodeCount: len(input.Diagram.Nodes),
		EdgeCount: len(input.Diagram.Edges),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	query := `
		INSERT INTO diagrams (id, name, node_count, edge_count, body, correlation_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		summary.ID, summary.Name, summary.NodeCount, summary.EdgeCount,
		string(body), input.CorrelationID, summary.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert diagram: %w", err)
	}

	return summary, nil
}

type ListOptions struct {
	Limit  int
	Offset int
}

func (o ListOptions) normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// ListDiagrams returns summaries newest first.
func (s *DiagramStore) ListDiagrams(ctx context.Context, opts ListOptions) ([]DiagramSummary, ListOptions, error) {
	opts = opts.normalize()

	query := `
		SELECT id, name, node_count, edge_count, created_at
		FROM diagrams
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, opts, fmt.Errorf("failed to query diagrams: %w", err)
	}
	defer rows.Close()

	summaries := []DiagramSummary{}
	for rows.Next() {
		var d DiagramSummary
		if err := rows.Scan(&d.ID, &d.Name, &d.NodeCount, &d.EdgeCount, &d.CreatedAt); err != nil {
			return nil, opts, fmt.Errorf("failed to scan row: %w", err)
		}
		summaries = append(summaries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, opts, fmt.Errorf("failed to iterate diagrams: %w", err)
	}

	return summaries, opts, nil
}

func (s *DiagramStore) GetDiagram(ctx context.Context, id string) (*DiagramRecord, error) {
	query := `
		SELECT id, name, node_count, edge_count, body, correlation_id, created_at
		FROM diagrams WHERE id = ?
	`
	var (
		r      DiagramRecord
		body   string
		corrID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Name, &r.NodeCount, &r.EdgeCount, &body, &corrID, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiagramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load diagram: %w", err)
	}

	if corrID.Valid {
		r.CorrelationID = corrID.String
	}

	var d graph.Diagram
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagram: %w", err)
	}
	r.Nodes = d.Nodes
	r.Edges = d.Edges

	return &r, nil
}

func (s *DiagramStore) DeleteDiagram(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM diagrams WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete diagram: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrDiagramNotFound
	}
	return nil
}

func (s *DiagramStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM diagrams").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count diagrams: %w", err)
	}
	return count, nil
}

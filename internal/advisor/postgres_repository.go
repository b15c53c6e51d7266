package advisor

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL transcript repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// History returns the session's turns in order.
func (r *PostgresRepository) History(ctx context.Context, sessionID string) ([]Message, error) {
	query := `
		SELECT role, content, created_at
		FROM advisor_transcripts
		WHERE session_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// Append records turns at the end of the session's transcript.
func (r *PostgresRepository) Append(ctx context.Context, sessionID string, messages ...Message) error {
	query := `
		INSERT INTO advisor_transcripts (session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)
	`

	for _, m := range messages {
		if _, err := r.pool.Exec(ctx, query, sessionID, m.Role, m.Text, m.CreatedAt); err != nil {
			return err
		}
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

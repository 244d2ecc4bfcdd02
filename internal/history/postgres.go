package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists conversation history in PostgreSQL. Save replaces
// the whole stored sequence in one transaction, matching the whole-file
// rewrite semantics of the JSON store. Each text part is one row; msg_seq
// keeps parts of the same message together across a round trip.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_history (
			id TEXT PRIMARY KEY,
			msg_seq INT NOT NULL,
			part_seq INT NOT NULL,
			role TEXT NOT NULL,
			body TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_history_order ON chat_history (msg_seq, part_seq);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

// historyRow is one persisted text part in message-then-part order.
type historyRow struct {
	msgSeq int
	role   string
	body   string
}

// groupRows reassembles messages from their part rows. Rows must already be
// ordered by (msg_seq, part_seq); consecutive rows with the same msg_seq
// become one multi-part message.
func groupRows(rows []historyRow) []StoredMessage {
	var msgs []StoredMessage
	lastSeq := -1
	for _, r := range rows {
		if len(msgs) == 0 || r.msgSeq != lastSeq {
			msgs = append(msgs, StoredMessage{Role: r.role})
			lastSeq = r.msgSeq
		}
		last := &msgs[len(msgs)-1]
		last.Parts = append(last.Parts, StoredPart{Text: r.body})
	}
	return msgs
}

func (s *PostgresStore) Load(ctx context.Context) ([]StoredMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT msg_seq, role, body FROM chat_history ORDER BY msg_seq, part_seq`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var flat []historyRow
	for rows.Next() {
		var r historyRow
		if err := rows.Scan(&r.msgSeq, &r.role, &r.body); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return groupRows(flat), nil
}

func (s *PostgresStore) Save(ctx context.Context, msgs []StoredMessage) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin history rewrite: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chat_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	for msgSeq, m := range msgs {
		partSeq := 0
		for _, p := range m.Parts {
			if p.Text == "" {
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO chat_history (id, msg_seq, part_seq, role, body) VALUES ($1, $2, $3, $4, $5)`,
				uuid.NewString(), msgSeq, partSeq, m.Role, p.Text); err != nil {
				return fmt.Errorf("insert history row: %w", err)
			}
			partSeq++
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit history rewrite: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

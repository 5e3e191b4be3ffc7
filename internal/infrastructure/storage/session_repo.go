package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/chat"
	domainErrors "github.com/jbctechsolutions/playground/internal/domain/errors"
	"github.com/jbctechsolutions/playground/internal/domain/session"
)

// Compile-time check that SessionRepository implements SessionStore.
var _ ports.SessionStore = (*SessionRepository)(nil)

// SessionRepository implements ports.SessionStore using SQLite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, title, model, temperature, top_p, max_tokens, functions, web_search, system_prompt,
	total_input_tokens, total_output_tokens, total_tokens, total_estimated_cost, message_count,
	created_at, updated_at, agent_id`

// CreateSession persists a new session.
func (r *SessionRepository) CreateSession(ctx context.Context, s *session.Session) error {
	if s.ID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "session ID is required", nil)
	}

	functions, err := marshalFunctions(s.Params.Functions)
	if err != nil {
		return err
	}

	query := `INSERT INTO sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.Title,
		s.Params.Model,
		s.Params.Temperature,
		s.Params.TopP,
		s.Params.MaxTokens,
		functions,
		s.Params.WebSearch,
		s.SystemPrompt,
		s.Totals.TotalInputTokens,
		s.Totals.TotalOutputTokens,
		s.Totals.TotalTokens,
		s.Totals.TotalEstimatedCost.String(),
		s.Totals.MessageCount,
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
		nullableString(s.AgentID),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return domainErrors.NewError(domainErrors.CodeValidation, "session already exists", err)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by its unique identifier.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domainErrors.NewError(domainErrors.CodeNotFound, fmt.Sprintf("session %s", id), domainErrors.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

// UpdateSession saves the title, parameters and system prompt of a session.
// Totals are owned by RefreshTotals and are not written here.
func (r *SessionRepository) UpdateSession(ctx context.Context, s *session.Session) error {
	if s.ID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "session ID is required", nil)
	}

	functions, err := marshalFunctions(s.Params.Functions)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET title = ?, model = ?, temperature = ?, top_p = ?, max_tokens = ?, functions = ?,
			web_search = ?, system_prompt = ?, updated_at = ?
		WHERE id = ?
	`,
		s.Title,
		s.Params.Model,
		s.Params.Temperature,
		s.Params.TopP,
		s.Params.MaxTokens,
		functions,
		s.Params.WebSearch,
		s.SystemPrompt,
		formatTime(s.UpdatedAt),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return requireRow(result, s.ID, domainErrors.ErrSessionNotFound)
}

// ListSessions returns up to limit sessions, most recently updated first.
// A limit of zero or less returns every session.
func (r *SessionRepository) ListSessions(ctx context.Context, limit int) ([]*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY updated_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// AppendExchange persists one message with its accounting and touches the
// session's updated_at.
func (r *SessionRepository) AppendExchange(ctx context.Context, ex *session.Exchange) error {
	if ex.ID == "" || ex.SessionID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "message and session IDs are required", nil)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var metadata sql.NullString
	if len(ex.Metadata) > 0 {
		metadata = sql.NullString{String: string(ex.Metadata), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, role, content, input_tokens, output_tokens, total_tokens, estimated_cost, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ex.ID,
		ex.SessionID,
		string(ex.Role),
		ex.Content,
		ex.InputTokens,
		ex.OutputTokens,
		ex.TotalTokens,
		ex.EstimatedCost.Round(session.CostPlaces).String(),
		metadata,
		formatTime(ex.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint") {
			return domainErrors.NewError(domainErrors.CodeNotFound, fmt.Sprintf("session %s", ex.SessionID), domainErrors.ErrSessionNotFound)
		}
		return fmt.Errorf("failed to append message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE sessions SET updated_at = ? WHERE id = ?", formatTime(ex.CreatedAt), ex.SessionID); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return tx.Commit()
}

// ListExchanges returns a session's messages in creation order.
func (r *SessionRepository) ListExchanges(ctx context.Context, sessionID string) ([]*session.Exchange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, input_tokens, output_tokens, total_tokens, estimated_cost, metadata, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at, rowid
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var exchanges []*session.Exchange
	for rows.Next() {
		var (
			ex        session.Exchange
			role      string
			cost      string
			metadata  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&ex.ID, &ex.SessionID, &role, &ex.Content, &ex.InputTokens, &ex.OutputTokens,
			&ex.TotalTokens, &cost, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		if ex.Role, err = chat.ParseRole(role); err != nil {
			return nil, fmt.Errorf("message %s: %w", ex.ID, err)
		}
		if ex.EstimatedCost, err = parseDecimal(cost); err != nil {
			return nil, err
		}
		if metadata.Valid {
			ex.Metadata = json.RawMessage(metadata.String)
		}
		if ex.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		exchanges = append(exchanges, &ex)
	}

	return exchanges, rows.Err()
}

// RefreshTotals recomputes a session's totals by summing every stored
// message and writes them back. Running it twice yields identical totals.
func (r *SessionRepository) RefreshTotals(ctx context.Context, sessionID string) (session.Totals, error) {
	exchanges, err := r.ListExchanges(ctx, sessionID)
	if err != nil {
		return session.Totals{}, err
	}

	totals := session.RecomputeTotals(exchanges)

	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET total_input_tokens = ?, total_output_tokens = ?, total_tokens = ?, total_estimated_cost = ?, message_count = ?
		WHERE id = ?
	`,
		totals.TotalInputTokens,
		totals.TotalOutputTokens,
		totals.TotalTokens,
		totals.TotalEstimatedCost.String(),
		totals.MessageCount,
		sessionID,
	)
	if err != nil {
		return session.Totals{}, fmt.Errorf("failed to store totals: %w", err)
	}
	if err := requireRow(result, sessionID, domainErrors.ErrSessionNotFound); err != nil {
		return session.Totals{}, err
	}

	return totals, nil
}

// AddFile attaches a file preview to a session.
func (r *SessionRepository) AddFile(ctx context.Context, f *session.UploadedFile) error {
	if f.ID == "" || f.SessionID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "file and session IDs are required", nil)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO uploaded_files (id, session_id, filename, file_type, content_preview, image_format, width, height, size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		f.ID,
		f.SessionID,
		f.Preview.Filename,
		string(f.Preview.Type),
		f.Preview.Content,
		nullableString(f.Preview.ImageFormat),
		nullableInt(f.Preview.Width),
		nullableInt(f.Preview.Height),
		f.Size,
		formatTime(f.UploadedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint") {
			return domainErrors.NewError(domainErrors.CodeNotFound, fmt.Sprintf("session %s", f.SessionID), domainErrors.ErrSessionNotFound)
		}
		return fmt.Errorf("failed to add file: %w", err)
	}

	return nil
}

// ListFiles returns a session's files in upload order.
func (r *SessionRepository) ListFiles(ctx context.Context, sessionID string) ([]*session.UploadedFile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, filename, file_type, content_preview, image_format, width, height, size, uploaded_at
		FROM uploaded_files
		WHERE session_id = ?
		ORDER BY uploaded_at, rowid
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*session.UploadedFile
	for rows.Next() {
		var (
			f           session.UploadedFile
			fileType    string
			imageFormat sql.NullString
			width       sql.NullInt64
			height      sql.NullInt64
			uploadedAt  string
		)
		if err := rows.Scan(&f.ID, &f.SessionID, &f.Preview.Filename, &fileType, &f.Preview.Content,
			&imageFormat, &width, &height, &f.Size, &uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}

		f.Preview.Type = chat.FileType(fileType)
		f.Preview.ImageFormat = imageFormat.String
		f.Preview.Width = int(width.Int64)
		f.Preview.Height = int(height.Int64)
		if f.UploadedAt, err = parseTime(uploadedAt); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}

	return files, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*session.Session, error) {
	var (
		s         session.Session
		functions string
		cost      string
		createdAt string
		updatedAt string
		agentID   sql.NullString
	)

	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Params.Model,
		&s.Params.Temperature,
		&s.Params.TopP,
		&s.Params.MaxTokens,
		&functions,
		&s.Params.WebSearch,
		&s.SystemPrompt,
		&s.Totals.TotalInputTokens,
		&s.Totals.TotalOutputTokens,
		&s.Totals.TotalTokens,
		&cost,
		&s.Totals.MessageCount,
		&createdAt,
		&updatedAt,
		&agentID,
	)
	if err != nil {
		return nil, err
	}
	s.AgentID = agentID.String

	if s.Params.Functions, err = unmarshalFunctions(functions); err != nil {
		return nil, err
	}
	if s.Totals.TotalEstimatedCost, err = parseDecimal(cost); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &s, nil
}

// requireRow turns an update that matched nothing into a not-found error.
func requireRow(result sql.Result, id string, sentinel error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domainErrors.NewError(domainErrors.CodeNotFound, id, sentinel)
	}
	return nil
}

package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for registration persistence.
type Repository interface {
	CreatePending(ctx context.Context, computerID string) (*Registration, error)
	GetByID(ctx context.Context, id int64) (*Registration, error)
	GetByComputerID(ctx context.Context, computerID string) (*Registration, error)
	List(ctx context.Context) ([]Registration, error)
	ListPending(ctx context.Context) ([]Registration, error)
	UpdateStatusIfPending(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (*Stats, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed registration repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const registrationColumns = "id, computer_id, status, request_timestamp, approval_timestamp, notes"

// CreatePending inserts a new Pending registration for the given computer_id.
// A UNIQUE violation on computer_id is reported as ErrComputerIDExists.
func (r *SQLiteRepository) CreatePending(ctx context.Context, computerID string) (*Registration, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO registrations (computer_id, status, request_timestamp) VALUES (?, ?, ?)`,
		computerID, string(StatusPending), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrComputerIDExists
		}
		return nil, fmt.Errorf("creating registration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading insert id: %w", err)
	}

	return &Registration{
		ID:               id,
		ComputerID:       computerID,
		Status:           StatusPending,
		RequestTimestamp: now,
	}, nil
}

// GetByID retrieves a registration by its numeric ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Registration, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE id = ?", id)
	return scanRegistration(row)
}

// GetByComputerID retrieves a registration by its machine identifier.
func (r *SQLiteRepository) GetByComputerID(ctx context.Context, computerID string) (*Registration, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE computer_id = ?", computerID)
	return scanRegistration(row)
}

// List returns all registrations, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]Registration, error) {
	return r.list(ctx,
		"SELECT "+registrationColumns+" FROM registrations ORDER BY id DESC")
}

// ListPending returns Pending registrations in request order, oldest first,
// so the admin works through the queue fairly.
func (r *SQLiteRepository) ListPending(ctx context.Context) ([]Registration, error) {
	return r.list(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE status = ? ORDER BY request_timestamp ASC, id ASC",
		string(StatusPending))
}

// UpdateStatusIfPending moves a registration to a terminal status, guarded
// on the row still being Pending.
//
// The status check lives in the WHERE clause, so the read and write are one
// atomic statement; of two racing decisions exactly one sees rowsAffected=1.
// rowsAffected=0 means the row is missing or already decided, reported as
// ErrNotPending without distinguishing the two.
func (r *SQLiteRepository) UpdateStatusIfPending(ctx context.Context, id int64, status Status) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: cannot move registration to %q", ErrInvalidAction, status)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET status = ?, approval_timestamp = ? WHERE id = ? AND status = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), id, string(StatusPending),
	)
	if err != nil {
		return fmt.Errorf("updating registration status: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotPending
	}
	return nil
}

// Delete removes a registration by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM registrations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting registration: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns per-status registration counts.
func (r *SQLiteRepository) CountByStatus(ctx context.Context) (*Stats, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM registrations GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting registrations: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		switch Status(status) {
		case StatusPending:
			stats.Pending = count
		case StatusApproved:
			stats.Approved = count
		case StatusRejected:
			stats.Rejected = count
		}
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating count rows: %w", err)
	}

	return &stats, nil
}

// list executes a query and scans all registration rows.
func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]Registration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	defer rows.Close()

	regs := []Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating registrations: %w", err)
	}

	return regs, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanRegistration scans a registration from a row or rows cursor.
func scanRegistration(s scanner) (*Registration, error) {
	var reg Registration
	var status, requested string
	var approved, notes sql.NullString

	err := s.Scan(&reg.ID, &reg.ComputerID, &status, &requested, &approved, &notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning registration: %w", err)
	}

	reg.Status = Status(status)
	reg.RequestTimestamp, _ = time.Parse(time.RFC3339, requested) //nolint:errcheck // format is controlled
	if approved.Valid {
		t, _ := time.Parse(time.RFC3339, approved.String) //nolint:errcheck // format is controlled
		reg.ApprovalTimestamp = &t
	}
	if notes.Valid {
		reg.Notes = notes.String
	}

	return &reg, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}

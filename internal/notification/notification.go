// Package notification stores per-user notices such as "order placed".
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Execer is satisfied by both *pgxpool.Pool and pgx.Tx, so a notice can be
// written inside a caller's transaction.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Insert writes an unread notification for userID.
func Insert(ctx context.Context, q Execer, userID, title, message string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
	`, uuid.NewString(), userID, title, message)
	return pkgerrors.Wrap(err, "insert notification")
}

type Repository interface {
	List(ctx context.Context, userID string, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	Get(ctx context.Context, id string) (*Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	out := []Notification{}
	if _, err := uuid.Parse(userID); err != nil {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, title, message, is_read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list notifications")
	}
	defer rows.Close()
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, pkgerrors.Wrap(err, "scan notification")
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PGRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n)
	return n, pkgerrors.Wrap(err, "count unread notifications")
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, title, message, is_read, created_at
		FROM notifications WHERE id = $1
	`, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "get notification")
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, pkgerrors.Wrap(err, "get notification")
		}
		return nil, ErrNotFound
	}
	var n Notification
	if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, pkgerrors.Wrap(err, "scan notification")
	}
	return &n, nil
}

func (r *PGRepo) MarkRead(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return pkgerrors.Wrap(err, "mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

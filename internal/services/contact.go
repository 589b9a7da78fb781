package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/lankaportal/pkg/plugin"
)

// ContactStatus tracks delivery of a contact message to the form endpoint.
type ContactStatus string

const (
	// ContactStored means the message was saved and no endpoint is configured.
	ContactStored ContactStatus = "stored"
	ContactSent   ContactStatus = "sent"
	ContactFailed ContactStatus = "failed"
)

// ContactMessage is one submission of the contact form.
type ContactMessage struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Subject    string        `json:"subject"`
	Message    string        `json:"message"`
	Status     ContactStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
	RemoteAddr string        `json:"-"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ContactRepository persists contact form submissions.
type ContactRepository interface {
	// Create stores msg, assigning ID and timestamps when unset.
	Create(ctx context.Context, msg *ContactMessage) error

	// UpdateStatus records the delivery outcome of a stored message.
	UpdateStatus(ctx context.Context, id string, status ContactStatus, deliveryErr string) error

	// Get returns a single message by id.
	Get(ctx context.Context, id string) (*ContactMessage, error)

	// List returns messages newest first unless opts says otherwise.
	List(ctx context.Context, opts ListOptions) (*ListResult[ContactMessage], error)
}

var _ ContactRepository = (*SQLiteContactRepository)(nil)

// SQLiteContactRepository implements ContactRepository using SQLite.
type SQLiteContactRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteContactRepository runs the contact migrations and returns a
// repository over store.
func NewSQLiteContactRepository(ctx context.Context, store plugin.Store) (*SQLiteContactRepository, error) {
	if err := store.Migrate(ctx, "contact", contactMigrations); err != nil {
		return nil, fmt.Errorf("contact migrations: %w", err)
	}
	return &SQLiteContactRepository{
		db:  store.DB(),
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

const contactColumns = `id, name, email, subject, message, status, error, remote_addr, created_at, updated_at`

var contactSortColumns = map[string]string{
	"":           "created_at",
	"created_at": "created_at",
	"name":       "name",
	"status":     "status",
}

func (r *SQLiteContactRepository) Create(ctx context.Context, msg *ContactMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Status == "" {
		msg.Status = ContactStored
	}
	now := r.now()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_messages (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message,
		string(msg.Status), msg.Error, msg.RemoteAddr, msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}

func (r *SQLiteContactRepository) UpdateStatus(ctx context.Context, id string, status ContactStatus, deliveryErr string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contact_messages SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), deliveryErr, r.now(), id,
	)
	if err != nil {
		return fmt.Errorf("update contact message %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteContactRepository) Get(ctx context.Context, id string) (*ContactMessage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contact_messages WHERE id = ?`, id)
	msg, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get contact message %q: %w", id, err)
	}
	return msg, nil
}

func (r *SQLiteContactRepository) List(ctx context.Context, opts ListOptions) (*ListResult[ContactMessage], error) {
	opts, col, dir, err := opts.resolve(contactSortColumns)
	if err != nil {
		return nil, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count contact messages: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM contact_messages ORDER BY %s %s, id %s LIMIT ? OFFSET ?`,
		contactColumns, col, dir, dir)
	rows, err := r.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	items := []ContactMessage{}
	for rows.Next() {
		msg, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact message row: %w", err)
		}
		items = append(items, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListResult[ContactMessage]{
		Items:  items,
		Total:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(s rowScanner) (*ContactMessage, error) {
	var (
		msg    ContactMessage
		status string
	)
	err := s.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Message,
		&status, &msg.Error, &msg.RemoteAddr, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	msg.Status = ContactStatus(status)
	return &msg, nil
}

var contactMigrations = []plugin.Migration{
	{
		Version:     1,
		Description: "create contact_messages table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE contact_messages (
					id          TEXT PRIMARY KEY,
					name        TEXT NOT NULL,
					email       TEXT NOT NULL,
					subject     TEXT NOT NULL,
					message     TEXT NOT NULL,
					status      TEXT NOT NULL,
					error       TEXT NOT NULL DEFAULT '',
					remote_addr TEXT NOT NULL DEFAULT '',
					created_at  DATETIME NOT NULL,
					updated_at  DATETIME NOT NULL
				)`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index contact_messages by created_at",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX idx_contact_messages_created_at ON contact_messages (created_at)`)
			return err
		},
	},
}

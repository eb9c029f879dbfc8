package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/contactdex/contactdex/internal/model"
)

// ErrContactNotFound is returned when a contact does not exist or is not
// owned by the requesting user. The two cases are deliberately
// indistinguishable so callers cannot probe other users' data.
var ErrContactNotFound = errors.New("contact not found")

const contactColumns = "id, first_name, last_name, email, phone, date_of_birth, user_id, created_at"

// CreateContact inserts a new contact and fills in the generated id and
// created_at. Ownership comes from contact.UserID.
func (r *Repository) CreateContact(ctx context.Context, contact *model.Contact) error {
	query := `
		INSERT INTO contacts (first_name, last_name, email, phone, date_of_birth, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.DateOfBirth,
		contact.UserID,
	).Scan(&contact.ID, &contact.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// GetContact retrieves a contact by id, scoped to the owning user.
func (r *Repository) GetContact(ctx context.Context, id, userID int64) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`

	contact, err := scanContact(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

// ListContacts returns the user's contacts in insertion order (by id),
// applying the given offset and limit.
func (r *Repository) ListContacts(ctx context.Context, userID int64, skip, limit int) ([]*model.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`

	return r.queryContacts(ctx, query, userID, skip, limit)
}

// ListContactsByPrefix returns the user's contacts whose given column
// starts with prefix. The match is case-sensitive; LIKE metacharacters in
// the prefix are escaped so they match literally.
func (r *Repository) ListContactsByPrefix(ctx context.Context, userID int64, column, prefix string) ([]*model.Contact, error) {
	// Column names come from a fixed dispatch table in the service layer,
	// never from user input.
	switch column {
	case "first_name", "last_name", "email":
	default:
		return nil, fmt.Errorf("unsupported prefix column %q", column)
	}

	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1 AND ` + column + ` LIKE $2 ESCAPE '\'
		ORDER BY id
	`

	return r.queryContacts(ctx, query, userID, escapeLikePrefix(prefix)+"%")
}

// ListAllContacts returns every contact owned by the user. The birthday
// window filter is computed in application code, so it needs the full set.
func (r *Repository) ListAllContacts(ctx context.Context, userID int64) ([]*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 ORDER BY id`
	return r.queryContacts(ctx, query, userID)
}

// UpdateContact overwrites all mutable fields of the contact and returns
// the updated record. Partial updates are not supported here.
func (r *Repository) UpdateContact(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	query := `
		UPDATE contacts
		SET first_name = $3, last_name = $4, email = $5, phone = $6, date_of_birth = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns

	updated, err := scanContact(r.pool.QueryRow(ctx, query,
		contact.ID,
		contact.UserID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.DateOfBirth,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return updated, nil
}

// UpdateContactDateOfBirth overwrites only the date of birth.
func (r *Repository) UpdateContactDateOfBirth(ctx context.Context, id, userID int64, dateOfBirth time.Time) (*model.Contact, error) {
	query := `
		UPDATE contacts
		SET date_of_birth = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns

	updated, err := scanContact(r.pool.QueryRow(ctx, query, id, userID, dateOfBirth))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to update date of birth: %w", err)
	}

	return updated, nil
}

// DeleteContact removes the contact and returns the deleted record.
func (r *Repository) DeleteContact(ctx context.Context, id, userID int64) (*model.Contact, error) {
	query := `
		DELETE FROM contacts
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns

	deleted, err := scanContact(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to delete contact: %w", err)
	}

	return deleted, nil
}

func (r *Repository) queryContacts(ctx context.Context, query string, args ...any) ([]*model.Contact, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// scanContact scans a single row into a Contact model.
func scanContact(row pgx.Row) (*model.Contact, error) {
	var contact model.Contact
	err := row.Scan(
		&contact.ID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.Phone,
		&contact.DateOfBirth,
		&contact.UserID,
		&contact.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// escapeLikePrefix escapes LIKE metacharacters so a prefix matches literally.
func escapeLikePrefix(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(prefix)
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	// PostgreSQL error code 23505 is unique_violation
	return err != nil && (strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "unique"))
}

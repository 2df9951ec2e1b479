package store

import (
	"context"
	"database/sql"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// Contacts returns all contacts of the given owner ordered by name.
//
// Parameters:
// - ctx: the context for managing the request.
// - owner: the wallet address owning the contact book.
//
// Returns:
// - []types.Contact: the owner's contacts, possibly empty.
// - error: an error if the query fails.
func (s *Store) Contacts(ctx context.Context, owner string) ([]types.Contact, error) {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, cherrors.ErrDatabaseConnect
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
        SELECT name, address, group_name
        FROM contacts
        WHERE owner = $1
        ORDER BY name
    `, owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query contacts")
	}
	defer rows.Close()

	var contacts []types.Contact
	for rows.Next() {
		var contact types.Contact
		if err := rows.Scan(&contact.Name, &contact.Address, &contact.Group); err != nil {
			return nil, errors.Wrap(err, "failed to scan contact row")
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// CreateContact saves a contact in the owner's contact book. Contact names
// are unique per owner.
//
// Returns:
// - error: ErrContactExists when the owner already has a contact with
// that name.
func (s *Store) CreateContact(ctx context.Context, owner string, contact types.Contact) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return cherrors.ErrDatabaseConnect
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
        INSERT INTO contacts (owner, name, address, group_name)
        VALUES ($1, $2, $3, $4)
    `, owner, contact.Name, contact.Address, contact.Group)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return errors.Wrapf(ErrContactExists, "contact %q", contact.Name)
		}
		return errors.Wrap(err, "failed to insert contact")
	}
	return nil
}

// CreateTeam saves a team for grouping contacts. Team names are unique per
// owner. Membership lives on the contacts themselves: any named members are
// moved into the team's group, and TeamMembers reads them back from there.
//
// Returns:
// - error: ErrTeamExists when the owner already has a team with that name.
func (s *Store) CreateTeam(ctx context.Context, owner string, team types.Team) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return cherrors.ErrDatabaseConnect
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
        INSERT INTO teams (owner, name, description)
        VALUES ($1, $2, $3)
    `, owner, team.Name, team.Description)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return errors.Wrapf(ErrTeamExists, "team %q", team.Name)
		}
		return errors.Wrap(err, "failed to insert team")
	}

	if len(team.Members) > 0 {
		_, err = db.ExecContext(ctx, `
            UPDATE contacts
            SET group_name = $1
            WHERE owner = $2 AND name = ANY($3)
        `, team.Name, owner, pq.Array(team.Members))
		if err != nil {
			return errors.Wrap(err, "failed to assign team members")
		}
	}
	return nil
}

// TeamMembers returns the contacts whose group matches the team name.
func (s *Store) TeamMembers(ctx context.Context, owner, teamName string) ([]types.Contact, error) {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, cherrors.ErrDatabaseConnect
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
        SELECT name, address, group_name
        FROM contacts
        WHERE owner = $1 AND group_name = $2
        ORDER BY name
    `, owner, teamName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query team members")
	}
	defer rows.Close()

	var members []types.Contact
	for rows.Next() {
		var contact types.Contact
		if err := rows.Scan(&contact.Name, &contact.Address, &contact.Group); err != nil {
			return nil, errors.Wrap(err, "failed to scan contact row")
		}
		members = append(members, contact)
	}
	return members, rows.Err()
}

package store

import (
	"context"
	"database/sql"

	cherrors "github.com/chainchat-labs/chainchat/common/errors"
	"github.com/chainchat-labs/chainchat/common/types"
	"github.com/pkg/errors"
)

// LogActivity appends one entry to the activity log. Callers treat logging
// as best effort, a failed insert never blocks the chat flow.
func (s *Store) LogActivity(ctx context.Context, entry types.ActivityEntry) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return cherrors.ErrDatabaseConnect
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
        INSERT INTO activity_log (session_id, action, message, intent, result)
        VALUES ($1, $2, $3, $4, $5)
    `, entry.SessionID, entry.Action, entry.Message, entry.Intent, entry.Result)
	if err != nil {
		return errors.Wrap(err, "failed to insert activity entry")
	}
	return nil
}

package sqldb

import (
	"context"

	"finsight-server/src/models"
)

func (s *Store) QueryRecurringStreams(ctx context.Context, userID int64) ([]models.RecurringStream, error) {
	query := `
		SELECT id, user_id, stream_id, name, payee_name, account_id, category_id, frequency,
		       average_amount, last_amount, last_date, is_active, created_at
		FROM recurring_streams
		WHERE user_id = $1
		ORDER BY stream_id
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	streams := []models.RecurringStream{}
	for rows.Next() {
		var r models.RecurringStream
		err := rows.Scan(&r.ID, &r.UserID, &r.StreamID, &r.Name, &r.PayeeName, &r.AccountID, &r.CategoryID, &r.Frequency,
			&r.AverageAmount, &r.LastAmount, &r.LastDate, &r.IsActive, &r.CreatedAt)
		if err != nil {
			return nil, err
		}
		streams = append(streams, r)
	}
	return streams, rows.Err()
}

// InsertRecurringStream reports false when the user already has the stream id.
func (s *Store) InsertRecurringStream(ctx context.Context, r models.RecurringStream) (bool, error) {
	query := `
		INSERT INTO recurring_streams (id, user_id, stream_id, name, payee_name, account_id, category_id, frequency,
		                               average_amount, last_amount, last_date, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, stream_id) DO NOTHING
	`
	cmd, err := s.pool.Exec(ctx, query, r.ID, r.UserID, r.StreamID, r.Name, r.PayeeName, r.AccountID, r.CategoryID, r.Frequency,
		r.AverageAmount, r.LastAmount, r.LastDate, r.IsActive, r.CreatedAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

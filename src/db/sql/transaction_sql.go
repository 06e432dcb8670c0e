package sqldb

import (
	"context"
	"fmt"
	"time"

	"finsight-server/src/db"
	"finsight-server/src/models"
)

func (s *Store) QueryEvents(ctx context.Context, userID int64, accountID *string, start, end time.Time) ([]models.MoneyEvent, error) {
	query := `
		SELECT id, user_id, account_id, category_id, date, amount, payee_name, primary_category
		FROM transactions
		WHERE user_id = $1
		  AND ($2::text IS NULL OR account_id = $2)
		  AND date BETWEEN $3::date AND $4::date
		ORDER BY date, id
	`
	rows, err := s.pool.Query(ctx, query, userID, accountID, start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.MoneyEvent{}
	for rows.Next() {
		var e models.MoneyEvent
		err := rows.Scan(&e.ID, &e.UserID, &e.AccountID, &e.CategoryID, &e.Date, &e.Amount, &e.PayeeName, &e.PrimaryCategory)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) GetEvent(ctx context.Context, userID int64, eventID string) (models.MoneyEvent, error) {
	query := `
		SELECT id, user_id, account_id, category_id, date, amount, payee_name, primary_category
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`
	var e models.MoneyEvent
	err := s.pool.QueryRow(ctx, query, eventID, userID).
		Scan(&e.ID, &e.UserID, &e.AccountID, &e.CategoryID, &e.Date, &e.Amount, &e.PayeeName, &e.PrimaryCategory)
	if err != nil {
		return models.MoneyEvent{}, notFound(err, "transaction "+eventID)
	}
	return e, nil
}

func (s *Store) UpdateEventCategory(ctx context.Context, userID int64, eventID string, categoryID *string) error {
	query := `UPDATE transactions SET category_id = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`
	cmd, err := s.pool.Exec(ctx, query, categoryID, eventID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", eventID, db.ErrNotFound)
	}
	return nil
}

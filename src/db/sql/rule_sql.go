package sqldb

import (
	"context"

	"finsight-server/src/models"
)

func (s *Store) QueryRules(ctx context.Context, userID int64) ([]models.CategorizationRule, error) {
	query := `
		SELECT id, user_id, match_type, match_value, category_id, priority, created_at
		FROM categorization_rules
		WHERE user_id = $1
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.CategorizationRule{}
	for rows.Next() {
		var r models.CategorizationRule
		if err := rows.Scan(&r.ID, &r.UserID, &r.MatchType, &r.MatchValue, &r.CategoryID, &r.Priority, &r.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *Store) InsertCategorizationRule(ctx context.Context, r models.CategorizationRule) error {
	query := `
		INSERT INTO categorization_rules (id, user_id, match_type, match_value, category_id, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query, r.ID, r.UserID, r.MatchType, r.MatchValue, r.CategoryID, r.Priority, r.CreatedAt)
	return err
}

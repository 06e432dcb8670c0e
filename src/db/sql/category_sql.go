package sqldb

import (
	"context"

	"finsight-server/src/models"
)

func (s *Store) QueryCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	query := `
		SELECT id, user_id, name, type, monthly_budget
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.MonthlyBudget); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

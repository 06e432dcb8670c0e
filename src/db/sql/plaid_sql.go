package sqldb

import (
	"context"

	"finsight-server/src/models"
)

func (s *Store) QueryPlaidItems(ctx context.Context, userID int64) ([]models.PlaidItem, error) {
	query := `SELECT id::text, user_id, access_token, item_id, created_at::text FROM plaid_items WHERE user_id = $1 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.PlaidItem{}
	for rows.Next() {
		var item models.PlaidItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.AccessToken, &item.ItemID, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetAccessToken looks an item up by its provider item id.
func (s *Store) GetAccessToken(ctx context.Context, userID int64, itemID string) (string, error) {
	query := `SELECT access_token FROM plaid_items WHERE user_id = $1 AND item_id = $2`
	var token string
	if err := s.pool.QueryRow(ctx, query, userID, itemID).Scan(&token); err != nil {
		return "", notFound(err, "plaid item "+itemID)
	}
	return token, nil
}

// ResolveAccount maps a provider account id to the internal account id.
func (s *Store) ResolveAccount(ctx context.Context, userID int64, externalAccountID string) (string, error) {
	query := `
		SELECT a.id::text
		FROM accounts a
		JOIN plaid_items p ON a.item_id = p.id
		WHERE p.user_id = $1 AND a.account_id = $2
	`
	var id string
	if err := s.pool.QueryRow(ctx, query, userID, externalAccountID).Scan(&id); err != nil {
		return "", notFound(err, "account "+externalAccountID)
	}
	return id, nil
}

// UserForItem finds the owner of a provider item, for webhook delivery.
func (s *Store) UserForItem(ctx context.Context, itemID string) (int64, error) {
	query := `SELECT user_id FROM plaid_items WHERE item_id = $1`
	var userID int64
	if err := s.pool.QueryRow(ctx, query, itemID).Scan(&userID); err != nil {
		return 0, notFound(err, "plaid item "+itemID)
	}
	return userID, nil
}

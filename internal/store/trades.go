package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scubahq/tradevault/internal/domain"
)

// SaveTradeRecord appends a completed trade to the history. History rows are
// never mutated or deleted, even by a full user reset.
func (s *Postgres) SaveTradeRecord(ctx context.Context, r *domain.TradeRecord) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO trade_history
            (trade_id, buyer_id, seller_id, account_type, price, description, completed_at, trade_channel_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.TradeID, r.BuyerID, r.SellerID, r.AccountType, r.Price, r.Description, r.CompletedAt, r.ChannelID)
	if err != nil {
		return fmt.Errorf("save trade %s: %w", r.TradeID, err)
	}
	return nil
}

// GetTradeRecord fetches a history row; the vouch publisher uses it to embed
// the listing snapshot in the combined record.
func (s *Postgres) GetTradeRecord(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	var r domain.TradeRecord
	err := s.db.QueryRow(ctx, `
        SELECT trade_id, buyer_id, seller_id, account_type, price, description, completed_at, trade_channel_id
        FROM trade_history WHERE trade_id = $1`,
		tradeID,
	).Scan(&r.TradeID, &r.BuyerID, &r.SellerID, &r.AccountType, &r.Price, &r.Description, &r.CompletedAt, &r.ChannelID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trade %s: %w", tradeID, err)
	}
	return &r, nil
}

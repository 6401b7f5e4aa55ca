package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool the stores use. pgxmock's pool
// interface satisfies it, which is what the store tests run against.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var Conn *pgxpool.Pool

// Init connects to Postgres and ensures the schema exists.
func Init(databaseURL string) {
	var err error
	Conn, err = pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	ensureUserStatsTable()
	ensureListingTables()
	ensureTradeHistoryTable()
	ensureVouchTables()
	ensureTicketsTable()
}

// Close releases the pool.
func Close() {
	if Conn != nil {
		Conn.Close()
	}
}

func ensureUserStatsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS user_stats (
            user_id BIGINT PRIMARY KEY,
            username VARCHAR(255),
            sales INTEGER DEFAULT 0,
            purchases INTEGER DEFAULT 0,
            total_rating INTEGER DEFAULT 0,
            rating_count INTEGER DEFAULT 0,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		log.Printf("failed to ensure user_stats: %v", err)
	}
}

func ensureListingTables() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS temp_sales (
            user_id BIGINT PRIMARY KEY,
            account_type VARCHAR(255),
            price VARCHAR(100),
            description TEXT,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            expires_at TIMESTAMPTZ NOT NULL
        )`)
	if err != nil {
		log.Printf("failed to ensure temp_sales: %v", err)
	}

	_, err = Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS active_listings (
            listing_id VARCHAR(255) PRIMARY KEY,
            user_id BIGINT NOT NULL,
            account_type VARCHAR(255),
            price VARCHAR(100),
            description TEXT,
            image_urls TEXT,
            listing_channel_id BIGINT,
            listing_message_id BIGINT,
            extra_message_ids TEXT,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_listings_user ON active_listings(user_id);
        CREATE INDEX IF NOT EXISTS idx_listings_created ON active_listings(created_at)`)
	if err != nil {
		log.Printf("failed to ensure active_listings: %v", err)
	}
}

func ensureTradeHistoryTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS trade_history (
            trade_id VARCHAR(255) PRIMARY KEY,
            buyer_id BIGINT NOT NULL,
            seller_id BIGINT NOT NULL,
            account_type VARCHAR(255),
            price VARCHAR(100),
            description TEXT,
            completed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            trade_channel_id BIGINT
        );
        CREATE INDEX IF NOT EXISTS idx_trade_history_users ON trade_history(buyer_id, seller_id)`)
	if err != nil {
		log.Printf("failed to ensure trade_history: %v", err)
	}
}

func ensureVouchTables() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS vouches (
            id SERIAL PRIMARY KEY,
            trade_id VARCHAR(255) NOT NULL,
            rater_id BIGINT NOT NULL,
            rated_user_id BIGINT NOT NULL,
            rating INTEGER CHECK (rating >= 1 AND rating <= 5),
            comment TEXT,
            role VARCHAR(20) CHECK (role IN ('buyer', 'seller')),
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(trade_id, rater_id)
        );
        CREATE INDEX IF NOT EXISTS idx_vouches_rated_user ON vouches(rated_user_id);
        CREATE INDEX IF NOT EXISTS idx_vouches_trade ON vouches(trade_id)`)
	if err != nil {
		log.Printf("failed to ensure vouches: %v", err)
	}

	_, err = Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS pending_vouches (
            trade_id VARCHAR(255),
            role VARCHAR(20) CHECK (role IN ('buyer', 'seller')),
            rater_id BIGINT NOT NULL,
            rated_user_id BIGINT NOT NULL,
            rating INTEGER CHECK (rating >= 1 AND rating <= 5),
            comment TEXT,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (trade_id, role)
        )`)
	if err != nil {
		log.Printf("failed to ensure pending_vouches: %v", err)
	}
}

func ensureTicketsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS support_tickets (
            ticket_id SERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            channel_id BIGINT UNIQUE,
            status VARCHAR(20) DEFAULT 'open' CHECK (status IN ('open', 'closed')),
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            closed_at TIMESTAMPTZ,
            closed_by BIGINT
        )`)
	if err != nil {
		log.Printf("failed to ensure support_tickets: %v", err)
	}
}

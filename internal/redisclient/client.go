package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"sales-notifier/internal/models"

	"github.com/go-redis/redis/v8"
)

const cursorKey = "notifier:cursors"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// LoadCursors reads the persisted cursor record. A missing key yields
// zero cursors, not an error.
func (c *Client) LoadCursors(ctx context.Context) (models.CursorState, error) {
	result, err := c.rdb.HGetAll(ctx, cursorKey).Result()
	if err != nil {
		return models.CursorState{}, fmt.Errorf("failed to load cursor state: %w", err)
	}

	return models.CursorState{
		LedgerSaleID: parseCursor(result["ledger_sale_id"]),
		SaleID:       parseCursor(result["sale_id"]),
		PaymentID:    parseCursor(result["payment_id"]),
	}, nil
}

// SaveCursors rewrites the full cursor record.
func (c *Client) SaveCursors(ctx context.Context, state models.CursorState) error {
	err := c.rdb.HSet(ctx, cursorKey,
		"ledger_sale_id", state.LedgerSaleID,
		"sale_id", state.SaleID,
		"payment_id", state.PaymentID,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save cursor state: %w", err)
	}
	return nil
}

func parseCursor(raw string) int64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

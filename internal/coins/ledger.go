package coins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

var (
	ErrInsufficientCoins = errors.New("insufficient coin balance")
	ErrUnknownUser       = errors.New("coin account not found")
	ErrInvalidAmount     = errors.New("coin amount must be positive")
)

// Ledger keeps each user's coin balance and an append-only transaction log.
type Ledger struct {
	db  *db.DB
	now func() time.Time
}

func NewLedger(database *db.DB) (*Ledger, error) {
	if database == nil {
		return nil, errors.New("coin ledger requires a database")
	}
	return &Ledger{db: database, now: time.Now}, nil
}

func (l *Ledger) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	balance, err := l.db.Queries.GetUserCoinBalance(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrUnknownUser
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load coin balance: %w", err)
	}
	return balance, nil
}

// Debit removes amount from the user's balance in its own transaction and
// returns the transaction ID.
func (l *Ledger) Debit(ctx context.Context, userID int64, amount decimal.Decimal, reference string) (string, error) {
	var txID string
	err := l.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		txID, err = l.DebitWithin(ctx, txdb, userID, amount, reference)
		return err
	})
	return txID, err
}

// DebitWithin is Debit against a caller-owned transaction.
func (l *Ledger) DebitWithin(ctx context.Context, txdb *db.DB, userID int64, amount decimal.Decimal, reference string) (string, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	return l.apply(ctx, txdb.Queries, userID, amount.Neg(), reference)
}

// CreditWithin returns coins to the user, used when a coin payment is refunded.
func (l *Ledger) CreditWithin(ctx context.Context, txdb *db.DB, userID int64, amount decimal.Decimal, reference string) (string, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	return l.apply(ctx, txdb.Queries, userID, amount, reference)
}

func (l *Ledger) apply(ctx context.Context, q *dbgen.Queries, userID int64, delta decimal.Decimal, reference string) (string, error) {
	balance, err := q.GetUserCoinBalance(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", fmt.Errorf("load coin balance: %w", err)
	}

	next := balance.Add(delta)
	if next.IsNegative() {
		return "", ErrInsufficientCoins
	}

	now := l.now().UTC()
	if err := q.UpdateUserCoinBalance(ctx, dbgen.UpdateUserCoinBalanceParams{
		CoinBalance: next,
		UpdatedAt:   now,
		ID:          userID,
	}); err != nil {
		return "", fmt.Errorf("update coin balance: %w", err)
	}

	txn, err := q.CreateCoinTransaction(ctx, dbgen.CreateCoinTransactionParams{
		TransactionID: "COIN-" + uuid.NewString(),
		UserID:        userID,
		Amount:        delta,
		BalanceAfter:  next,
		Reference:     reference,
		CreatedAt:     now,
	})
	if err != nil {
		return "", fmt.Errorf("create coin transaction: %w", err)
	}

	log.Ctx(ctx).Info().
		Int64("user_id", userID).
		Str("transaction_id", txn.TransactionID).
		Str("delta", delta.String()).
		Str("balance_after", next.String()).
		Msg("Coin balance updated")
	return txn.TransactionID, nil
}

// Package txmanager управляет транзакциями БД с метриками.
// Сериализуемые транзакции повторяются ограниченное число раз при
// конфликте сериализации, после чего возвращается ErrRetryExhausted.
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/salonflow/scheduling-service/pkg/dbmetrics"
)

const (
	// DefaultMaxAttempts число попыток выполнения сериализуемой транзакции
	DefaultMaxAttempts = 3

	// DefaultRetryBackoff пауза между попытками
	DefaultRetryBackoff = 50 * time.Millisecond
)

var (
	// ErrRetryExhausted возвращается, когда все попытки выполнить
	// сериализуемую транзакцию завершились конфликтом сериализации
	ErrRetryExhausted = errors.New("txmanager: serialization retry attempts exhausted")
)

// IsSerializationFailure проверяет, является ли ошибка конфликтом
// сериализации PostgreSQL (40001) или deadlock (40P01)
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// TransactionManager менеджер транзакций поверх БД с метриками
type TransactionManager struct {
	db          *dbmetrics.DB
	maxAttempts int
	backoff     time.Duration
}

// NewTransactionManager создает новый менеджер транзакций
func NewTransactionManager(db *dbmetrics.DB) *TransactionManager {
	return &TransactionManager{
		db:          db,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultRetryBackoff,
	}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции с повтором
// при конфликте сериализации (до maxAttempts попыток)
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err := m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
		if err == nil {
			return nil
		}
		if !IsSerializationFailure(err) {
			return err
		}

		lastErr = err
		if attempt < m.maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.backoff * time.Duration(attempt)):
			}
		}
	}

	return fmt.Errorf("%w: after %d attempts: %v", ErrRetryExhausted, m.maxAttempts, lastErr)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("txmanager: begin transaction: %w", err)
	}

	txCtx := dbmetrics.WithTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		// Конфликт сериализации может проявиться и на commit
		return fmt.Errorf("txmanager: commit transaction: %w", err)
	}

	return nil
}

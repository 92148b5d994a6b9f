package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrRetriable помечает ошибку как временную: RetryWithBackoff повторит операцию.
var ErrRetriable = errors.New("retriable error")

// retryIntervals определяет интервалы ожидания между попытками повторения операции.
var retryIntervals = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

// RetryWithBackoff выполняет функцию op с повторными попытками и увеличивающейся задержкой между ними.
//
// Первая попытка выполняется сразу, каждая следующая после очередного интервала из retryIntervals.
// После последней попытки ожидания нет. Если контекст завершён во время ожидания,
// возвращается ошибка контекста вместе с последней ошибкой op.
//
// ctx — контекст для управления временем жизни попыток.
// op  — функция, которую требуется выполнить с повторными попытками.
//
// Возвращает nil при успехе или ошибку, если операция не удалась после всех попыток.
func RetryWithBackoff(ctx context.Context, op func() error) error {
	err := op()
	for i, wait := range retryIntervals {
		if err == nil || !isRetriableError(err) {
			return err
		}
		zap.L().Warn("retriable error",
			zap.Error(err),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", len(retryIntervals)+1),
			zap.Duration("retry_in", wait),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: last error: %w", ctx.Err(), err)
		case <-time.After(wait):
		}
		err = op()
	}
	if err == nil || !isRetriableError(err) {
		return err
	}
	return fmt.Errorf("operation failed after retries: %w", err)
}

// isRetriableError определяет, является ли ошибка временной (retriable).
//
// err — ошибка для проверки.
//
// Возвращает true для ошибок соединения PostgreSQL (коды SQLSTATE, начинающиеся с "08"),
// сетевых таймаутов и ошибок, обёрнутых в ErrRetriable.
func isRetriableError(err error) bool {
	if errors.Is(err, ErrRetriable) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

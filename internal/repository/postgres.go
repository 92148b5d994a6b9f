package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RoGogDBD/social-pulse/internal/config"
	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertHistoryStmt = `
	INSERT INTO metric_history (session_id, tick, name, value, label, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (session_id, tick, name) DO UPDATE
	SET value = EXCLUDED.value,
		label = EXCLUDED.label,
		recorded_at = EXCLUDED.recorded_at
`

const selectHistoryStmt = `
	SELECT label, value
	FROM metric_history
	WHERE name = $1
	ORDER BY recorded_at DESC, tick DESC
	LIMIT $2
`

// Postgres архивирует значения метрик каждого тика в таблицу metric_history.
type Postgres struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgres создаёт архив поверх готового пула соединений.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, timeout: 10 * time.Second}
}

// Close закрывает пул соединений.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Ping проверяет доступность базы данных.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

// OnSnapshot сохраняет снимок; используется как наблюдатель тиков.
func (p *Postgres) OnSnapshot(snapshot models.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.SaveSnapshot(ctx, snapshot)
}

// SaveSnapshot записывает текущее значение каждой метрики снимка в одной транзакции.
//
// Начальный снимок (тик 0) не архивируется.
func (p *Postgres) SaveSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	if snapshot.Tick == 0 {
		return nil
	}

	return config.RetryWithBackoff(ctx, func() error {
		tx, err := p.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		batch := &pgx.Batch{}
		for _, r := range archiveRows(snapshot) {
			batch.Queue(insertHistoryStmt, r.SessionID, r.Tick, r.Name, r.Value, r.Label, r.RecordedAt)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert history for tick %d: %w", snapshot.Tick, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// History возвращает до limit последних архивных точек метрики в хронологическом порядке.
func (p *Postgres) History(ctx context.Context, name string, limit int) ([]models.HistoryPoint, error) {
	rows, err := p.pool.Query(ctx, selectHistoryStmt, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", name, err)
	}

	points, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.HistoryPoint, error) {
		var hp models.HistoryPoint
		err := row.Scan(&hp.Time, &hp.Value)
		return hp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan history for %s: %w", name, err)
	}

	return chronological(points), nil
}

// archiveRow — одна строка таблицы metric_history.
type archiveRow struct {
	SessionID  string
	Tick       int64
	Name       string
	Value      int64
	Label      string
	RecordedAt time.Time
}

// archiveRows раскладывает снимок на строки архива, по одной на метрику.
// Метка берётся из последней точки истории.
func archiveRows(snapshot models.Snapshot) []archiveRow {
	rows := make([]archiveRow, 0, len(snapshot.Metrics))
	for _, m := range snapshot.Metrics {
		label := ""
		if n := len(m.History); n > 0 {
			label = m.History[n-1].Time
		}
		rows = append(rows, archiveRow{
			SessionID:  snapshot.SessionID,
			Tick:       snapshot.Tick,
			Name:       m.Name,
			Value:      m.Value,
			Label:      label,
			RecordedAt: snapshot.Timestamp,
		})
	}
	return rows
}

// chronological разворачивает выборку "новые первыми" на месте.
func chronological(points []models.HistoryPoint) []models.HistoryPoint {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CorrScope/internal/domain/models"
	"CorrScope/pkg/clickhouse"
	"CorrScope/pkg/util"
)

// ClickHouseSeriesSource reads daily close prices from a ClickHouse table
// with (symbol, date, close) columns.
type ClickHouseSeriesSource struct {
	client *clickhouse.Client
	table  string
}

func NewClickHouseSeriesSource(client *clickhouse.Client, table string) *ClickHouseSeriesSource {
	if table == "" {
		table = "daily_prices"
	}
	return &ClickHouseSeriesSource{client: client, table: table}
}

func (s *ClickHouseSeriesSource) Load(ctx context.Context, symbol string) (models.Series, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	query := fmt.Sprintf(
		"SELECT date, close FROM %s WHERE symbol = ? ORDER BY date ASC", s.table)

	rows, err := s.client.DB().QueryContext(ctx, query, sym)
	if err != nil {
		return models.Series{}, fmt.Errorf("clickhouse query %s: %w", sym, err)
	}
	defer rows.Close()

	var points []models.Point
	for rows.Next() {
		var (
			date  time.Time
			value float64
		)
		if err := rows.Scan(&date, &value); err != nil {
			return models.Series{}, fmt.Errorf("clickhouse scan %s: %w", sym, err)
		}
		points = append(points, models.Point{Date: util.Midnight(date), Value: value})
	}
	if err := rows.Err(); err != nil {
		return models.Series{}, fmt.Errorf("clickhouse rows %s: %w", sym, err)
	}
	if len(points) == 0 {
		return models.Series{}, fmt.Errorf("clickhouse %s: %w", sym, models.ErrSeriesNotFound)
	}
	return models.Series{Symbol: sym, Points: points}, nil
}

// Package dashboard loads the cleaned merged dataset into ClickHouse,
// where the BI dashboard reads it. Table management goes through the
// clickhouse-go driver; bulk inserts use the ch-go native protocol with
// columnar batches.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/aerodata/flightprep/internal/config"
)

// createTableDDL is the merged-flights table. Partitioned by month so
// reloading a month replaces it instead of duplicating rows.
const createTableDDL = `CREATE TABLE IF NOT EXISTS %s (
	fl_date        DateTime,
	airline        LowCardinality(String),
	flight_num     String,
	tail_num       String,
	origin         LowCardinality(String),
	dest           LowCardinality(String),
	sched_dep      String,
	dep_time       String,
	sched_arr      String,
	arr_time       String,
	dep_delay_min  Float64,
	arr_delay_min  Float64,
	distance       Float64,
	cancelled      UInt8,
	temp           Float64,
	dewp           Float64,
	humid          Float64,
	wind_dir       Float64,
	wind_speed     Float64,
	wind_gust      Float64,
	precip         Float64,
	pressure       Float64,
	visib          Float64,
	has_weather    UInt8,
	delay_category LowCardinality(String),
	weather_impact LowCardinality(String)
) ENGINE = MergeTree
PARTITION BY toYYYYMM(fl_date)
ORDER BY (fl_date, origin, airline)`

// Connect opens a clickhouse-go connection and verifies it with a ping.
func Connect(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Host},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse connect: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	return conn, nil
}

// EnsureTable creates the merged-flights table when absent.
func EnsureTable(ctx context.Context, conn driver.Conn, database, table string) error {
	ddl := fmt.Sprintf(createTableDDL, fmt.Sprintf("%s.%s", database, table))
	return conn.Exec(ctx, ddl)
}

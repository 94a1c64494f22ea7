// flightprep-load - Parquet to ClickHouse warehouse loader
//
// Reads the exported Parquet dataset and inserts it into the dashboard
// table via the ch-go native protocol. Monthly partitions are dropped
// before reload so repeated loads stay idempotent.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/flightprep-load ./cmd/flightprep-load

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aerodata/flightprep/internal/config"
	"github.com/aerodata/flightprep/internal/dashboard"
	"github.com/aerodata/flightprep/internal/export"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const (
	NumWorkers = 4
	BatchSize  = 100_000
)

type Stats struct {
	TotalRows     atomic.Uint64
	TotalBytes    atomic.Uint64
	FilesComplete atomic.Uint64
	StartTime     time.Time
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// distinctMonths returns the yyyymm partitions present in the rows.
func distinctMonths(rows []export.Row) []string {
	seen := make(map[string]struct{})
	for i := range rows {
		d := rows[i].FlDate
		if len(d) >= 7 {
			seen[d[:4]+d[5:7]] = struct{}{}
		}
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// dispatch runs fn for each file through a bounded worker pool. No new
// work is scheduled once ctx is cancelled; in-flight files drain first.
func dispatch(ctx context.Context, files []string, workers int, fn func(string)) {
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(fp)
		}(filePath)
	}

	wg.Wait()
}

func processFile(ctx context.Context, filePath, chHost, chDB, chTable string, stats *Stats) {
	fileName := filepath.Base(filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		log.Printf("[%s] Stat error: %v", fileName, err)
		return
	}

	rows, err := export.ReadParquet(filePath)
	if err != nil {
		log.Printf("[%s] Parquet read error: %v", fileName, err)
		return
	}

	conn, err := dashboard.Dial(ctx, chHost, chDB)
	if err != nil {
		log.Printf("[%s] Connect error: %v", fileName, err)
		return
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", chDB, chTable)

	for _, month := range distinctMonths(rows) {
		if err := dashboard.DropPartition(ctx, conn, tableFQN, month); err != nil {
			log.Printf("[%s] Partition drop warning (%s): %v", fileName, month, err)
		}
	}

	startTime := time.Now()
	batch := dashboard.NewBatch()
	rowCount := 0

	for i := range rows {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := batch.Append(rows[i]); err != nil {
			log.Printf("[%s] Row error: %v", fileName, err)
			continue
		}
		rowCount++

		if batch.Len() >= BatchSize {
			if err := dashboard.Flush(ctx, conn, tableFQN, batch); err != nil {
				log.Printf("[%s] Flush error: %v", fileName, err)
			}
			batch.Reset()
		}
	}

	if err := dashboard.Flush(ctx, conn, tableFQN, batch); err != nil {
		log.Printf("[%s] Final flush error: %v", fileName, err)
	}

	elapsed := time.Since(startTime)
	krps := float64(rowCount) / elapsed.Seconds() / 1000

	stats.TotalRows.Add(uint64(rowCount))
	stats.TotalBytes.Add(uint64(info.Size()))
	stats.FilesComplete.Add(1)

	log.Printf("[%s] %d rows in %.1fs (%.1f Krps)", fileName, rowCount, elapsed.Seconds(), krps)
}

func main() {
	cfg := config.Default()

	input := flag.String("input", "", "Parquet file or directory")
	chHost := flag.String("ch-host", cfg.ClickHouse.Host, "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouse.Database, "ClickHouse database")
	chTable := flag.String("ch-table", cfg.ClickHouse.Table, "ClickHouse table")
	workers := flag.Int("workers", NumWorkers, "Parallel file workers")
	createTable := flag.Bool("create-table", false, "Create the dashboard table if absent")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "flightprep-load v%s - Warehouse Loader\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [files...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Loads exported Parquet datasets into ClickHouse.\n")
		fmt.Fprintf(os.Stderr, "Monthly partitions are replaced, not appended.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	var inputPaths []string
	if *input != "" {
		inputPaths = append(inputPaths, *input)
	}
	inputPaths = append(inputPaths, flag.Args()...)
	if len(inputPaths) == 0 {
		flag.Usage()
		log.Fatal("No input given; use -input or positional paths")
	}

	log.Println("=========================================================")
	log.Printf("flightprep-load v%s - Warehouse Loader", Version)
	log.Println("=========================================================")
	log.Printf("Input: %d path(s)", len(inputPaths))
	log.Printf("Workers: %d | Batch: %d", *workers, BatchSize)
	log.Printf("Protocol: parquet-go + ch-go Native with LZ4")
	log.Printf("CPUs: %d", runtime.NumCPU())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	if *createTable {
		cfg.ClickHouse.Host = *chHost
		cfg.ClickHouse.Database = *chDB
		cfg.ClickHouse.Table = *chTable
		conn, err := dashboard.Connect(ctx, cfg.ClickHouse)
		if err != nil {
			log.Fatalf("ClickHouse connection failed: %v", err)
		}
		if err := dashboard.EnsureTable(ctx, conn, *chDB, *chTable); err != nil {
			conn.Close()
			log.Fatalf("Table creation failed: %v", err)
		}
		conn.Close()
		log.Printf("Table ready: %s.%s", *chDB, *chTable)
	}

	var files []string
	for _, inputPath := range inputPaths {
		info, err := os.Stat(inputPath)
		if err != nil {
			log.Printf("Warning: cannot access %s: %v", inputPath, err)
			continue
		}

		if info.IsDir() {
			filepath.Walk(inputPath, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return nil
				}
				if !info.IsDir() && strings.HasSuffix(path, ".parquet") {
					files = append(files, path)
				}
				return nil
			})
		} else if strings.HasSuffix(inputPath, ".parquet") {
			files = append(files, inputPath)
		}
	}

	if len(files) == 0 {
		log.Fatal("No Parquet files found")
	}

	sort.Strings(files)
	log.Printf("Found %d Parquet file(s)", len(files))

	stats := NewStats()

	dispatch(ctx, files, *workers, func(fp string) {
		processFile(ctx, fp, *chHost, *chDB, *chTable, stats)
	})

	elapsed := time.Since(stats.StartTime)
	totalRows := stats.TotalRows.Load()
	krps := float64(totalRows) / elapsed.Seconds() / 1000

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Files:        %d", stats.FilesComplete.Load())
	log.Printf("Total Rows:   %d", totalRows)
	log.Printf("Total Size:   %.2f MB (Parquet)", float64(stats.TotalBytes.Load())/1024/1024)
	log.Printf("Elapsed:      %v", elapsed.Round(time.Second))
	log.Printf("Throughput:   %.1f Krps", krps)
	log.Println("=========================================================")
}

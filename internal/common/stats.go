package common

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Progress holds atomic counters for load progress reporting. The pipeline
// itself is single-pass; the reporter only matters for multi-gigabyte
// inputs where silent runs look hung.
type Progress struct {
	rows  atomic.Uint64
	bytes atomic.Uint64

	running  atomic.Bool
	stopCh   chan struct{}
	silent   bool
	lastRows uint64
	lastTime time.Time
}

// NewProgress creates a progress tracker.
func NewProgress() *Progress {
	return &Progress{stopCh: make(chan struct{})}
}

// AddRows increments the processed-row counter.
func (p *Progress) AddRows(n uint64) { p.rows.Add(n) }

// AddBytes increments the bytes-read counter.
func (p *Progress) AddBytes(n uint64) { p.bytes.Add(n) }

// Rows returns the current row count.
func (p *Progress) Rows() uint64 { return p.rows.Load() }

// SetSilent suppresses reporter output.
func (p *Progress) SetSilent(silent bool) { p.silent = silent }

// StartReporter launches a background goroutine printing throughput every
// second until StopReporter is called.
func (p *Progress) StartReporter() {
	if p.running.Load() {
		return
	}
	p.running.Store(true)
	p.lastTime = time.Now()
	go p.loop()
}

// StopReporter stops the background reporter.
func (p *Progress) StopReporter() {
	if !p.running.Load() {
		return
	}
	p.running.Store(false)
	close(p.stopCh)
}

func (p *Progress) loop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.print()
		}
	}
}

func (p *Progress) print() {
	if p.silent {
		return
	}
	now := time.Now()
	elapsed := now.Sub(p.lastTime).Seconds()
	if elapsed < 0.001 {
		return
	}

	rows := p.rows.Load()
	krps := float64(rows-p.lastRows) / 1000 / elapsed
	mib := float64(p.bytes.Load()) / (1024 * 1024)

	fmt.Printf("[Progress] %d rows | %.1f Krows/s | %.1f MiB read\n", rows, krps, mib)

	p.lastRows = rows
	p.lastTime = now
}

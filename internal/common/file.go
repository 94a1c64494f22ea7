// Package common provides shared utilities for the flightprep tools.
package common

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/klauspost/pgzip"
)

// DataFile wraps an open input file with transparent gzip decompression.
type DataFile struct {
	io.Reader
	f  *os.File
	gz *pgzip.Reader
}

// OpenData opens path for reading. Files ending in .gz are decompressed
// with parallel gzip readers sized to the machine.
func OpenData(path string) (*DataFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReaderN(f, 256*1024, runtime.NumCPU())
		if err != nil {
			f.Close()
			return nil, err
		}
		return &DataFile{Reader: gz, f: f, gz: gz}, nil
	}
	return &DataFile{Reader: f, f: f}, nil
}

// Size returns the on-disk size of the underlying file.
func (d *DataFile) Size() int64 {
	info, err := d.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// Close releases the decompressor (if any) and the file handle.
func (d *DataFile) Close() error {
	if d.gz != nil {
		d.gz.Close()
	}
	return d.f.Close()
}

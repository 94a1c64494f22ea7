package export

import (
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/aerodata/flightprep/internal/pipeline"
)

// WriteParquet writes the merged dataset to a Parquet file with snappy
// compression. The schema is derived from the Row struct tags.
func WriteParquet(path string, merged []pipeline.MergedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := parquet.NewGenericWriter[Row](f, parquet.Compression(&parquet.Snappy))

	rows := Rows(merged)
	for len(rows) > 0 {
		n, err := w.Write(rows)
		if err != nil {
			f.Close()
			return err
		}
		rows = rows[n:]
	}

	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadParquet loads an exported dataset back into memory, used by the
// warehouse loader.
func ReadParquet(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, err
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var rows []Row
	for {
		// The reader recycles non-nil pointers left in the buffer it is
		// handed, so each batch gets a fresh one; otherwise rows appended
		// from earlier batches alias the latest batch's optional values.
		buf := make([]Row, 1000)
		n, err := reader.Read(buf)
		if n > 0 {
			rows = append(rows, buf[:n]...)
		}
		if err == io.EOF || n == 0 {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

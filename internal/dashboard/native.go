package dashboard

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"

	"github.com/aerodata/flightprep/internal/export"
)

// Batch holds column data for native-protocol inserts.
type Batch struct {
	FlDate    *proto.ColDateTime
	Airline   *proto.ColStr
	FlightNum *proto.ColStr
	TailNum   *proto.ColStr
	Origin    *proto.ColStr
	Dest      *proto.ColStr

	SchedDep *proto.ColStr
	DepTime  *proto.ColStr
	SchedArr *proto.ColStr
	ArrTime  *proto.ColStr

	DepDelayMin *proto.ColFloat64
	ArrDelayMin *proto.ColFloat64
	Distance    *proto.ColFloat64
	Cancelled   *proto.ColUInt8

	Temp      *proto.ColFloat64
	Dewp      *proto.ColFloat64
	Humid     *proto.ColFloat64
	WindDir   *proto.ColFloat64
	WindSpeed *proto.ColFloat64
	WindGust  *proto.ColFloat64
	Precip    *proto.ColFloat64
	Pressure  *proto.ColFloat64
	Visib     *proto.ColFloat64

	HasWeather    *proto.ColUInt8
	DelayCategory *proto.ColStr
	WeatherImpact *proto.ColStr
}

// NewBatch creates an empty columnar batch.
func NewBatch() *Batch {
	return &Batch{
		FlDate:        new(proto.ColDateTime),
		Airline:       new(proto.ColStr),
		FlightNum:     new(proto.ColStr),
		TailNum:       new(proto.ColStr),
		Origin:        new(proto.ColStr),
		Dest:          new(proto.ColStr),
		SchedDep:      new(proto.ColStr),
		DepTime:       new(proto.ColStr),
		SchedArr:      new(proto.ColStr),
		ArrTime:       new(proto.ColStr),
		DepDelayMin:   new(proto.ColFloat64),
		ArrDelayMin:   new(proto.ColFloat64),
		Distance:      new(proto.ColFloat64),
		Cancelled:     new(proto.ColUInt8),
		Temp:          new(proto.ColFloat64),
		Dewp:          new(proto.ColFloat64),
		Humid:         new(proto.ColFloat64),
		WindDir:       new(proto.ColFloat64),
		WindSpeed:     new(proto.ColFloat64),
		WindGust:      new(proto.ColFloat64),
		Precip:        new(proto.ColFloat64),
		Pressure:      new(proto.ColFloat64),
		Visib:         new(proto.ColFloat64),
		HasWeather:    new(proto.ColUInt8),
		DelayCategory: new(proto.ColStr),
		WeatherImpact: new(proto.ColStr),
	}
}

// Reset clears the batch for reuse.
func (b *Batch) Reset() {
	b.FlDate.Reset()
	b.Airline.Reset()
	b.FlightNum.Reset()
	b.TailNum.Reset()
	b.Origin.Reset()
	b.Dest.Reset()
	b.SchedDep.Reset()
	b.DepTime.Reset()
	b.SchedArr.Reset()
	b.ArrTime.Reset()
	b.DepDelayMin.Reset()
	b.ArrDelayMin.Reset()
	b.Distance.Reset()
	b.Cancelled.Reset()
	b.Temp.Reset()
	b.Dewp.Reset()
	b.Humid.Reset()
	b.WindDir.Reset()
	b.WindSpeed.Reset()
	b.WindGust.Reset()
	b.Precip.Reset()
	b.Pressure.Reset()
	b.Visib.Reset()
	b.HasWeather.Reset()
	b.DelayCategory.Reset()
	b.WeatherImpact.Reset()
}

// Len returns the number of buffered rows.
func (b *Batch) Len() int {
	return b.FlDate.Rows()
}

// Input maps the columns to table column names.
func (b *Batch) Input() proto.Input {
	return proto.Input{
		{Name: "fl_date", Data: b.FlDate},
		{Name: "airline", Data: b.Airline},
		{Name: "flight_num", Data: b.FlightNum},
		{Name: "tail_num", Data: b.TailNum},
		{Name: "origin", Data: b.Origin},
		{Name: "dest", Data: b.Dest},
		{Name: "sched_dep", Data: b.SchedDep},
		{Name: "dep_time", Data: b.DepTime},
		{Name: "sched_arr", Data: b.SchedArr},
		{Name: "arr_time", Data: b.ArrTime},
		{Name: "dep_delay_min", Data: b.DepDelayMin},
		{Name: "arr_delay_min", Data: b.ArrDelayMin},
		{Name: "distance", Data: b.Distance},
		{Name: "cancelled", Data: b.Cancelled},
		{Name: "temp", Data: b.Temp},
		{Name: "dewp", Data: b.Dewp},
		{Name: "humid", Data: b.Humid},
		{Name: "wind_dir", Data: b.WindDir},
		{Name: "wind_speed", Data: b.WindSpeed},
		{Name: "wind_gust", Data: b.WindGust},
		{Name: "precip", Data: b.Precip},
		{Name: "pressure", Data: b.Pressure},
		{Name: "visib", Data: b.Visib},
		{Name: "has_weather", Data: b.HasWeather},
		{Name: "delay_category", Data: b.DelayCategory},
		{Name: "weather_impact", Data: b.WeatherImpact},
	}
}

// Append adds one export row to the batch. Absent weather values are
// stored as NaN alongside has_weather = 0.
func (b *Batch) Append(row export.Row) error {
	date, err := time.Parse(export.DateLayout, row.FlDate)
	if err != nil {
		return fmt.Errorf("invalid fl_date %q: %w", row.FlDate, err)
	}

	b.FlDate.Append(date.UTC())
	b.Airline.Append(row.Airline)
	b.FlightNum.Append(row.FlightNum)
	b.TailNum.Append(row.TailNum)
	b.Origin.Append(row.Origin)
	b.Dest.Append(row.Dest)
	b.SchedDep.Append(row.SchedDep)
	b.DepTime.Append(row.DepTime)
	b.SchedArr.Append(row.SchedArr)
	b.ArrTime.Append(row.ArrTime)
	b.DepDelayMin.Append(row.DepDelayMin)
	b.ArrDelayMin.Append(row.ArrDelayMin)
	b.Distance.Append(row.Distance)
	b.Cancelled.Append(boolByte(row.Cancelled))

	b.Temp.Append(floatOrNaN(row.Temp))
	b.Dewp.Append(floatOrNaN(row.Dewp))
	b.Humid.Append(floatOrNaN(row.Humid))
	b.WindDir.Append(floatOrNaN(row.WindDir))
	b.WindSpeed.Append(floatOrNaN(row.WindSpeed))
	b.WindGust.Append(floatOrNaN(row.WindGust))
	b.Precip.Append(floatOrNaN(row.Precip))
	b.Pressure.Append(floatOrNaN(row.Pressure))
	b.Visib.Append(floatOrNaN(row.Visib))
	b.HasWeather.Append(boolByte(row.HasWeather))

	b.DelayCategory.Append(row.DelayCategory)
	b.WeatherImpact.Append(row.WeatherImpact)
	return nil
}

// Flush sends the batch over the native protocol.
func Flush(ctx context.Context, conn *ch.Client, tableFQN string, b *Batch) error {
	if b.Len() == 0 {
		return nil
	}
	query := fmt.Sprintf("INSERT INTO %s VALUES", tableFQN)
	return conn.Do(ctx, ch.Query{
		Body:  query,
		Input: b.Input(),
	})
}

// DropPartition drops one monthly partition (yyyymm) ahead of a reload so
// repeated loads stay idempotent. A missing partition is not an error.
func DropPartition(ctx context.Context, conn *ch.Client, tableFQN, yyyymm string) error {
	query := fmt.Sprintf("ALTER TABLE %s DROP PARTITION '%s'", tableFQN, yyyymm)
	if err := conn.Do(ctx, ch.Query{Body: query}); err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "NO_SUCH_DATA_PART") {
			return nil
		}
		return err
	}
	return nil
}

// Dial opens a ch-go native connection.
func Dial(ctx context.Context, host, database string) (*ch.Client, error) {
	return ch.Dial(ctx, ch.Options{
		Address:     host,
		Database:    database,
		Compression: ch.CompressionLZ4,
	})
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

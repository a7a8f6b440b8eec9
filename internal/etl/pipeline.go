package etl

import (
	"context"
	"fmt"
	"time"

	"travelnosql/pkg/logger"
	"travelnosql/pkg/metrics"
)

// Summary reports how many documents each rebuilt collection received.
type Summary struct {
	Bookings  int64
	Flights   int64
	Aircrafts int64
	Airports  int64
}

// Migrator drives the full rebuild: for each collection in a fixed order,
// read the source join, fold it into documents, replace the collection and
// apply its schema. The first hard error aborts the run; collections that
// already completed stay rebuilt, there is no cross-collection rollback.
type Migrator struct {
	source    RowSource
	sink      DocumentSink
	schema    SchemaManager
	assembler *Assembler
	log       logger.Logger
	metrics   *metrics.Metrics
}

// NewMigrator wires a migration run. metrics may be nil.
func NewMigrator(source RowSource, sink DocumentSink, schema SchemaManager, log logger.Logger, m *metrics.Metrics) *Migrator {
	return &Migrator{
		source:    source,
		sink:      sink,
		schema:    schema,
		assembler: NewAssembler(log),
		log:       log,
		metrics:   m,
	}
}

func (m *Migrator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	m.log.Info("migration started")

	var sum Summary
	var err error

	if sum.Bookings, err = m.rebuildBookings(ctx); err != nil {
		return nil, m.fail(err)
	}
	if sum.Flights, err = m.rebuildFlights(ctx); err != nil {
		return nil, m.fail(err)
	}
	if sum.Aircrafts, err = m.rebuildAircrafts(ctx); err != nil {
		return nil, m.fail(err)
	}
	if sum.Airports, err = m.rebuildAirports(ctx); err != nil {
		return nil, m.fail(err)
	}

	if m.metrics != nil {
		m.metrics.MigrationRuns.WithLabelValues("success").Inc()
		m.metrics.MigrationDuration.Observe(time.Since(start).Seconds())
	}
	m.log.Info("migration finished",
		"duration", time.Since(start).String(),
		"bookings", sum.Bookings,
		"flights", sum.Flights,
		"aircrafts", sum.Aircrafts,
		"airports", sum.Airports,
	)
	return &sum, nil
}

func (m *Migrator) rebuildBookings(ctx context.Context) (int64, error) {
	rows, err := m.source.BookingRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuilding %s: %w", CollBookings, err)
	}
	docs := m.assembler.Bookings(rows)
	count, err := m.sink.Replace(ctx, CollBookings, asAny(docs))
	if err != nil {
		return 0, fmt.Errorf("rebuilding %s: %w", CollBookings, err)
	}
	m.finishCollection(ctx, CollBookings, len(rows), count)
	return count, nil
}

func (m *Migrator) rebuildFlights(ctx context.Context) (int64, error) {
	rows, err := m.source.FlightRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuilding %s: %w", CollFlights, err)
	}
	docs := m.assembler.Flights(rows)
	count, err := m.sink.Replace(ctx, CollFlights, asAny(docs))
	if err != nil {
		return 0, fmt.Errorf("rebuilding %s: %w", CollFlights, err)
	}
	m.finishCollection(ctx, CollFlights, len(rows), count)

	// Schema enforcement is best effort, same as index creation.
	if err := m.schema.InstallFlightValidator(ctx); err != nil {
		m.log.Warn("flight validator not installed", "error", err)
	}
	return count, nil
}

func (m *Migrator) rebuildAircrafts(ctx context.Context) (int64, error) {
	rows, err := m.source.AircraftSeatRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuilding %s: %w", CollAircrafts, err)
	}
	docs := m.assembler.Aircrafts(rows)
	count, err := m.sink.Replace(ctx, CollAircrafts, asAny(docs))
	if err != nil {
		return 0, fmt.Errorf("rebuilding %s: %w", CollAircrafts, err)
	}
	m.finishCollection(ctx, CollAircrafts, len(rows), count)
	return count, nil
}

func (m *Migrator) rebuildAirports(ctx context.Context) (int64, error) {
	rows, err := m.source.AirportRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuilding %s: %w", CollAirports, err)
	}
	docs := m.assembler.Airports(rows)
	count, err := m.sink.Replace(ctx, CollAirports, asAny(docs))
	if err != nil {
		return 0, fmt.Errorf("rebuilding %s: %w", CollAirports, err)
	}
	m.finishCollection(ctx, CollAirports, len(rows), count)
	return count, nil
}

// finishCollection records counts and applies the collection's indexes.
// Index failures are warnings: the data load already succeeded and stands.
func (m *Migrator) finishCollection(ctx context.Context, collection string, rowCount int, docCount int64) {
	if m.metrics != nil {
		m.metrics.DocumentsMigrated.WithLabelValues(collection).Add(float64(docCount))
	}
	m.log.Info("collection rebuilt",
		"collection", collection,
		"source_rows", rowCount,
		"documents", docCount,
	)
	if err := m.schema.EnsureIndexes(ctx, collection); err != nil {
		m.log.Warn("index creation failed", "collection", collection, "error", err)
	}
}

func (m *Migrator) fail(err error) error {
	if m.metrics != nil {
		m.metrics.MigrationRuns.WithLabelValues("error").Inc()
	}
	m.log.Error("migration aborted", "error", err)
	return err
}

func asAny[T any](docs []T) []interface{} {
	out := make([]interface{}, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out
}

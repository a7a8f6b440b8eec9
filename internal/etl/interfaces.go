package etl

import "context"

// Target collection names.
const (
	CollBookings  = "bookings"
	CollFlights   = "flights"
	CollAircrafts = "aircrafts"
	CollAirports  = "airports"
)

// RowSource executes the fixed source queries, one per target collection.
// Implementations return fully materialized row sets in query order.
type RowSource interface {
	BookingRows(ctx context.Context) ([]BookingRow, error)
	FlightRows(ctx context.Context) ([]FlightRow, error)
	AircraftSeatRows(ctx context.Context) ([]AircraftSeatRow, error)
	AirportRows(ctx context.Context) ([]AirportRow, error)
}

// DocumentSink replaces a collection's contents wholesale and reports the
// number of documents written.
type DocumentSink interface {
	Replace(ctx context.Context, collection string, docs []interface{}) (int64, error)
}

// SchemaManager installs secondary indexes and validation rules after a
// collection has been rebuilt.
type SchemaManager interface {
	EnsureIndexes(ctx context.Context, collection string) error
	InstallFlightValidator(ctx context.Context) error
}

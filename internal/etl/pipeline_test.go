package etl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelnosql/pkg/logger"
)

type fakeSource struct {
	bookingRows  []BookingRow
	flightRows   []FlightRow
	aircraftRows []AircraftSeatRow
	airportRows  []AirportRow

	bookingErr  error
	flightErr   error
	aircraftErr error
	airportErr  error
}

func (f *fakeSource) BookingRows(ctx context.Context) ([]BookingRow, error) {
	return f.bookingRows, f.bookingErr
}

func (f *fakeSource) FlightRows(ctx context.Context) ([]FlightRow, error) {
	return f.flightRows, f.flightErr
}

func (f *fakeSource) AircraftSeatRows(ctx context.Context) ([]AircraftSeatRow, error) {
	return f.aircraftRows, f.aircraftErr
}

func (f *fakeSource) AirportRows(ctx context.Context) ([]AirportRow, error) {
	return f.airportRows, f.airportErr
}

type replaceCall struct {
	collection string
	docs       []interface{}
}

type fakeSink struct {
	calls  []replaceCall
	failOn string
}

func (f *fakeSink) Replace(ctx context.Context, collection string, docs []interface{}) (int64, error) {
	if collection == f.failOn {
		return 0, errors.New("insert refused")
	}
	f.calls = append(f.calls, replaceCall{collection: collection, docs: docs})
	return int64(len(docs)), nil
}

type fakeSchema struct {
	indexed      []string
	indexErr     error
	validatorOK  int
	validatorErr error
}

func (f *fakeSchema) EnsureIndexes(ctx context.Context, collection string) error {
	f.indexed = append(f.indexed, collection)
	return f.indexErr
}

func (f *fakeSchema) InstallFlightValidator(ctx context.Context) error {
	if f.validatorErr != nil {
		return f.validatorErr
	}
	f.validatorOK++
	return nil
}

func sampleSource() *fakeSource {
	return &fakeSource{
		bookingRows: []BookingRow{
			legRow("AAAA01", "0005432000991", 101),
			legRow("AAAA01", "0005432000992", 102),
			legRow("BBBB02", "0005432000993", 103),
		},
		flightRows: []FlightRow{
			{FlightID: 101, FlightNo: "PG0405", Status: "Arrived", AircraftCode: "321", DepartureAirport: "DME", ArrivalAirport: "LED"},
			{FlightID: 102, FlightNo: "PG0404", Status: "Scheduled", AircraftCode: "321", DepartureAirport: "LED", ArrivalAirport: "DME"},
		},
		aircraftRows: []AircraftSeatRow{
			{AircraftCode: "321", Model: nstr(`{"en": "Airbus A321-200"}`), Range: nint(5600), SeatNo: nstr("2A"), FareConditions: nstr("Business")},
		},
		airportRows: []AirportRow{
			{AirportCode: "DME", AirportName: nstr(`{"en": "Domodedovo International Airport"}`), City: nstr(`{"en": "Moscow"}`), Timezone: nstr("Europe/Moscow")},
			{AirportCode: "LED", AirportName: nstr(`{"en": "Pulkovo Airport"}`), City: nstr(`{"en": "St. Petersburg"}`), Timezone: nstr("Europe/Moscow")},
		},
	}
}

func TestMigratorRunRebuildsAllCollectionsInOrder(t *testing.T) {
	source := sampleSource()
	sink := &fakeSink{}
	schema := &fakeSchema{}

	m := NewMigrator(source, sink, schema, logger.NewNop(), nil)
	sum, err := m.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sum)

	assert.Equal(t, int64(2), sum.Bookings)
	assert.Equal(t, int64(2), sum.Flights)
	assert.Equal(t, int64(1), sum.Aircrafts)
	assert.Equal(t, int64(2), sum.Airports)

	require.Len(t, sink.calls, 4)
	assert.Equal(t, CollBookings, sink.calls[0].collection)
	assert.Equal(t, CollFlights, sink.calls[1].collection)
	assert.Equal(t, CollAircrafts, sink.calls[2].collection)
	assert.Equal(t, CollAirports, sink.calls[3].collection)

	assert.Equal(t, []string{CollBookings, CollFlights, CollAircrafts, CollAirports}, schema.indexed)
	assert.Equal(t, 1, schema.validatorOK, "the flights validator is installed exactly once")
}

func TestMigratorAbortsOnQueryFailure(t *testing.T) {
	source := sampleSource()
	source.flightErr = errors.New("relation flights does not exist")
	sink := &fakeSink{}
	schema := &fakeSchema{}

	m := NewMigrator(source, sink, schema, logger.NewNop(), nil)
	sum, err := m.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, sum)
	assert.Contains(t, err.Error(), "flights")

	// Bookings completed before the failure and stays rebuilt; nothing
	// after the failing collection is attempted.
	require.Len(t, sink.calls, 1)
	assert.Equal(t, CollBookings, sink.calls[0].collection)
	assert.Equal(t, []string{CollBookings}, schema.indexed)
	assert.Equal(t, 0, schema.validatorOK)
}

func TestMigratorAbortsOnInsertFailure(t *testing.T) {
	source := sampleSource()
	sink := &fakeSink{failOn: CollAircrafts}
	schema := &fakeSchema{}

	m := NewMigrator(source, sink, schema, logger.NewNop(), nil)
	sum, err := m.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, sum)
	assert.Contains(t, err.Error(), CollAircrafts)

	require.Len(t, sink.calls, 2)
	assert.Equal(t, CollBookings, sink.calls[0].collection)
	assert.Equal(t, CollFlights, sink.calls[1].collection)
}

func TestMigratorIndexFailureIsNonFatal(t *testing.T) {
	source := sampleSource()
	sink := &fakeSink{}
	schema := &fakeSchema{indexErr: errors.New("index build refused")}

	m := NewMigrator(source, sink, schema, logger.NewNop(), nil)
	sum, err := m.Run(context.Background())
	require.NoError(t, err, "index failures must not abort the run")
	require.NotNil(t, sum)
	assert.Len(t, sink.calls, 4)
}

func TestMigratorValidatorFailureIsNonFatal(t *testing.T) {
	source := sampleSource()
	sink := &fakeSink{}
	schema := &fakeSchema{validatorErr: errors.New("collMod refused")}

	m := NewMigrator(source, sink, schema, logger.NewNop(), nil)
	sum, err := m.Run(context.Background())
	require.NoError(t, err, "validator failures must not abort the run")
	require.NotNil(t, sum)
	assert.Equal(t, int64(2), sum.Airports, "collections after flights still rebuild")
}

func TestMigratorEmptySourceYieldsEmptyCollections(t *testing.T) {
	source := &fakeSource{}
	sink := &fakeSink{}
	schema := &fakeSchema{}

	m := NewMigrator(source, sink, schema, logger.NewNop(), nil)
	sum, err := m.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sum)

	assert.Equal(t, int64(0), sum.Bookings)
	assert.Equal(t, int64(0), sum.Airports)
	require.Len(t, sink.calls, 4, "empty tables still get their drop-and-replace")
	for _, call := range sink.calls {
		assert.Empty(t, call.docs)
	}
}

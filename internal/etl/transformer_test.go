package etl

import (
	"bytes"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"travelnosql/pkg/logger"
	"travelnosql/pkg/models"
)

func nstr(s string) sql.NullString     { return sql.NullString{String: s, Valid: true} }
func nint(v int64) sql.NullInt64       { return sql.NullInt64{Int64: v, Valid: true} }
func nfloat(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }
func ntime(ts time.Time) sql.NullTime  { return sql.NullTime{Time: ts, Valid: true} }

var (
	testBookDate = time.Date(2017, 6, 1, 10, 0, 0, 0, time.UTC)
	testDepTime  = time.Date(2017, 6, 10, 8, 30, 0, 0, time.UTC)
)

// legRow builds one row of the booking join for ticket ticketNo on flight
// flightID under booking bookRef.
func legRow(bookRef, ticketNo string, flightID int64) BookingRow {
	return BookingRow{
		BookRef:            bookRef,
		BookDate:           testBookDate,
		TotalAmount:        26500,
		TicketNo:           nstr(ticketNo),
		PassengerID:        nstr("1234 567890"),
		FlightID:           nint(flightID),
		FareConditions:     nstr("Economy"),
		LegAmount:          nfloat(13250),
		FlightNo:           nstr("PG0405"),
		ScheduledDeparture: ntime(testDepTime),
		DepartureAirport:   nstr("DME"),
		ArrivalAirport:     nstr("LED"),
	}
}

func TestAssembleBookingsFanOut(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	// One booking, two tickets, three distinct legs between them.
	rows := []BookingRow{
		legRow("AAAA01", "0005432000991", 101),
		legRow("AAAA01", "0005432000991", 102),
		legRow("AAAA01", "0005432000992", 103),
	}

	docs := a.Bookings(rows)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Tickets, 2)
	assert.Len(t, docs[0].Tickets[0].FlightLegs, 2)
	assert.Len(t, docs[0].Tickets[1].FlightLegs, 1)

	leg := docs[0].Tickets[0].FlightLegs[0]
	assert.Equal(t, 101, leg.FlightID)
	assert.Equal(t, "PG0405", leg.FlightNo)
	assert.Equal(t, "DME -> LED", leg.Route)
	assert.Equal(t, 13250.0, leg.Amount)
	assert.Equal(t, "Economy", leg.FareConditions)
	assert.Equal(t, testDepTime, leg.ScheduledDeparture)
}

func TestAssembleBookingsNoDuplicateChildren(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	// The same (ticket, flight) pair arriving twice must fold into one leg,
	// and the repeated ticket must not duplicate the ticket entry either.
	rows := []BookingRow{
		legRow("AAAA01", "0005432000991", 101),
		legRow("AAAA01", "0005432000991", 101),
	}

	docs := a.Bookings(rows)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Tickets, 1)
	assert.Len(t, docs[0].Tickets[0].FlightLegs, 1)
}

func TestAssembleBookingsFirstRowWinsScalars(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	first := legRow("AAAA01", "0005432000991", 101)
	second := legRow("AAAA01", "0005432000991", 102)
	second.PassengerID = nstr("9999 000000")

	docs := a.Bookings([]BookingRow{first, second})
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Tickets, 1)
	assert.Equal(t, "1234 567890", docs[0].Tickets[0].PassengerID,
		"scalar fields must come from the first row of the group")
	assert.Len(t, docs[0].Tickets[0].FlightLegs, 2)
}

func TestAssembleBookingsPreservesRowOrder(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	rows := []BookingRow{
		legRow("CCCC03", "0005432000993", 301),
		legRow("AAAA01", "0005432000991", 101),
		legRow("BBBB02", "0005432000992", 201),
	}

	docs := a.Bookings(rows)
	require.Len(t, docs, 3)
	assert.Equal(t, "CCCC03", docs[0].BookRef)
	assert.Equal(t, "AAAA01", docs[1].BookRef)
	assert.Equal(t, "BBBB02", docs[2].BookRef)
}

func TestAssembleBookingsOrphanBooking(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	// A booking with no tickets arrives as one row with null child columns.
	rows := []BookingRow{{
		BookRef:     "EMPTY1",
		BookDate:    testBookDate,
		TotalAmount: 0,
	}}

	docs := a.Bookings(rows)
	require.Len(t, docs, 1)
	require.NotNil(t, docs[0].Tickets, "tickets must be an empty slice, not nil")
	assert.Empty(t, docs[0].Tickets)

	// The stored document must carry tickets: [] rather than tickets: null.
	raw, err := bson.Marshal(docs[0])
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	tickets, ok := m["tickets"].(bson.A)
	require.True(t, ok, "tickets must marshal as a bson array, got %T", m["tickets"])
	assert.Empty(t, tickets)
}

func TestAssembleBookingsTicketWithoutLegs(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	row := legRow("AAAA01", "0005432000991", 0)
	row.FlightID = sql.NullInt64{}
	row.FlightNo = sql.NullString{}

	docs := a.Bookings([]BookingRow{row})
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Tickets, 1)
	require.NotNil(t, docs[0].Tickets[0].FlightLegs)
	assert.Empty(t, docs[0].Tickets[0].FlightLegs)
}

// TestAssembleBookingsBoardingPassParity covers the end-to-end shape for a
// booking where one leg has a boarding pass and the other does not: the
// second leg's document must not contain a boarding_pass key at all.
func TestAssembleBookingsBoardingPassParity(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	withPass := legRow("00000F", "T1", 1)
	withPass.BoardingNo = nint(5)
	withPass.SeatNo = nstr("12A")

	withoutPass := legRow("00000F", "T2", 2)

	docs := a.Bookings([]BookingRow{withPass, withoutPass})
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "00000F", doc.BookRef)
	require.Len(t, doc.Tickets, 2)

	require.NotNil(t, doc.Tickets[0].FlightLegs[0].BoardingPass)
	assert.Equal(t, 5, doc.Tickets[0].FlightLegs[0].BoardingPass.BoardingNo)
	assert.Equal(t, "12A", doc.Tickets[0].FlightLegs[0].BoardingPass.SeatNo)
	assert.Nil(t, doc.Tickets[1].FlightLegs[0].BoardingPass)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))

	tickets := m["tickets"].(bson.A)
	require.Len(t, tickets, 2)

	firstLeg := tickets[0].(bson.M)["flight_legs"].(bson.A)[0].(bson.M)
	pass, ok := firstLeg["boarding_pass"].(bson.M)
	require.True(t, ok, "first leg must embed its boarding pass")
	assert.Equal(t, int32(5), pass["boarding_no"])
	assert.Equal(t, "12A", pass["seat_no"])

	secondLeg := tickets[1].(bson.M)["flight_legs"].(bson.A)[0].(bson.M)
	_, present := secondLeg["boarding_pass"]
	assert.False(t, present, "a leg without a boarding pass must omit the key entirely")
}

func TestAssembleBookingsIdempotent(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	rows := []BookingRow{
		legRow("AAAA01", "0005432000991", 101),
		legRow("AAAA01", "0005432000992", 102),
		legRow("BBBB02", "0005432000993", 103),
	}

	first := a.Bookings(rows)
	second := a.Bookings(rows)
	require.Equal(t, first, second)

	for i := range first {
		rawFirst, err := bson.Marshal(first[i])
		require.NoError(t, err)
		rawSecond, err := bson.Marshal(second[i])
		require.NoError(t, err)
		assert.True(t, bytes.Equal(rawFirst, rawSecond),
			"re-assembling unchanged rows must give byte-identical documents")
	}
}

func TestAssembleFlights(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	arrival := testDepTime.Add(time.Hour)
	actualDep := testDepTime.Add(5 * time.Minute)
	rows := []FlightRow{{
		FlightID:           1,
		FlightNo:           "PG0405",
		ScheduledDeparture: testDepTime,
		ScheduledArrival:   arrival,
		ActualDeparture:    ntime(actualDep),
		Status:             "Arrived",
		AircraftCode:       "321",
		DepartureAirport:   "DME",
		ArrivalAirport:     "LED",
		AircraftModel:      nstr(`{"en": "Airbus A321-200", "ru": "Аэробус A321-200"}`),
		DepAirportName:     nstr(`{"en": "Domodedovo International Airport"}`),
		DepCity:            nstr(`{"en": "Moscow"}`),
		DepTimezone:        nstr("Europe/Moscow"),
		ArrAirportName:     nstr(`{"en": "Pulkovo Airport"}`),
		ArrCity:            nstr(`{"en": "St. Petersburg"}`),
		ArrTimezone:        nstr("Europe/Moscow"),
	}}

	docs := a.Flights(rows)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, 1, doc.FlightID)
	assert.Equal(t, models.AircraftRef{Code: "321", Model: "Airbus A321-200"}, doc.Aircraft)
	assert.Equal(t, models.AirportRef{
		AirportCode: "DME",
		AirportName: "Domodedovo International Airport",
		City:        "Moscow",
		Timezone:    "Europe/Moscow",
	}, doc.Departure)
	assert.Equal(t, "Pulkovo Airport", doc.Arrival.AirportName)

	require.NotNil(t, doc.ActualDeparture)
	assert.Equal(t, actualDep, *doc.ActualDeparture)
	assert.Nil(t, doc.ActualArrival, "unset actual_arrival stays null")
}

func TestAssembleFlightsMissingReferenceData(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	// A flight whose aircraft and airports are absent from the reference
	// tables degrades to placeholders instead of being dropped.
	rows := []FlightRow{{
		FlightID:           2,
		FlightNo:           "ZZ9999",
		ScheduledDeparture: testDepTime,
		ScheduledArrival:   testDepTime.Add(time.Hour),
		Status:             "Scheduled",
		AircraftCode:       "XXX",
		DepartureAirport:   "AAA",
		ArrivalAirport:     "BBB",
	}}

	docs := a.Flights(rows)
	require.Len(t, docs, 1)
	assert.Equal(t, "Unknown", docs[0].Aircraft.Model)
	assert.Equal(t, "Unknown", docs[0].Departure.AirportName)
	assert.Equal(t, "Unknown", docs[0].Arrival.City)
	assert.Equal(t, "", docs[0].Departure.Timezone)
}

func TestAssembleAircrafts(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	model := nstr(`{"en": "Boeing 777-300", "ru": "Боинг 777-300"}`)
	rows := []AircraftSeatRow{
		{AircraftCode: "773", Model: model, Range: nint(11100), SeatNo: nstr("1A"), FareConditions: nstr("Business")},
		{AircraftCode: "773", Model: model, Range: nint(11100), SeatNo: nstr("1B"), FareConditions: nstr("Business")},
		{AircraftCode: "773", Model: model, Range: nint(11100), SeatNo: nstr("1A"), FareConditions: nstr("Business")},
	}

	docs := a.Aircrafts(rows)
	require.Len(t, docs, 1)
	assert.Equal(t, "773", docs[0].AircraftCode)
	assert.Equal(t, "Boeing 777-300", docs[0].Model)
	assert.Equal(t, 11100, docs[0].Range)
	require.Len(t, docs[0].Seats, 2, "repeated seat rows must not duplicate seats")
	assert.Equal(t, "1A", docs[0].Seats[0].SeatNo)
	assert.Equal(t, "1B", docs[0].Seats[1].SeatNo)
}

func TestAssembleAircraftsWithoutSeats(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	docs := a.Aircrafts([]AircraftSeatRow{
		{AircraftCode: "CN1", Model: nstr(`{"en": "Cessna 208 Caravan"}`), Range: nint(1200)},
	})
	require.Len(t, docs, 1)
	require.NotNil(t, docs[0].Seats)
	assert.Empty(t, docs[0].Seats)

	raw, err := bson.Marshal(docs[0])
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	seats, ok := m["seats"].(bson.A)
	require.True(t, ok, "seats must marshal as a bson array, got %T", m["seats"])
	assert.Empty(t, seats)
}

func TestAssembleAirports(t *testing.T) {
	a := NewAssembler(logger.NewNop())

	rows := []AirportRow{
		{
			AirportCode: "DME",
			AirportName: nstr(`{"en": "Domodedovo International Airport"}`),
			City:        nstr(`{"en": "Moscow", "ru": "Москва"}`),
			Coordinates: nstr("(37.90629959106445,55.40879821777344)"),
			Timezone:    nstr("Europe/Moscow"),
		},
		{AirportCode: "ZZZ"},
	}

	docs := a.Airports(rows)
	require.Len(t, docs, 2)
	assert.Equal(t, "DME", docs[0].AirportCode)
	assert.Equal(t, "Domodedovo International Airport", docs[0].AirportName)
	assert.Equal(t, "Moscow", docs[0].City)
	assert.Equal(t, "(37.90629959106445,55.40879821777344)", docs[0].Coordinates)

	assert.Equal(t, "Unknown", docs[1].AirportName)
	assert.Equal(t, "Unknown", docs[1].City)
	assert.Equal(t, "", docs[1].Timezone)
}

package etl

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BookingRow is one row of the booking join. Everything below the booking
// itself comes from LEFT JOINs and may be null.
type BookingRow struct {
	BookRef     string
	BookDate    time.Time
	TotalAmount float64

	TicketNo    sql.NullString
	PassengerID sql.NullString

	FlightID           sql.NullInt64
	FareConditions     sql.NullString
	LegAmount          sql.NullFloat64
	FlightNo           sql.NullString
	ScheduledDeparture sql.NullTime
	DepartureAirport   sql.NullString
	ArrivalAirport     sql.NullString

	BoardingNo sql.NullInt64
	SeatNo     sql.NullString
}

// FlightRow is one flight joined with its aircraft and airport dimensions.
// The localized columns carry raw language-map JSON.
type FlightRow struct {
	FlightID           int
	FlightNo           string
	ScheduledDeparture time.Time
	ScheduledArrival   time.Time
	ActualDeparture    sql.NullTime
	ActualArrival      sql.NullTime
	Status             string
	AircraftCode       string
	DepartureAirport   string
	ArrivalAirport     string

	AircraftModel  sql.NullString
	DepAirportName sql.NullString
	DepCity        sql.NullString
	DepTimezone    sql.NullString
	ArrAirportName sql.NullString
	ArrCity        sql.NullString
	ArrTimezone    sql.NullString
}

type AircraftSeatRow struct {
	AircraftCode   string
	Model          sql.NullString
	Range          sql.NullInt64
	SeatNo         sql.NullString
	FareConditions sql.NullString
}

type AirportRow struct {
	AirportCode string
	AirportName sql.NullString
	City        sql.NullString
	Coordinates sql.NullString
	Timezone    sql.NullString
}

// The four source queries are fixed. LEFT JOINs keep orphan parents in the
// stream (a booking without tickets still yields a row) and the ORDER BY
// pins the fold's output order, which makes reruns byte-identical.
const (
	bookingRowsQuery = `
SELECT
    b.book_ref,
    b.book_date,
    b.total_amount,
    t.ticket_no,
    t.passenger_id,
    tf.flight_id,
    tf.fare_conditions,
    tf.amount AS leg_amount,
    f.flight_no,
    f.scheduled_departure,
    f.departure_airport,
    f.arrival_airport,
    bp.boarding_no,
    bp.seat_no
FROM bookings b
LEFT JOIN tickets t ON t.book_ref = b.book_ref
LEFT JOIN ticket_flights tf ON tf.ticket_no = t.ticket_no
LEFT JOIN flights f ON f.flight_id = tf.flight_id
LEFT JOIN boarding_passes bp ON bp.ticket_no = tf.ticket_no AND bp.flight_id = tf.flight_id
ORDER BY b.book_ref, t.ticket_no, tf.flight_id`

	flightRowsQuery = `
SELECT
    f.flight_id,
    f.flight_no,
    f.scheduled_departure,
    f.scheduled_arrival,
    f.actual_departure,
    f.actual_arrival,
    f.status,
    f.aircraft_code,
    f.departure_airport,
    f.arrival_airport,
    ac.model::text AS aircraft_model,
    dep.airport_name::text AS dep_airport_name,
    dep.city::text AS dep_city,
    dep.timezone AS dep_timezone,
    arr.airport_name::text AS arr_airport_name,
    arr.city::text AS arr_city,
    arr.timezone AS arr_timezone
FROM flights f
LEFT JOIN aircrafts_data ac ON ac.aircraft_code = f.aircraft_code
LEFT JOIN airports_data dep ON dep.airport_code = f.departure_airport
LEFT JOIN airports_data arr ON arr.airport_code = f.arrival_airport
ORDER BY f.flight_id`

	aircraftSeatRowsQuery = `
SELECT
    ac.aircraft_code,
    ac.model::text AS model,
    ac.range,
    s.seat_no,
    s.fare_conditions
FROM aircrafts_data ac
LEFT JOIN seats s ON s.aircraft_code = ac.aircraft_code
ORDER BY ac.aircraft_code, s.seat_no`

	airportRowsQuery = `
SELECT
    airport_code,
    airport_name::text AS airport_name,
    city::text AS city,
    coordinates::text AS coordinates,
    timezone
FROM airports_data
ORDER BY airport_code`
)

// PostgresReader implements RowSource against the normalized booking schema.
type PostgresReader struct {
	db *gorm.DB
}

func NewPostgresReader(db *gorm.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

func (r *PostgresReader) BookingRows(ctx context.Context) ([]BookingRow, error) {
	var rows []BookingRow
	if err := r.db.WithContext(ctx).Raw(bookingRowsQuery).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying booking rows: %w", err)
	}
	return rows, nil
}

func (r *PostgresReader) FlightRows(ctx context.Context) ([]FlightRow, error) {
	var rows []FlightRow
	if err := r.db.WithContext(ctx).Raw(flightRowsQuery).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying flight rows: %w", err)
	}
	return rows, nil
}

func (r *PostgresReader) AircraftSeatRows(ctx context.Context) ([]AircraftSeatRow, error) {
	var rows []AircraftSeatRow
	if err := r.db.WithContext(ctx).Raw(aircraftSeatRowsQuery).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying aircraft seat rows: %w", err)
	}
	return rows, nil
}

func (r *PostgresReader) AirportRows(ctx context.Context) ([]AirportRow, error) {
	var rows []AirportRow
	if err := r.db.WithContext(ctx).Raw(airportRowsQuery).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying airport rows: %w", err)
	}
	return rows, nil
}

package etl

import (
	"database/sql"
	"fmt"
	"strings"

	"travelnosql/pkg/logger"
	"travelnosql/pkg/models"
)

// Assembler folds flat join rows into nested documents. All methods are
// pure except for warnings about unresolved localized text.
type Assembler struct {
	log logger.Logger
}

func NewAssembler(log logger.Logger) *Assembler {
	return &Assembler{log: log}
}

// Bookings groups the booking join by book_ref, then by ticket_no, then by
// flight_id. The first row seen for a key supplies its scalar fields; rows
// repeating a (ticket, flight) pair are dropped so join fan-out can never
// duplicate a child.
func (a *Assembler) Bookings(rows []BookingRow) []models.BookingDocument {
	type ticketAgg struct {
		embed    models.TicketEmbed
		seenLegs map[int64]struct{}
	}
	type bookingAgg struct {
		doc     models.BookingDocument
		tickets *orderedMap[string, *ticketAgg]
	}

	bookings := newOrderedMap[string, *bookingAgg]()
	for _, row := range rows {
		agg, ok := bookings.Get(row.BookRef)
		if !ok {
			agg = &bookingAgg{
				doc: models.BookingDocument{
					BookRef:     row.BookRef,
					BookDate:    row.BookDate,
					TotalAmount: row.TotalAmount,
				},
				tickets: newOrderedMap[string, *ticketAgg](),
			}
			bookings.Set(row.BookRef, agg)
		}

		if !row.TicketNo.Valid {
			// Booking without tickets; keep the empty parent.
			continue
		}
		ticket, ok := agg.tickets.Get(row.TicketNo.String)
		if !ok {
			ticket = &ticketAgg{
				embed: models.TicketEmbed{
					TicketNo:    row.TicketNo.String,
					PassengerID: row.PassengerID.String,
					FlightLegs:  []models.FlightLegEmbed{},
				},
				seenLegs: make(map[int64]struct{}),
			}
			agg.tickets.Set(row.TicketNo.String, ticket)
		}

		if !row.FlightID.Valid {
			// Ticket without segments yet.
			continue
		}
		if _, dup := ticket.seenLegs[row.FlightID.Int64]; dup {
			continue
		}
		ticket.seenLegs[row.FlightID.Int64] = struct{}{}

		leg := models.FlightLegEmbed{
			FlightID:           int(row.FlightID.Int64),
			FlightNo:           row.FlightNo.String,
			Route:              routeLabel(row.DepartureAirport.String, row.ArrivalAirport.String),
			ScheduledDeparture: row.ScheduledDeparture.Time,
			FareConditions:     row.FareConditions.String,
			Amount:             row.LegAmount.Float64,
		}
		if row.BoardingNo.Valid {
			leg.BoardingPass = &models.BoardingPassEmbed{
				BoardingNo: int(row.BoardingNo.Int64),
				SeatNo:     row.SeatNo.String,
			}
		}
		ticket.embed.FlightLegs = append(ticket.embed.FlightLegs, leg)
	}

	docs := make([]models.BookingDocument, 0, bookings.Len())
	for _, agg := range bookings.Values() {
		doc := agg.doc
		doc.Tickets = make([]models.TicketEmbed, 0, agg.tickets.Len())
		for _, ticket := range agg.tickets.Values() {
			doc.Tickets = append(doc.Tickets, ticket.embed)
		}
		docs = append(docs, doc)
	}
	return docs
}

// Flights maps each row to one document; flight_id is the primary key of
// the join, no grouping needed. Aircraft and airport embeds are
// point-in-time copies with localized names already resolved. The raw
// language maps never reach the document store.
func (a *Assembler) Flights(rows []FlightRow) []models.FlightDocument {
	docs := make([]models.FlightDocument, 0, len(rows))
	for _, row := range rows {
		doc := models.FlightDocument{
			FlightID:           row.FlightID,
			FlightNo:           row.FlightNo,
			ScheduledDeparture: row.ScheduledDeparture,
			ScheduledArrival:   row.ScheduledArrival,
			Status:             row.Status,
			Aircraft: models.AircraftRef{
				Code:  row.AircraftCode,
				Model: a.displayText("aircraft model", row.AircraftCode, row.AircraftModel),
			},
			Departure: models.AirportRef{
				AirportCode: row.DepartureAirport,
				AirportName: a.displayText("airport name", row.DepartureAirport, row.DepAirportName),
				City:        a.displayText("airport city", row.DepartureAirport, row.DepCity),
				Timezone:    row.DepTimezone.String,
			},
			Arrival: models.AirportRef{
				AirportCode: row.ArrivalAirport,
				AirportName: a.displayText("airport name", row.ArrivalAirport, row.ArrAirportName),
				City:        a.displayText("airport city", row.ArrivalAirport, row.ArrCity),
				Timezone:    row.ArrTimezone.String,
			},
		}
		if row.ActualDeparture.Valid {
			t := row.ActualDeparture.Time
			doc.ActualDeparture = &t
		}
		if row.ActualArrival.Valid {
			t := row.ActualArrival.Time
			doc.ActualArrival = &t
		}
		docs = append(docs, doc)
	}
	return docs
}

// Aircrafts groups the seat join by aircraft_code with first-wins dedup on
// seat_no.
func (a *Assembler) Aircrafts(rows []AircraftSeatRow) []models.AircraftDocument {
	type aircraftAgg struct {
		doc       models.AircraftDocument
		seenSeats map[string]struct{}
	}

	aircrafts := newOrderedMap[string, *aircraftAgg]()
	for _, row := range rows {
		agg, ok := aircrafts.Get(row.AircraftCode)
		if !ok {
			agg = &aircraftAgg{
				doc: models.AircraftDocument{
					AircraftCode: row.AircraftCode,
					Model:        a.displayText("aircraft model", row.AircraftCode, row.Model),
					Range:        int(row.Range.Int64),
					Seats:        []models.SeatEmbed{},
				},
				seenSeats: make(map[string]struct{}),
			}
			aircrafts.Set(row.AircraftCode, agg)
		}

		if !row.SeatNo.Valid {
			continue
		}
		if _, dup := agg.seenSeats[row.SeatNo.String]; dup {
			continue
		}
		agg.seenSeats[row.SeatNo.String] = struct{}{}
		agg.doc.Seats = append(agg.doc.Seats, models.SeatEmbed{
			SeatNo:         row.SeatNo.String,
			FareConditions: row.FareConditions.String,
		})
	}

	docs := make([]models.AircraftDocument, 0, aircrafts.Len())
	for _, agg := range aircrafts.Values() {
		docs = append(docs, agg.doc)
	}
	return docs
}

func (a *Assembler) Airports(rows []AirportRow) []models.AirportDocument {
	docs := make([]models.AirportDocument, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, models.AirportDocument{
			AirportCode: row.AirportCode,
			AirportName: a.displayText("airport name", row.AirportCode, row.AirportName),
			City:        a.displayText("airport city", row.AirportCode, row.City),
			Coordinates: row.Coordinates.String,
			Timezone:    row.Timezone.String,
		})
	}
	return docs
}

// displayText resolves a localized column for embedding. A null or empty
// column is ordinary missing reference data and degrades silently; a
// payload that cannot be resolved is worth a warning.
func (a *Assembler) displayText(field, key string, raw sql.NullString) string {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return unknownText
	}
	name, ok := displayName(raw.String)
	if !ok {
		a.log.Warn("unresolved localized text, using placeholder", "field", field, "key", key)
	}
	return name
}

func routeLabel(departure, arrival string) string {
	return fmt.Sprintf("%s -> %s", departure, arrival)
}

package models

import "time"

// BookingDocument is the root of the bookings collection: one document per
// booking with its tickets and their flight legs embedded. Consumers depend
// on these exact field names and nesting, so changes here are breaking.
type BookingDocument struct {
	BookRef     string        `bson:"_id" json:"_id"`
	BookDate    time.Time     `bson:"book_date" json:"book_date"`
	TotalAmount float64       `bson:"total_amount" json:"total_amount"`
	Tickets     []TicketEmbed `bson:"tickets" json:"tickets"`
}

type TicketEmbed struct {
	TicketNo    string           `bson:"ticket_no" json:"ticket_no"`
	PassengerID string           `bson:"passenger_id" json:"passenger_id"`
	FlightLegs  []FlightLegEmbed `bson:"flight_legs" json:"flight_legs"`
}

type FlightLegEmbed struct {
	FlightID           int       `bson:"flight_id" json:"flight_id"`
	FlightNo           string    `bson:"flight_no" json:"flight_no"`
	Route              string    `bson:"route" json:"route"`
	ScheduledDeparture time.Time `bson:"scheduled_departure" json:"scheduled_departure"`
	FareConditions     string    `bson:"fare_conditions" json:"fare_conditions"`
	Amount             float64   `bson:"amount" json:"amount"`
	// Nil means no boarding pass was issued; the key must then be absent
	// from the stored document, not null.
	BoardingPass *BoardingPassEmbed `bson:"boarding_pass,omitempty" json:"boarding_pass,omitempty"`
}

type BoardingPassEmbed struct {
	BoardingNo int    `bson:"boarding_no" json:"boarding_no"`
	SeatNo     string `bson:"seat_no" json:"seat_no"`
}

// FlightDocument is one flight with its aircraft and both airports embedded
// as point-in-time copies of the reference data.
type FlightDocument struct {
	FlightID           int         `bson:"_id" json:"_id"`
	FlightNo           string      `bson:"flight_no" json:"flight_no"`
	ScheduledDeparture time.Time   `bson:"scheduled_departure" json:"scheduled_departure"`
	ScheduledArrival   time.Time   `bson:"scheduled_arrival" json:"scheduled_arrival"`
	ActualDeparture    *time.Time  `bson:"actual_departure" json:"actual_departure"`
	ActualArrival      *time.Time  `bson:"actual_arrival" json:"actual_arrival"`
	Status             string      `bson:"status" json:"status"`
	Aircraft           AircraftRef `bson:"aircraft" json:"aircraft"`
	Departure          AirportRef  `bson:"departure" json:"departure"`
	Arrival            AirportRef  `bson:"arrival" json:"arrival"`
}

type AircraftRef struct {
	Code  string `bson:"code" json:"code"`
	Model string `bson:"model" json:"model"`
}

type AirportRef struct {
	AirportCode string `bson:"airport_code" json:"airport_code"`
	AirportName string `bson:"airport_name" json:"airport_name"`
	City        string `bson:"city" json:"city"`
	Timezone    string `bson:"timezone" json:"timezone"`
}

type AircraftDocument struct {
	AircraftCode string      `bson:"_id" json:"_id"`
	Model        string      `bson:"model" json:"model"`
	Range        int         `bson:"range" json:"range"`
	Seats        []SeatEmbed `bson:"seats" json:"seats"`
}

type SeatEmbed struct {
	SeatNo         string `bson:"seat_no" json:"seat_no"`
	FareConditions string `bson:"fare_conditions" json:"fare_conditions"`
}

type AirportDocument struct {
	AirportCode string `bson:"_id" json:"_id"`
	AirportName string `bson:"airport_name" json:"airport_name"`
	City        string `bson:"city" json:"city"`
	Coordinates string `bson:"coordinates" json:"coordinates"`
	Timezone    string `bson:"timezone" json:"timezone"`
}

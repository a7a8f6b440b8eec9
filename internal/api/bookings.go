package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travelnosql/internal/etl"
	"travelnosql/pkg/models"
	"travelnosql/pkg/utils"
)

type boardingPassRequest struct {
	BoardingNo int    `json:"boarding_no" validate:"required"`
	SeatNo     string `json:"seat_no" validate:"required"`
}

type flightLegRequest struct {
	FlightID           int                  `json:"flight_id" validate:"required"`
	FlightNo           string               `json:"flight_no" validate:"required"`
	Route              string               `json:"route"`
	ScheduledDeparture time.Time            `json:"scheduled_departure" validate:"required"`
	FareConditions     string               `json:"fare_conditions" validate:"required,oneof=Economy Comfort Business"`
	Amount             float64              `json:"amount" validate:"gte=0"`
	BoardingPass       *boardingPassRequest `json:"boarding_pass"`
}

type ticketRequest struct {
	TicketNo    string             `json:"ticket_no" validate:"required,len=13"`
	PassengerID string             `json:"passenger_id" validate:"required"`
	FlightLegs  []flightLegRequest `json:"flight_legs" validate:"dive"`
}

type createBookingRequest struct {
	BookRef     string          `json:"book_ref" validate:"omitempty,len=6,hexadecimal,uppercase"`
	BookDate    time.Time       `json:"book_date" validate:"required"`
	TotalAmount float64         `json:"total_amount" validate:"gte=0"`
	Tickets     []ticketRequest `json:"tickets" validate:"dive"`
}

type updateBookingRequest struct {
	BookDate    *time.Time `json:"book_date"`
	TotalAmount *float64   `json:"total_amount" validate:"omitempty,gte=0"`
}

// ListBookings returns a page of booking documents, optionally filtered
// by the passenger appearing on any of the booking's tickets.
func (s *Server) ListBookings(c *fiber.Ctx) error {
	limit, offset := utils.ParsePagination(c.Query("limit"), c.Query("page"))

	filter := bson.D{}
	if pid := c.Query("passenger_id"); pid != "" {
		filter = bson.D{{Key: "tickets.passenger_id", Value: pid}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)
	cursor, err := s.mongo.Collection(etl.CollBookings).Find(c.Context(), filter, opts)
	if err != nil {
		s.log.Error("booking list failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to list bookings", err)
	}

	docs := make([]models.BookingDocument, 0)
	if err := cursor.All(c.Context(), &docs); err != nil {
		s.log.Error("booking decode failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to list bookings", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, docs)
}

func (s *Server) GetBooking(c *fiber.Ctx) error {
	bookRef := c.Params("bookRef")

	var doc models.BookingDocument
	err := s.mongo.Collection(etl.CollBookings).
		FindOne(c.Context(), bson.D{{Key: "_id", Value: bookRef}}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "booking not found", err)
	}
	if err != nil {
		s.log.Error("booking fetch failed", "book_ref", bookRef, "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to fetch booking", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, doc)
}

// CreateBooking inserts a new booking document, generating a six
// character reference when the payload does not supply one.
func (s *Server) CreateBooking(c *fiber.Ctx) error {
	var payload createBookingRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid request body", err)
	}
	if err := s.validate.Struct(payload); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "validation failed", err)
	}

	doc := models.BookingDocument{
		BookDate:    payload.BookDate.UTC(),
		TotalAmount: payload.TotalAmount,
		Tickets:     make([]models.TicketEmbed, 0, len(payload.Tickets)),
	}
	for _, t := range payload.Tickets {
		ticket := models.TicketEmbed{
			TicketNo:    t.TicketNo,
			PassengerID: t.PassengerID,
			FlightLegs:  make([]models.FlightLegEmbed, 0, len(t.FlightLegs)),
		}
		for _, l := range t.FlightLegs {
			leg := models.FlightLegEmbed{
				FlightID:           l.FlightID,
				FlightNo:           l.FlightNo,
				Route:              l.Route,
				ScheduledDeparture: l.ScheduledDeparture.UTC(),
				FareConditions:     l.FareConditions,
				Amount:             l.Amount,
			}
			if l.BoardingPass != nil {
				leg.BoardingPass = &models.BoardingPassEmbed{
					BoardingNo: l.BoardingPass.BoardingNo,
					SeatNo:     l.BoardingPass.SeatNo,
				}
			}
			ticket.FlightLegs = append(ticket.FlightLegs, leg)
		}
		doc.Tickets = append(doc.Tickets, ticket)
	}

	coll := s.mongo.Collection(etl.CollBookings)
	for attempt := 0; attempt < 5; attempt++ {
		if payload.BookRef != "" {
			doc.BookRef = payload.BookRef
		} else {
			doc.BookRef = newBookRef()
		}
		_, err := coll.InsertOne(c.Context(), doc)
		if err == nil {
			s.log.Info("booking created", "book_ref", doc.BookRef)
			return utils.SuccessResponse(c, fiber.StatusCreated, doc)
		}
		if mongo.IsDuplicateKeyError(err) {
			if payload.BookRef != "" {
				return utils.ErrorResponse(c, fiber.StatusConflict, "booking reference already exists", err)
			}
			continue
		}
		s.log.Error("booking insert failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to create booking", err)
	}
	return utils.ErrorResponse(c, fiber.StatusConflict, "could not allocate a unique booking reference", nil)
}

// UpdateBooking applies a partial update to the booking's scalar fields.
func (s *Server) UpdateBooking(c *fiber.Ctx) error {
	bookRef := c.Params("bookRef")

	var payload updateBookingRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid request body", err)
	}
	if err := s.validate.Struct(payload); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "validation failed", err)
	}

	set := bson.D{}
	if payload.BookDate != nil {
		set = append(set, bson.E{Key: "book_date", Value: payload.BookDate.UTC()})
	}
	if payload.TotalAmount != nil {
		set = append(set, bson.E{Key: "total_amount", Value: *payload.TotalAmount})
	}
	if len(set) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "no updatable fields provided", nil)
	}

	res, err := s.mongo.Collection(etl.CollBookings).UpdateByID(
		c.Context(), bookRef, bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		s.log.Error("booking update failed", "book_ref", bookRef, "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to update booking", err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "booking not found", nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"book_ref": bookRef, "updated": true})
}

func (s *Server) DeleteBooking(c *fiber.Ctx) error {
	bookRef := c.Params("bookRef")

	res, err := s.mongo.Collection(etl.CollBookings).
		DeleteOne(c.Context(), bson.D{{Key: "_id", Value: bookRef}})
	if err != nil {
		s.log.Error("booking delete failed", "book_ref", bookRef, "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to delete booking", err)
	}
	if res.DeletedCount == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "booking not found", nil)
	}
	s.log.Info("booking deleted", "book_ref", bookRef)
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"book_ref": bookRef, "deleted": true})
}

// newBookRef derives a six character uppercase hex reference, matching
// the format used by the source schema.
func newBookRef() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:6])
}

package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travelnosql/internal/etl"
	"travelnosql/pkg/models"
	"travelnosql/pkg/utils"
)

// flightFilter builds the find filter from the supported query params.
func flightFilter(c *fiber.Ctx) bson.D {
	filter := bson.D{}
	if v := c.Query("flight_no"); v != "" {
		filter = append(filter, bson.E{Key: "flight_no", Value: v})
	}
	if v := c.Query("status"); v != "" {
		filter = append(filter, bson.E{Key: "status", Value: v})
	}
	if v := c.Query("departure"); v != "" {
		filter = append(filter, bson.E{Key: "departure.airport_code", Value: v})
	}
	if v := c.Query("arrival"); v != "" {
		filter = append(filter, bson.E{Key: "arrival.airport_code", Value: v})
	}
	return filter
}

func (s *Server) ListFlights(c *fiber.Ctx) error {
	limit, offset := utils.ParsePagination(c.Query("limit"), c.Query("page"))

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_departure", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)
	cursor, err := s.mongo.Collection(etl.CollFlights).Find(c.Context(), flightFilter(c), opts)
	if err != nil {
		s.log.Error("flight list failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to list flights", err)
	}

	docs := make([]models.FlightDocument, 0)
	if err := cursor.All(c.Context(), &docs); err != nil {
		s.log.Error("flight decode failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to list flights", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, docs)
}

func (s *Server) GetFlight(c *fiber.Ctx) error {
	flightID, err := strconv.Atoi(c.Params("flightId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "flight id must be an integer", err)
	}

	var doc models.FlightDocument
	err = s.mongo.Collection(etl.CollFlights).
		FindOne(c.Context(), bson.D{{Key: "_id", Value: flightID}}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "flight not found", err)
	}
	if err != nil {
		s.log.Error("flight fetch failed", "flight_id", flightID, "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to fetch flight", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, doc)
}

func (s *Server) ListAircrafts(c *fiber.Ctx) error {
	filter := bson.D{}
	if v := c.Query("model"); v != "" {
		filter = append(filter, bson.E{Key: "model", Value: primitive.Regex{Pattern: v, Options: "i"}})
	}

	cursor, err := s.mongo.Collection(etl.CollAircrafts).
		Find(c.Context(), filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		s.log.Error("aircraft list failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to list aircrafts", err)
	}

	docs := make([]models.AircraftDocument, 0)
	if err := cursor.All(c.Context(), &docs); err != nil {
		s.log.Error("aircraft decode failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to list aircrafts", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, docs)
}

func (s *Server) GetAircraft(c *fiber.Ctx) error {
	code := c.Params("code")

	var doc models.AircraftDocument
	err := s.mongo.Collection(etl.CollAircrafts).
		FindOne(c.Context(), bson.D{{Key: "_id", Value: code}}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "aircraft not found", err)
	}
	if err != nil {
		s.log.Error("aircraft fetch failed", "aircraft_code", code, "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to fetch aircraft", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, doc)
}

func (s *Server) ListAirports(c *fiber.Ctx) error {
	filter := bson.D{}
	if v := c.Query("city"); v != "" {
		filter = append(filter, bson.E{Key: "city", Value: primitive.Regex{Pattern: v, Options: "i"}})
	}

	cursor, err := s.mongo.Collection(etl.CollAirports).
		Find(c.Context(), filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		s.log.Error("airport list failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to list airports", err)
	}

	docs := make([]models.AirportDocument, 0)
	if err := cursor.All(c.Context(), &docs); err != nil {
		s.log.Error("airport decode failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to list airports", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, docs)
}

func (s *Server) GetAirport(c *fiber.Ctx) error {
	code := c.Params("code")

	var doc models.AirportDocument
	err := s.mongo.Collection(etl.CollAirports).
		FindOne(c.Context(), bson.D{{Key: "_id", Value: code}}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "airport not found", err)
	}
	if err != nil {
		s.log.Error("airport fetch failed", "airport_code", code, "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to fetch airport", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, doc)
}

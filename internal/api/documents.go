package api

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"travelnosql/internal/etl"
	"travelnosql/pkg/utils"
)

type documentSummaryReport struct {
	Collections     map[string]int64 `json:"collections"`
	FlightsByStatus map[string]int64 `json:"flights_by_status"`
}

// DocumentSummary reports document counts per target collection and the
// status breakdown of the migrated flights.
func (s *Server) DocumentSummary(c *fiber.Ctx) error {
	ctx := c.Context()
	report := documentSummaryReport{
		Collections:     make(map[string]int64),
		FlightsByStatus: make(map[string]int64),
	}

	for _, coll := range []string{etl.CollBookings, etl.CollFlights, etl.CollAircrafts, etl.CollAirports} {
		count, err := s.mongo.Collection(coll).CountDocuments(ctx, bson.D{})
		if err != nil {
			s.log.Error("document count failed", "collection", coll, "error", err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to summarize collections", err)
		}
		report.Collections[coll] = count
	}

	cursor, err := s.mongo.Collection(etl.CollFlights).Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		s.log.Error("status aggregation failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to summarize collections", err)
	}
	var groups []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		s.log.Error("status aggregation decode failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to summarize collections", err)
	}
	for _, g := range groups {
		report.FlightsByStatus[g.Status] = g.Count
	}

	return utils.SuccessResponse(c, fiber.StatusOK, report)
}

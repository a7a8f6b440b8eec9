package etl

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// flightStatuses is the closed set of values the flights validator accepts.
var flightStatuses = bson.A{
	"Scheduled", "On Time", "Delayed", "Departed", "Arrived", "Cancelled",
}

// InstallFlightValidator attaches a $jsonSchema validator to the flights
// collection so future writes keep the core fields present and typed.
// Documents already loaded are not re-checked. Callers treat a failure
// here as a warning; the migrated data is usable without enforcement.
func (s *MongoSchemaManager) InstallFlightValidator(ctx context.Context) error {
	schema := bson.D{
		{Key: "bsonType", Value: "object"},
		{Key: "required", Value: bson.A{"_id", "flight_no", "status", "scheduled_departure"}},
		{Key: "properties", Value: bson.D{
			{Key: "flight_no", Value: bson.D{
				{Key: "bsonType", Value: "string"},
			}},
			{Key: "scheduled_departure", Value: bson.D{
				{Key: "bsonType", Value: "date"},
			}},
			{Key: "status", Value: bson.D{
				{Key: "enum", Value: flightStatuses},
			}},
		}},
	}

	cmd := bson.D{
		{Key: "collMod", Value: CollFlights},
		{Key: "validator", Value: bson.D{{Key: "$jsonSchema", Value: schema}}},
		{Key: "validationLevel", Value: "strict"},
		{Key: "validationAction", Value: "error"},
	}
	if err := s.db.RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("installing flights validator: %w", err)
	}
	return nil
}

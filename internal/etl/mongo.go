package etl

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoWriter implements DocumentSink with a drop-then-insert rebuild.
type MongoWriter struct {
	db *mongo.Database
}

func NewMongoWriter(db *mongo.Database) *MongoWriter {
	return &MongoWriter{db: db}
}

// Replace drops the collection and bulk-inserts the assembled documents in
// order. An empty input leaves the collection empty on purpose: an empty
// source table is a valid state, not an error.
func (w *MongoWriter) Replace(ctx context.Context, collection string, docs []interface{}) (int64, error) {
	coll := w.db.Collection(collection)

	if err := coll.Drop(ctx); err != nil {
		return 0, fmt.Errorf("dropping %s: %w", collection, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return int64(len(res.InsertedIDs)), nil
}

// MongoSchemaManager implements SchemaManager. The index set mirrors the
// known analytic query shapes: passenger lookups across bookings, flight
// number / status / route endpoint filters, aircraft model and city search.
type MongoSchemaManager struct {
	db *mongo.Database
}

func NewMongoSchemaManager(db *mongo.Database) *MongoSchemaManager {
	return &MongoSchemaManager{db: db}
}

var collectionIndexes = map[string][]mongo.IndexModel{
	CollBookings: {
		{Keys: bson.D{{Key: "book_date", Value: 1}}},
		{Keys: bson.D{{Key: "tickets.passenger_id", Value: 1}}},
		{Keys: bson.D{{Key: "tickets.flight_legs.flight_id", Value: 1}}},
	},
	CollFlights: {
		{Keys: bson.D{{Key: "flight_no", Value: 1}}},
		{Keys: bson.D{{Key: "scheduled_departure", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "departure.airport_code", Value: 1}}},
		{Keys: bson.D{{Key: "arrival.airport_code", Value: 1}}},
	},
	CollAircrafts: {
		{Keys: bson.D{{Key: "model", Value: 1}}},
	},
	CollAirports: {
		{Keys: bson.D{{Key: "city", Value: 1}}},
	},
}

func (s *MongoSchemaManager) EnsureIndexes(ctx context.Context, collection string) error {
	models, ok := collectionIndexes[collection]
	if !ok {
		return nil
	}
	if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("creating indexes on %s: %w", collection, err)
	}
	return nil
}

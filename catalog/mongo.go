package catalog

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"orderdesk/models"
)

// MongoSource reads catalog documents from a MongoDB collection:
//
//	{ id: "007", name: "...", category: "...", points: 10, price: 500 }
//
// Documents are returned in insertion (_id) order.
type MongoSource struct {
	Collection *mongo.Collection
}

func (s MongoSource) String() string {
	return "mongodb:" + s.Collection.Database().Name() + "." + s.Collection.Name()
}

type productDoc struct {
	ID       bson.RawValue `bson:"id"`
	Name     string        `bson:"name"`
	Category string        `bson:"category"`
	Points   bson.RawValue `bson:"points"`
	Price    bson.RawValue `bson:"price"`
}

func (s MongoSource) Load(ctx context.Context) ([]models.Product, error) {
	name := s.String()
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.Collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, loadErr(name, 0, "", "query failed", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	for row := 1; cursor.Next(ctx); row++ {
		var doc productDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, loadErr(name, row, "", "malformed document", err)
		}
		if doc.ID.Type != bsontype.String {
			return nil, loadErr(name, row, "id", fmt.Sprintf("id must be a string, got %s", doc.ID.Type), nil)
		}
		points, err := rawDecimal(doc.Points)
		if err != nil {
			return nil, loadErr(name, row, "points", "unparseable number", err)
		}
		price, err := rawDecimal(doc.Price)
		if err != nil {
			return nil, loadErr(name, row, "price", "unparseable number", err)
		}
		products = append(products, models.Product{
			ID:       doc.ID.StringValue(),
			Name:     doc.Name,
			Category: doc.Category,
			Points:   points,
			Price:    price,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, loadErr(name, 0, "", "cursor failed", err)
	}
	return products, nil
}

func rawDecimal(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	case bsontype.Double:
		f := v.Double()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", f)
		}
		return decimal.NewFromFloat(f), nil
	case bsontype.Decimal128:
		return decimal.NewFromString(v.Decimal128().String())
	case bsontype.String:
		return parseNumber(v.StringValue())
	case 0:
		return decimal.Zero, fmt.Errorf("missing value")
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %s", v.Type)
	}
}

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
)

const (
	dealershipsCollection = "dealerships"
	vehiclesCollection    = "vehicles"
	contractsCollection   = "contracts"

	// DefaultDealershipID is the _id of the single dealership document.
	DefaultDealershipID = 1
)

// MongoDBRepository stores the inventory and contract log in MongoDB.
type MongoDBRepository struct {
	client       *mongo.Client
	dbName       string
	dealershipID int
	logger       *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, dealershipID int, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dealershipID <= 0 {
		dealershipID = DefaultDealershipID
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:       client,
		dbName:       dbName,
		dealershipID: dealershipID,
		logger:       logger,
	}, nil
}

// Name identifies the backend in logs and errors.
func (r *MongoDBRepository) Name() string { return "mongodb" }

// Fetch reads the dealership document and its vehicles in storage order.
func (r *MongoDBRepository) Fetch(ctx context.Context) (*models.Snapshot, error) {
	db := r.client.Database(r.dbName)

	var dealership dealershipDoc
	err := db.Collection(dealershipsCollection).
		FindOne(ctx, bson.M{"_id": r.dealershipID}).
		Decode(&dealership)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find dealership %d: %w", r.dealershipID, err)
	}

	cursor, err := db.Collection(vehiclesCollection).Find(ctx,
		bson.M{"dealership_id": r.dealershipID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}

	var docs []vehicleDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	return newSnapshot(dealership, docs), nil
}

// Store replaces the dealership document and all of its vehicles in one transaction.
func (r *MongoDBRepository) Store(ctx context.Context, dealership models.Dealership, vehicles []models.Vehicle) error {
	db := r.client.Database(r.dbName)

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	docs := newVehicleDocs(r.dealershipID, vehicles)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		header := newDealershipDoc(r.dealershipID, dealership)
		if _, err := db.Collection(dealershipsCollection).ReplaceOne(sc,
			bson.M{"_id": r.dealershipID}, header, options.Replace().SetUpsert(true)); err != nil {
			return nil, fmt.Errorf("failed to upsert dealership: %w", err)
		}

		if _, err := db.Collection(vehiclesCollection).DeleteMany(sc, bson.M{"dealership_id": r.dealershipID}); err != nil {
			return nil, fmt.Errorf("failed to delete vehicles: %w", err)
		}

		if len(docs) == 0 {
			return nil, nil
		}
		if _, err := db.Collection(vehiclesCollection).InsertMany(sc, docs); err != nil {
			return nil, fmt.Errorf("failed to insert vehicles: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("inventory stored", zap.Int("vehicles", len(docs)))
	return nil
}

// AppendContract inserts one contract document.
func (r *MongoDBRepository) AppendContract(ctx context.Context, contract models.Contract) error {
	collection := r.client.Database(r.dbName).Collection(contractsCollection)
	if _, err := collection.InsertOne(ctx, newContractDoc(r.dealershipID, contract)); err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

type dealershipDoc struct {
	ID      int    `bson:"_id"`
	Name    string `bson:"name"`
	Address string `bson:"address"`
	Phone   string `bson:"phone"`
}

func newDealershipDoc(id int, d models.Dealership) dealershipDoc {
	return dealershipDoc{ID: id, Name: d.Name, Address: d.Address, Phone: d.Phone}
}

// vehicleDoc keeps the price as text so the stored value round-trips exactly.
type vehicleDoc struct {
	DealershipID int    `bson:"dealership_id"`
	Seq          int    `bson:"seq"`
	VIN          int    `bson:"vin"`
	Year         int    `bson:"year"`
	Make         string `bson:"make"`
	Model        string `bson:"model"`
	Type         string `bson:"type"`
	Color        string `bson:"color"`
	Odometer     int64  `bson:"odometer"`
	Price        string `bson:"price"`
}

func newVehicleDocs(dealershipID int, vehicles []models.Vehicle) []interface{} {
	docs := make([]interface{}, 0, len(vehicles))
	for i, v := range vehicles {
		docs = append(docs, vehicleDoc{
			DealershipID: dealershipID,
			Seq:          i,
			VIN:          v.VIN,
			Year:         v.Year,
			Make:         v.Make,
			Model:        v.Model,
			Type:         v.Type,
			Color:        v.Color,
			Odometer:     v.Odometer,
			Price:        v.Price.StringFixed(2),
		})
	}
	return docs
}

func (d vehicleDoc) record() string {
	return strings.Join([]string{
		strconv.Itoa(d.VIN),
		strconv.Itoa(d.Year),
		d.Make,
		d.Model,
		d.Type,
		d.Color,
		strconv.FormatInt(d.Odometer, 10),
		d.Price,
	}, models.FieldSeparator)
}

func newSnapshot(dealership dealershipDoc, docs []vehicleDoc) *models.Snapshot {
	snapshot := &models.Snapshot{
		Header:  models.Dealership{Name: dealership.Name, Address: dealership.Address, Phone: dealership.Phone}.Record(),
		Records: make([]string, 0, len(docs)),
	}
	for _, doc := range docs {
		snapshot.Records = append(snapshot.Records, doc.record())
	}
	return snapshot
}

type contractDoc struct {
	DealershipID   int       `bson:"dealership_id"`
	Kind           string    `bson:"kind"`
	Date           time.Time `bson:"date"`
	CustomerName   string    `bson:"customer_name"`
	CustomerEmail  string    `bson:"customer_email"`
	VehicleVIN     int       `bson:"vehicle_vin"`
	Vehicle        string    `bson:"vehicle"`
	Financed       bool      `bson:"financed"`
	ProcessingFee  string    `bson:"processing_fee,omitempty"`
	ExpectedEnding string    `bson:"expected_ending_value,omitempty"`
	LeaseFee       string    `bson:"lease_fee,omitempty"`
	TotalPrice     string    `bson:"total_price"`
	MonthlyPayment string    `bson:"monthly_payment"`
	Record         string    `bson:"record"`
}

func newContractDoc(dealershipID int, c models.Contract) contractDoc {
	doc := contractDoc{
		DealershipID:   dealershipID,
		Kind:           string(c.Kind),
		Date:           c.Date,
		CustomerName:   c.CustomerName,
		CustomerEmail:  c.CustomerEmail,
		VehicleVIN:     c.Vehicle.VIN,
		Vehicle:        c.Vehicle.DataRecord(),
		Financed:       c.Financed(),
		TotalPrice:     c.TotalPrice().StringFixed(2),
		MonthlyPayment: c.MonthlyPayment().StringFixed(2),
		Record:         c.Record(),
	}
	switch c.Kind {
	case models.ContractSale:
		if c.Sale != nil {
			doc.ProcessingFee = c.Sale.ProcessingFee.StringFixed(2)
		}
	case models.ContractLease:
		doc.ExpectedEnding = c.ExpectedEndingValue().StringFixed(2)
		doc.LeaseFee = c.LeaseFee().StringFixed(2)
	}
	return doc
}

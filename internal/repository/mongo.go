package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecobazaarx/internal/models"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	ordersCollection   = "orders"
	countersCollection = "counters"
	sequencesDocID     = "sequences"
)

// ConnectMongo abre el cliente y verifica la conexión
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// MongoPersister guarda cada entidad en su colección
type MongoPersister struct {
	users    *mongo.Collection
	products *mongo.Collection
	orders   *mongo.Collection
	counters *mongo.Collection
	logger   *slog.Logger
}

// NewMongoPersister usa las colecciones users, products, orders y counters de db
func NewMongoPersister(db *mongo.Database, logger *slog.Logger) *MongoPersister {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoPersister{
		users:    db.Collection(usersCollection),
		products: db.Collection(productsCollection),
		orders:   db.Collection(ordersCollection),
		counters: db.Collection(countersCollection),
		logger:   logger,
	}
}

// Load lee todas las colecciones ordenadas por id
func (r *MongoPersister) Load(ctx context.Context) (*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	snap := &models.Snapshot{}
	if err := findAll(ctx, r.users, &snap.Users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if err := findAll(ctx, r.products, &snap.Products); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if err := findAll(ctx, r.orders, &snap.Orders); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	err := r.counters.FindOne(ctx, bson.M{"_id": sequencesDocID}).Decode(&snap.Sequences)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("load sequences: %w", err)
	}

	if snap.Empty() && snap.Sequences == (models.Sequences{}) {
		return nil, nil
	}
	return snap, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, out *[]T) error {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// Save reemplaza cada documento por id (upsert) y borra los que ya no están
func (r *MongoPersister) Save(ctx context.Context, snap *models.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := syncCollection(ctx, r.users, snap.Users, func(u models.User) int64 { return u.ID }); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	if err := syncCollection(ctx, r.products, snap.Products, func(p models.Product) int64 { return p.ID }); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	if err := syncCollection(ctx, r.orders, snap.Orders, func(o models.Order) int64 { return o.ID }); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}

	_, err := r.counters.UpdateOne(ctx,
		bson.M{"_id": sequencesDocID},
		bson.M{"$set": bson.M{
			"user":       snap.Sequences.User,
			"product":    snap.Sequences.Product,
			"order":      snap.Sequences.Order,
			"updated_at": time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save sequences: %w", err)
	}

	r.logger.Debug("Snapshot saved to mongo",
		"users", len(snap.Users),
		"products", len(snap.Products),
		"orders", len(snap.Orders))
	return nil
}

func syncCollection[T any](ctx context.Context, coll *mongo.Collection, docs []T, idOf func(T) int64) error {
	ids := make([]int64, 0, len(docs))
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		id := idOf(d)
		ids = append(ids, id)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id}).
			SetReplacement(d).
			SetUpsert(true))
	}

	if len(writes) > 0 {
		if _, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return err
		}
	}

	_, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}})
	return err
}

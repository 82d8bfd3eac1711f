package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "customer-registry/internal/errors"
	"customer-registry/internal/model"
)

const (
	mongoDatabase            = "customers"
	mongoCustomersCollection = "customers"
)

type mongoCustomerRepository struct {
	client *mongo.Client
}

// NewMongoCustomerRepository builds customer repository over mongo. The
// aggregate is stored as a single document with embedded child arrays,
// so every write command is atomic by itself.
func NewMongoCustomerRepository(client *mongo.Client) CustomerRepository {
	return &mongoCustomerRepository{client: client}
}

func (r *mongoCustomerRepository) FindByName(ctx context.Context, name string) (*model.Customer, error) {
	var c model.Customer
	if err := r.customers().FindOne(ctx, bson.M{"customerName": name}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoCustomerRepository) FindAll(ctx context.Context) ([]*model.Customer, error) {
	cursor, err := r.customers().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	customers := make([]*model.Customer, 0)
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *mongoCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	if _, err := r.customers().InsertOne(ctx, c); err != nil {
		return r.classify(err, c.Name)
	}
	return nil
}

func (r *mongoCustomerRepository) Update(ctx context.Context, c *model.Customer, diff *model.CustomerDiff) error {
	// c already carries the reconciled child collections, the whole
	// document is replaced in one atomic write
	res, err := r.customers().ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return r.classify(err, c.Name)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundErr(fmt.Sprintf("customer %s does not exist", c.Name))
	}
	return nil
}

func (r *mongoCustomerRepository) DeleteByName(ctx context.Context, name string) error {
	res, err := r.customers().DeleteOne(ctx, bson.M{"customerName": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFoundErr(fmt.Sprintf("customer %s does not exist", name))
	}
	return nil
}

func (r *mongoCustomerRepository) customers() *mongo.Collection {
	return r.client.Database(mongoDatabase).Collection(mongoCustomersCollection)
}

func (r *mongoCustomerRepository) classify(err error, name string) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewConflictErr(fmt.Sprintf("customer %s already exists", name))
	}
	return err
}

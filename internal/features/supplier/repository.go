package supplier

import (
	"context"

	"go-procure/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier *Supplier) error
	Get(ctx context.Context, id string) (*Supplier, error)
	List(ctx context.Context) ([]Supplier, error)
	Update(ctx context.Context, id string, supplier *Supplier) error
	Delete(ctx context.Context, id string) error
}

type SupplierRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSupplierRepository(mongodb *database.MongodbDB) SupplierRepository {
	return &SupplierRepositoryImpl{
		Collection: mongodb.DB.Collection("suppliers"),
	}
}

func (r *SupplierRepositoryImpl) Create(ctx context.Context, supplier *Supplier) error {
	_, err := r.Collection.InsertOne(ctx, supplier)
	return err
}

func (r *SupplierRepositoryImpl) Get(ctx context.Context, id string) (*Supplier, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var supplier Supplier
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&supplier)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepositoryImpl) List(ctx context.Context) ([]Supplier, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var suppliers []Supplier
	if err = cursor.All(ctx, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *SupplierRepositoryImpl) Update(ctx context.Context, id string, supplier *Supplier) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"code":                 supplier.Code,
			"name":                 supplier.Name,
			"contact_name":         supplier.ContactName,
			"email":                supplier.Email,
			"phone":                supplier.Phone,
			"address":              supplier.Address,
			"tax_number":           supplier.TaxNumber,
			"bank_account":         supplier.BankAccount,
			"status":               supplier.Status,
			"workflow_instance_id": supplier.WorkflowInstanceID,
			"updated_at":           supplier.UpdatedAt,
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *SupplierRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

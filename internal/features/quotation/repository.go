package quotation

import (
	"context"

	"go-procure/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuotationRepository interface {
	Create(ctx context.Context, quotation *MaterialQuotation) error
	Get(ctx context.Context, id string) (*MaterialQuotation, error)
	List(ctx context.Context) ([]MaterialQuotation, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]MaterialQuotation, error)
	Update(ctx context.Context, id string, quotation *MaterialQuotation) error
	Delete(ctx context.Context, id string) error
}

type QuotationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewQuotationRepository(mongodb *database.MongodbDB) QuotationRepository {
	return &QuotationRepositoryImpl{
		Collection: mongodb.DB.Collection("material_quotations"),
	}
}

func (r *QuotationRepositoryImpl) Create(ctx context.Context, quotation *MaterialQuotation) error {
	_, err := r.Collection.InsertOne(ctx, quotation)
	return err
}

func (r *QuotationRepositoryImpl) Get(ctx context.Context, id string) (*MaterialQuotation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var quotation MaterialQuotation
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&quotation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepositoryImpl) List(ctx context.Context) ([]MaterialQuotation, error) {
	return r.find(ctx, bson.M{})
}

func (r *QuotationRepositoryImpl) ListBySupplier(ctx context.Context, supplierID string) ([]MaterialQuotation, error) {
	return r.find(ctx, bson.M{"supplier_id": supplierID})
}

func (r *QuotationRepositoryImpl) find(ctx context.Context, filter bson.M) ([]MaterialQuotation, error) {
	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var quotations []MaterialQuotation
	if err = cursor.All(ctx, &quotations); err != nil {
		return nil, err
	}
	return quotations, nil
}

func (r *QuotationRepositoryImpl) Update(ctx context.Context, id string, quotation *MaterialQuotation) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"quotation_number":     quotation.QuotationNumber,
			"supplier_id":          quotation.SupplierID,
			"material_code":        quotation.MaterialCode,
			"material_name":        quotation.MaterialName,
			"quantity":             quotation.Quantity,
			"unit_price":           quotation.UnitPrice,
			"quoted_amount":        quotation.QuotedAmount,
			"currency":             quotation.Currency,
			"valid_until":          quotation.ValidUntil,
			"remark":               quotation.Remark,
			"status":               quotation.Status,
			"workflow_instance_id": quotation.WorkflowInstanceID,
			"updated_at":           quotation.UpdatedAt,
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *QuotationRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

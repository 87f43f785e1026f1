package order

import (
	"context"

	"go-procure/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OrderRepository interface {
	Create(ctx context.Context, order *PurchaseOrder) error
	Get(ctx context.Context, id string) (*PurchaseOrder, error)
	List(ctx context.Context) ([]PurchaseOrder, error)
	Update(ctx context.Context, id string, order *PurchaseOrder) error
	Delete(ctx context.Context, id string) error
}

type OrderRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewOrderRepository(mongodb *database.MongodbDB) OrderRepository {
	return &OrderRepositoryImpl{
		Collection: mongodb.DB.Collection("purchase_orders"),
	}
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, order *PurchaseOrder) error {
	_, err := r.Collection.InsertOne(ctx, order)
	return err
}

func (r *OrderRepositoryImpl) Get(ctx context.Context, id string) (*PurchaseOrder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var order PurchaseOrder
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepositoryImpl) List(ctx context.Context) ([]PurchaseOrder, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var orders []PurchaseOrder
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepositoryImpl) Update(ctx context.Context, id string, order *PurchaseOrder) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"order_number":         order.OrderNumber,
			"supplier_id":          order.SupplierID,
			"currency":             order.Currency,
			"lines":                order.Lines,
			"total_amount":         order.TotalAmount,
			"expected_delivery":    order.ExpectedDelivery,
			"remark":               order.Remark,
			"status":               order.Status,
			"workflow_instance_id": order.WorkflowInstanceID,
			"updated_at":           order.UpdatedAt,
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *OrderRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

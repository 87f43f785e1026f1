package payment

import (
	"context"

	"go-procure/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *PrePayment) error
	Get(ctx context.Context, id string) (*PrePayment, error)
	List(ctx context.Context) ([]PrePayment, error)
	ListByOrder(ctx context.Context, orderID string) ([]PrePayment, error)
	Update(ctx context.Context, id string, payment *PrePayment) error
	Delete(ctx context.Context, id string) error
}

type PaymentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPaymentRepository(mongodb *database.MongodbDB) PaymentRepository {
	return &PaymentRepositoryImpl{
		Collection: mongodb.DB.Collection("pre_payments"),
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *PrePayment) error {
	_, err := r.Collection.InsertOne(ctx, payment)
	return err
}

func (r *PaymentRepositoryImpl) Get(ctx context.Context, id string) (*PrePayment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var payment PrePayment
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) List(ctx context.Context) ([]PrePayment, error) {
	return r.find(ctx, bson.M{})
}

func (r *PaymentRepositoryImpl) ListByOrder(ctx context.Context, orderID string) ([]PrePayment, error) {
	return r.find(ctx, bson.M{"order_id": orderID})
}

func (r *PaymentRepositoryImpl) find(ctx context.Context, filter bson.M) ([]PrePayment, error) {
	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var payments []PrePayment
	if err = cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, id string, payment *PrePayment) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"payment_number":       payment.PaymentNumber,
			"order_id":             payment.OrderID,
			"supplier_id":          payment.SupplierID,
			"amount":               payment.Amount,
			"currency":             payment.Currency,
			"due_date":             payment.DueDate,
			"purpose":              payment.Purpose,
			"status":               payment.Status,
			"workflow_instance_id": payment.WorkflowInstanceID,
			"updated_at":           payment.UpdatedAt,
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *PaymentRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

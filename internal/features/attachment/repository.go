package attachment

import (
	"context"

	"go-procure/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttachmentRepository interface {
	Save(ctx context.Context, attachment *Attachment) error
	Get(ctx context.Context, id string) (*Attachment, error)
	FindByDocument(ctx context.Context, documentType, documentID string) ([]*Attachment, error)
	CountByDocument(ctx context.Context, documentType, documentID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type AttachmentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAttachmentRepository(mongodb *database.MongodbDB) AttachmentRepository {
	return &AttachmentRepositoryImpl{
		Collection: mongodb.DB.Collection("attachments"),
	}
}

func (r *AttachmentRepositoryImpl) Save(ctx context.Context, attachment *Attachment) error {
	if attachment.ID.IsZero() {
		attachment.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, attachment)
	return err
}

func (r *AttachmentRepositoryImpl) Get(ctx context.Context, id string) (*Attachment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var attachment Attachment
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&attachment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepositoryImpl) FindByDocument(ctx context.Context, documentType, documentID string) ([]*Attachment, error) {
	filter := bson.M{"document_type": documentType, "document_id": documentID}
	cursor, err := r.Collection.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var attachments []*Attachment
	if err = cursor.All(ctx, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *AttachmentRepositoryImpl) CountByDocument(ctx context.Context, documentType, documentID string) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"document_type": documentType, "document_id": documentID})
}

func (r *AttachmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

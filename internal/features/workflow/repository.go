package workflow

import (
	"context"
	"time"

	"go-procure/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DefinitionRepository interface {
	Create(ctx context.Context, def *WorkflowDefinition) error
	GetByID(ctx context.Context, id string) (*WorkflowDefinition, error)
	GetDefaultByType(ctx context.Context, docType DocumentType) (*WorkflowDefinition, error)
	ListActiveByType(ctx context.Context, docType DocumentType) ([]WorkflowDefinition, error)
	List(ctx context.Context) ([]WorkflowDefinition, error)
	Update(ctx context.Context, id string, def *WorkflowDefinition) error
	Delete(ctx context.Context, id string) error
}

type DefinitionRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDefinitionRepository(mongodb *database.MongodbDB) DefinitionRepository {
	return &DefinitionRepositoryImpl{
		Collection: mongodb.DB.Collection("workflow_definitions"),
	}
}

func (r *DefinitionRepositoryImpl) Create(ctx context.Context, def *WorkflowDefinition) error {
	_, err := r.Collection.InsertOne(ctx, def)
	return err
}

func (r *DefinitionRepositoryImpl) GetByID(ctx context.Context, id string) (*WorkflowDefinition, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var def WorkflowDefinition
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&def)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &def, nil
}

func (r *DefinitionRepositoryImpl) GetDefaultByType(ctx context.Context, docType DocumentType) (*WorkflowDefinition, error) {
	var def WorkflowDefinition
	err := r.Collection.FindOne(ctx, bson.M{
		"document_type": docType,
		"is_default":    true,
		"active":        true,
	}).Decode(&def)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &def, nil
}

func (r *DefinitionRepositoryImpl) ListActiveByType(ctx context.Context, docType DocumentType) ([]WorkflowDefinition, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"document_type": docType, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var defs []WorkflowDefinition
	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *DefinitionRepositoryImpl) List(ctx context.Context) ([]WorkflowDefinition, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var defs []WorkflowDefinition
	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *DefinitionRepositoryImpl) Update(ctx context.Context, id string, def *WorkflowDefinition) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"name":          def.Name,
			"is_default":    def.IsDefault,
			"active":        def.Active,
			"levels":        def.Levels,
			"routing_rules": def.RoutingRules,
			"updated_at":    time.Now(),
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *DefinitionRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

type InstanceRepository interface {
	Create(ctx context.Context, inst *WorkflowInstance) error
	GetByID(ctx context.Context, id string) (*WorkflowInstance, error)
	GetPendingByDocument(ctx context.Context, docType DocumentType, docID string) (*WorkflowInstance, error)
	GetLatestByDocument(ctx context.Context, docType DocumentType, docID string) (*WorkflowInstance, error)
	ListPendingByRoles(ctx context.Context, roles []string) ([]WorkflowInstance, error)
	// UpdateWithVersion writes the full instance state conditioned on the
	// persisted version still matching expectedVersion; ErrStaleVersion
	// when another writer got there first.
	UpdateWithVersion(ctx context.Context, inst *WorkflowInstance, expectedVersion int64) error
	EnsureIndexes(ctx context.Context) error
}

type InstanceRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewInstanceRepository(mongodb *database.MongodbDB) InstanceRepository {
	return &InstanceRepositoryImpl{
		Collection: mongodb.DB.Collection("workflow_instances"),
	}
}

// EnsureIndexes backs the two invariants the queries rely on: at most
// one pending instance per document, and a fast pending-by-role scan.
func (r *InstanceRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "document_type", Value: 1}, {Key: "document_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": InstanceStatusPending}),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "current_roles", Value: 1}},
		},
	})
	return err
}

func (r *InstanceRepositoryImpl) Create(ctx context.Context, inst *WorkflowInstance) error {
	_, err := r.Collection.InsertOne(ctx, inst)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the race with a concurrent Start on the same document;
		// the partial unique index is the arbiter.
		return ErrDuplicatePendingInstance
	}
	return err
}

func (r *InstanceRepositoryImpl) GetByID(ctx context.Context, id string) (*WorkflowInstance, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var inst WorkflowInstance
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&inst)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &inst, nil
}

func (r *InstanceRepositoryImpl) GetPendingByDocument(ctx context.Context, docType DocumentType, docID string) (*WorkflowInstance, error) {
	var inst WorkflowInstance
	err := r.Collection.FindOne(ctx, bson.M{
		"document_type": docType,
		"document_id":   docID,
		"status":        InstanceStatusPending,
	}).Decode(&inst)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &inst, nil
}

func (r *InstanceRepositoryImpl) GetLatestByDocument(ctx context.Context, docType DocumentType, docID string) (*WorkflowInstance, error) {
	var inst WorkflowInstance
	err := r.Collection.FindOne(ctx, bson.M{
		"document_type": docType,
		"document_id":   docID,
		"superseded_by": nil,
	}, options.FindOne().SetSort(bson.M{"created_at": -1})).Decode(&inst)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &inst, nil
}

func (r *InstanceRepositoryImpl) ListPendingByRoles(ctx context.Context, roles []string) ([]WorkflowInstance, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	cursor, err := r.Collection.Find(ctx, bson.M{
		"status":        InstanceStatusPending,
		"current_roles": bson.M{"$in": roles},
	}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var instances []WorkflowInstance
	if err = cursor.All(ctx, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *InstanceRepositoryImpl) UpdateWithVersion(ctx context.Context, inst *WorkflowInstance, expectedVersion int64) error {
	update := bson.M{
		"$set": bson.M{
			"status":        inst.Status,
			"current_index": inst.CurrentIndex,
			"current_roles": inst.CurrentRoles,
			"decisions":     inst.Decisions,
			"version":       inst.Version,
			"cancel_reason": inst.CancelReason,
			"superseded_by": inst.SupersededBy,
			"updated_at":    inst.UpdatedAt,
		},
	}
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": inst.ID, "version": expectedVersion}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStaleVersion
	}
	return nil
}

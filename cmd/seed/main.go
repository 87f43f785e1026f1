package main

import (
	"context"
	"time"

	common_models "go-procure/internal/common/models"
	"go-procure/internal/config"
	"go-procure/internal/database"
	"go-procure/internal/features/role"
	"go-procure/internal/features/user"
	"go-procure/internal/features/workflow"
	"go-procure/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var seedRoles = []role.Role{
	{Name: "admin", Description: "Full administrative access", IsSystem: true},
	{Name: "procurement_manager", Description: "Owns supplier onboarding and purchase orders", IsSystem: true},
	{Name: "cost_center", Description: "Budget sign-off for routed documents", IsSystem: true},
	{Name: "general_manager", Description: "Final approval on high-value documents", IsSystem: true},
	{Name: "finance", Description: "Payment and quotation review", IsSystem: true},
}

func defaultDefinitions() []*workflow.WorkflowDefinition {
	return []*workflow.WorkflowDefinition{
		{
			DocumentType: workflow.DocumentTypeSupplier,
			Name:         "Supplier onboarding",
			IsDefault:    true,
			Active:       true,
			Levels: []workflow.Level{
				{LevelNumber: 1, LevelName: "Procurement review", ApproverRoles: []string{"procurement_manager"}, ApprovalMode: workflow.ApprovalModeAny, IsMandatory: true},
				{LevelNumber: 2, LevelName: "Management sign-off", ApproverRoles: []string{"general_manager"}, ApprovalMode: workflow.ApprovalModeAny, IsMandatory: true},
			},
		},
		{
			DocumentType: workflow.DocumentTypeOrder,
			Name:         "Purchase order approval",
			IsDefault:    true,
			Active:       true,
			Levels: []workflow.Level{
				{LevelNumber: 1, LevelName: "Procurement review", ApproverRoles: []string{"procurement_manager"}, ApprovalMode: workflow.ApprovalModeAny, IsMandatory: true},
				{LevelNumber: 2, LevelName: "Cost center", ApproverRoles: []string{"cost_center"}, ApprovalMode: workflow.ApprovalModeAny},
				{LevelNumber: 3, LevelName: "General manager", ApproverRoles: []string{"general_manager"}, ApprovalMode: workflow.ApprovalModeAny},
			},
			RoutingRules: []workflow.RoutingRule{
				{LevelNumber: 2, Operator: workflow.OperatorGte, Threshold: 10000},
				{LevelNumber: 3, Operator: workflow.OperatorGte, Threshold: 50000},
			},
		},
		{
			DocumentType: workflow.DocumentTypeQuotation,
			Name:         "Material quotation approval",
			IsDefault:    true,
			Active:       true,
			Levels: []workflow.Level{
				{LevelNumber: 1, LevelName: "Procurement review", ApproverRoles: []string{"procurement_manager"}, ApprovalMode: workflow.ApprovalModeAny, IsMandatory: true},
				{LevelNumber: 2, LevelName: "Finance review", ApproverRoles: []string{"finance"}, ApprovalMode: workflow.ApprovalModeAny},
			},
			RoutingRules: []workflow.RoutingRule{
				{LevelNumber: 2, Operator: workflow.OperatorGte, Threshold: 20000},
			},
		},
		{
			DocumentType: workflow.DocumentTypePrePayment,
			Name:         "Pre-payment approval",
			IsDefault:    true,
			Active:       true,
			Levels: []workflow.Level{
				{LevelNumber: 1, LevelName: "Finance and budget", ApproverRoles: []string{"finance", "cost_center"}, ApprovalMode: workflow.ApprovalModeAll, IsMandatory: true},
				{LevelNumber: 2, LevelName: "General manager", ApproverRoles: []string{"general_manager"}, ApprovalMode: workflow.ApprovalModeAny},
			},
			RoutingRules: []workflow.RoutingRule{
				{LevelNumber: 2, Operator: workflow.OperatorGte, Threshold: 30000},
			},
		},
	}
}

// Seed populates roles, the admin user, and the default workflow
// definitions. Idempotent: existing records are left alone.
func Seed(
	lc fx.Lifecycle,
	roleRepo role.RoleRepository,
	userRepo user.UserRepository,
	definitionRepo workflow.DefinitionRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Seeding database...")

				roleIDs := make(map[string]primitive.ObjectID)
				for _, r := range seedRoles {
					if existing, err := roleRepo.FindByName(ctx, r.Name); err == nil && existing != nil {
						logger.Info("Role exists, skipping", zap.String("role", r.Name))
						roleIDs[r.Name] = existing.ID
						continue
					}

					r.ID = primitive.NewObjectID()
					r.CreatedAt = time.Now()
					r.UpdatedAt = time.Now()
					if err := roleRepo.Create(ctx, &r); err != nil {
						logger.Fatal("Failed to create role", zap.String("role", r.Name), zap.Error(err))
					}
					roleIDs[r.Name] = r.ID
					logger.Info("Role created", zap.String("role", r.Name))
				}

				existing, err := userRepo.FindByUsername(ctx, "admin")
				if err != nil {
					logger.Fatal("Failed to look up admin user", zap.Error(err))
				}
				if existing == nil {
					hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
					if err != nil {
						logger.Fatal("Failed to hash password", zap.Error(err))
					}
					admin := &common_models.User{
						ID:        primitive.NewObjectID(),
						Username:  "admin",
						Password:  string(hash),
						Email:     "admin@example.com",
						Status:    "active",
						Roles:     []primitive.ObjectID{roleIDs["admin"], roleIDs["procurement_manager"], roleIDs["general_manager"]},
						CreatedAt: time.Now(),
						UpdatedAt: time.Now(),
					}
					if err := userRepo.Create(ctx, admin); err != nil {
						logger.Fatal("Failed to create admin user", zap.Error(err))
					}
					logger.Info("Admin user created", zap.String("username", "admin"))
				} else {
					logger.Info("Admin user exists, skipping")
				}

				for _, def := range defaultDefinitions() {
					current, err := definitionRepo.GetDefaultByType(ctx, def.DocumentType)
					if err != nil {
						logger.Fatal("Failed to look up definition", zap.String("document_type", string(def.DocumentType)), zap.Error(err))
					}
					if current != nil {
						logger.Info("Default definition exists, skipping", zap.String("document_type", string(def.DocumentType)))
						continue
					}

					if err := workflow.ValidateDefinition(def); err != nil {
						logger.Fatal("Seed definition is invalid", zap.String("document_type", string(def.DocumentType)), zap.Error(err))
					}

					def.ID = primitive.NewObjectID()
					def.CreatedAt = time.Now()
					def.UpdatedAt = time.Now()
					if err := definitionRepo.Create(ctx, def); err != nil {
						logger.Fatal("Failed to create definition", zap.String("document_type", string(def.DocumentType)), zap.Error(err))
					}
					logger.Info("Default definition created", zap.String("document_type", string(def.DocumentType)))
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			role.NewRoleRepository,
			user.NewUserRepository,
			workflow.NewDefinitionRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}

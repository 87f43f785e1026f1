package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-procure/internal/common/api"
	"go-procure/internal/config"
	"go-procure/internal/database"
	"go-procure/internal/features/attachment"
	"go-procure/internal/features/audit"
	"go-procure/internal/features/auth"
	"go-procure/internal/features/export"
	"go-procure/internal/features/order"
	"go-procure/internal/features/payment"
	"go-procure/internal/features/quotation"
	"go-procure/internal/features/role"
	"go-procure/internal/features/supplier"
	"go-procure/internal/features/user"
	"go-procure/internal/features/workflow"
	"go-procure/internal/logger"
	"go-procure/internal/middleware"
	"go-procure/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" and calls Setup() on each.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route groups\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures the workflow instance indexes exist; the
// unique pending index is a correctness requirement, not an optimization.
func InitializeIndexes(lc fx.Lifecycle, instanceRepo workflow.InstanceRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := instanceRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure workflow instance indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			user.NewUserRepository,
			role.NewRoleRepository,
			audit.NewAuditRepository,
			workflow.NewDefinitionRepository,
			workflow.NewInstanceRepository,
			supplier.NewSupplierRepository,
			order.NewOrderRepository,
			quotation.NewQuotationRepository,
			payment.NewPaymentRepository,
			attachment.NewAttachmentRepository,

			audit.NewAuditService,
			auth.NewAuthService,
			role.NewRoleService,
			user.NewUserService,
			export.NewExportService,
			workflow.NewWorkflowService,
			supplier.NewSupplierService,
			order.NewOrderService,
			quotation.NewQuotationService,
			payment.NewPaymentService,
			attachment.NewAttachmentService,

			// Interface adapters to break circular dependencies
			func(s role.RoleService) workflow.RoleResolver { return s },
			func(r user.UserRepository) audit.UserFinder { return r },

			// Initialize Controller
			auth.NewAuthController,
			role.NewRoleController,
			user.NewUserController,
			audit.NewAuditController,
			workflow.NewWorkflowController,
			supplier.NewSupplierController,
			order.NewOrderController,
			quotation.NewQuotationController,
			payment.NewPaymentController,
			attachment.NewAttachmentController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(role.NewRoleApi),
			AsRoute(user.NewUserApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(workflow.NewWorkflowApi),
			AsRoute(supplier.NewSupplierApi),
			AsRoute(order.NewOrderApi),
			AsRoute(quotation.NewQuotationApi),
			AsRoute(payment.NewPaymentApi),
			AsRoute(attachment.NewAttachmentApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,
		),
	)

	app.Run()
}

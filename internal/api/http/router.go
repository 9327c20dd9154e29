package http

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/api/http/handlers"
	"github.com/spec-kit/ticket-sync/internal/consumer"
	apperrors "github.com/spec-kit/ticket-sync/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Sync     *handlers.SyncHandler
	Taxonomy *handlers.TaxonomyHandler
	Stats    *handlers.StatsHandler
	Filters  *consumer.FilterOptions
}

// RegisterRoutes wires the local control API the dashboard fragments call.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/state", cfg.Sync.State)
	app.Get("/tickets", cfg.Sync.Tickets)
	app.Get("/edits", cfg.Sync.PendingEdits)
	app.Get("/filters", filterOptionsHandler(cfg.Filters))
	app.Post("/retry", cfg.Sync.Retry)
	app.Post("/tickets/:id/status", cfg.Sync.ChangeStatus)
	app.Patch("/tickets/:id", cfg.Sync.EditFields)
	app.Delete("/tickets/:id", cfg.Sync.Delete)

	statsGroup := app.Group("/stats")
	statsGroup.Get("/basic", cfg.Stats.Basic)
	statsGroup.Get("/daily", cfg.Stats.Daily)
	statsGroup.Get("/overdue", cfg.Stats.Overdue)

	tax := app.Group("/taxonomy")
	tax.Get("/", cfg.Taxonomy.Tree)
	tax.Post("/types", cfg.Taxonomy.AddType)
	tax.Put("/types", cfg.Taxonomy.RenameType)
	tax.Delete("/types/:type", cfg.Taxonomy.DeleteType)
	tax.Post("/types/:type/groups", cfg.Taxonomy.AddGroup)
	tax.Put("/types/:type/groups", cfg.Taxonomy.RenameGroup)
	tax.Delete("/types/:type/groups/:group", cfg.Taxonomy.DeleteGroup)
	tax.Post("/types/:type/groups/:group/subgroups", cfg.Taxonomy.AddSubgroup)
	tax.Delete("/types/:type/groups/:group/subgroups/:subgroup", cfg.Taxonomy.DeleteSubgroup)
}

// filterOptionsHandler serves the flat option lists the log-page filters
// consume.
func filterOptionsHandler(filters *consumer.FilterOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups := make(map[string][]string)
		for _, typeName := range filters.Types() {
			groups[typeName] = filters.Groups(typeName)
		}
		return c.JSON(fiber.Map{"data": fiber.Map{
			"types":    filters.Types(),
			"groups":   groups,
			"statuses": filters.Statuses(),
		}})
	}
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger) {
	app.Use(errorHandlingMiddleware(logger))
}

func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

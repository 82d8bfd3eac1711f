package infra

import (
	"errors"
	"net/http"

	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"customer-registry/internal/cache"
	apperrors "customer-registry/internal/errors"
	"customer-registry/internal/handlers"
	"customer-registry/internal/repository"
	"customer-registry/internal/service"
	"customer-registry/internal/validation"
	"customer-registry/pkg/db/transactor"
)

func Router(pgPool *pgxpool.Pool, mongoClient *mongo.Client, redisClient *redis.Client) (*echo.Echo, error) {
	e := echo.New()

	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	e.Validator = v
	e.HTTPErrorHandler = httpErrorHandler(e)

	// Transactors
	trx := transactor.NewPgxTransactor(pgPool)
	txExecutor := transactor.NewPgxWithinTransactionExecutor(pgPool)

	// Repositories
	pgCustomerRps := repository.NewPostgresCustomerRepository(trx, txExecutor)
	mongoCustomerRps := repository.NewMongoCustomerRepository(mongoClient)

	// Cache
	customerCache := cache.NewRedisCustomerCache(redisClient)

	// Services
	customerSvcV1 := service.NewCustomerService(pgCustomerRps, customerCache)
	customerSvcV2 := service.NewCustomerService(mongoCustomerRps, customerCache)

	// Handlers
	customerHandlerV1 := handlers.NewCustomerHTTPHandler(customerSvcV1)
	customerHandlerV2 := handlers.NewCustomerHTTPHandler(customerSvcV2)

	// API routes
	api := e.Group("/api")

	// customers v1 - postgres backed
	customersAPIV1 := api.Group("/v1/customers")
	registerCustomerRoutes(customersAPIV1, customerHandlerV1)

	// customers v2 - mongo backed
	customersAPIV2 := api.Group("/v2/customers")
	registerCustomerRoutes(customersAPIV2, customerHandlerV2)

	return e, nil
}

func registerCustomerRoutes(g *echo.Group, h *handlers.CustomerHTTPHandler) {
	g.POST("", h.Manage)
	g.PUT("", h.Manage)
	g.GET("", h.GetAll)
	g.GET("/:name", h.Get)
	g.DELETE("/:name", h.DeleteByName)

	// unsupported verbs on the management route are rejected by the
	// handler as validation failures, not as routing errors
	g.PATCH("", h.Manage)
	g.DELETE("", h.Manage)
}

func httpErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		logrus.Errorf("request to %s failed - %v", c.Path(), err)

		var (
			payloadErr    *validation.PayloadError
			validationErr *apperrors.ValidationErr
			notFoundErr   *apperrors.NotFoundErr
			conflictErr   *apperrors.ConflictErr
		)

		var writeErr error
		switch {
		case errors.As(err, &payloadErr):
			writeErr = c.JSON(http.StatusBadRequest, payloadErr)
		case errors.As(err, &validationErr):
			writeErr = c.JSON(http.StatusBadRequest, validationErr)
		case errors.As(err, &notFoundErr):
			writeErr = c.JSON(http.StatusNotFound, notFoundErr)
		case errors.As(err, &conflictErr):
			writeErr = c.JSON(http.StatusConflict, conflictErr)
		default:
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		if writeErr != nil {
			logrus.Errorf("failed to write error response - %v", writeErr)
		}
	}
}

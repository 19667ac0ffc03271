package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/tillwork/posadmin/internal/branch"
	"github.com/tillwork/posadmin/internal/manager"
	"github.com/tillwork/posadmin/internal/observability"
	"github.com/tillwork/posadmin/internal/workspace"
	apperrors "github.com/tillwork/posadmin/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	logger = observability.OrNop(logger)
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Route().Path, utils.CopyString(c.Method()), domainErr.Code)
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

// toDomainError maps package sentinels onto HTTP errors before falling back
// to the generic conversion. Validation failures carry their field messages.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.FromStatus(fiberErr.Code, fiberErr.Message)
	}
	var opErr *manager.OpError
	if errors.As(err, &opErr) {
		domainErr := &apperrors.DomainError{
			Code:       opErr.ErrorCode(),
			Message:    opErr.Message,
			HTTPStatus: opErr.HTTPStatus(),
			Err:        opErr.Err,
		}
		if errors.Is(opErr.Err, branch.ErrUnknownBranch) {
			domainErr.HTTPStatus = http.StatusBadRequest
		}
		if len(opErr.Fields) > 0 || opErr.Total > 0 {
			details := map[string]any{}
			if len(opErr.Fields) > 0 {
				details["fields"] = opErr.Fields
			}
			if opErr.Total > 0 {
				details["failed"] = opErr.Failed
				details["total"] = opErr.Total
			}
			domainErr.Details = details
		}
		return domainErr
	}

	switch {
	case errors.Is(err, workspace.ErrUnknownResource), errors.Is(err, manager.ErrNotFound):
		return apperrors.FromStatus(http.StatusNotFound, err.Error())
	case errors.Is(err, branch.ErrUnknownBranch):
		return apperrors.FromStatus(http.StatusNotFound, err.Error())
	case errors.Is(err, manager.ErrNoModal):
		return apperrors.FromStatus(http.StatusConflict, err.Error())
	case errors.Is(err, manager.ErrClosed), errors.Is(err, workspace.ErrSessionClosed):
		return apperrors.FromStatus(http.StatusUnauthorized, "session closed, please sign in again")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.FromStatus(http.StatusGatewayTimeout, "request timed out")
	}
	return apperrors.ToDomainError(err)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

// bindQuery extracts the shared list-query parameters from the
// request's query string.
func bindQuery(c echo.Context) model.QueryParameters {
	var q model.QueryParameters
	_ = c.Bind(&q)
	q.Normalize()
	return q
}

// writeError translates the store error taxonomy into status codes.
// NotFound, Unauthorized, Conflict and Validation map to distinct
// statuses; everything else is a generic failure carrying the error
// message.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, store.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, store.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// currentUser returns the user id and role injected by JWTAuth.
func currentUser(c echo.Context) (id, role string) {
	id, _ = c.Get("user_id").(string)
	role, _ = c.Get("role").(string)
	return id, role
}

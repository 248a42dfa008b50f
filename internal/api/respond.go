package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to log in with provided credentials"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

// uuidParam parses a path parameter; a malformed id answers 404.
func uuidParam(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		notFound(c, what)
		return uuid.Nil, false
	}
	return id, true
}

func uintParam(c *gin.Context, name, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		notFound(c, what)
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the authenticated user id; routes behind
// AuthMiddleware always have one.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
	}
	return id, ok
}

// viewer returns the authenticated user id or nil for anonymous requests.
func viewer(c *gin.Context) *uuid.UUID {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}

// optionalIntQuery parses an optional non-negative integer query parameter.
func optionalIntQuery(c *gin.Context, name string) (*int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, &service.ValidationError{Field: name, Message: "must be a non-negative integer"}
	}
	return &n, nil
}

// pager resolves page and limit query parameters.
type pager struct {
	defaultSize int
	maxSize     int
}

func (p pager) page(c *gin.Context) (types.Page, error) {
	page := types.Page{Number: 1, Size: p.defaultSize}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, &service.ValidationError{Field: "page", Message: "invalid page"}
		}
		page.Number = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, &service.ValidationError{Field: "limit", Message: "invalid limit"}
		}
		page.Size = min(n, p.maxSize)
	}
	return page, nil
}

// paginate wraps results in the listing envelope with absolute next and
// previous links.
func paginate[T any](c *gin.Context, page types.Page, total int64, results []T) types.Paginated[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Paginated[T]{Count: total, Results: results}
	if int64(page.Number*page.Size) < total {
		link := pageLink(c, page.Number+1)
		out.Next = &link
	}
	if page.Number > 1 {
		link := pageLink(c, page.Number-1)
		out.Previous = &link
	}
	return out
}

func pageLink(c *gin.Context, number int) string {
	u := *c.Request.URL
	q := u.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + u.RequestURI()
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-service/internal/service"
)

type errorResponse struct {
	status  int
	message string
}

// errorTable es la unica traduccion error de dominio -> respuesta HTTP.
var errorTable = []struct {
	err  error
	resp errorResponse
}{
	{service.ErrMalformedInput, errorResponse{http.StatusUnprocessableEntity, "Malformed input"}},
	{service.ErrInvalidCredentials, errorResponse{http.StatusBadRequest, "Invalid credentials"}},
	{service.ErrIncorrectCredentials, errorResponse{http.StatusUnauthorized, "Incorrect credentials"}},
	{service.ErrUserAlreadyExists, errorResponse{http.StatusConflict, "User already exists"}},
	{service.ErrMissingToken, errorResponse{http.StatusBadRequest, "Missing auth token"}},
	{service.ErrInvalidToken, errorResponse{http.StatusUnauthorized, "Invalid auth token"}},
	{service.ErrRateLimited, errorResponse{http.StatusTooManyRequests, "Too many requests"}},
}

var unexpectedResponse = errorResponse{http.StatusInternalServerError, "Unexpected error"}

func lookupError(err error) errorResponse {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			return entry.resp
		}
	}
	return unexpectedResponse
}

// abortWithError escribe {"error": msg}; errores desconocidos salen como 500
// sin detalle.
func abortWithError(c *gin.Context, err error) {
	resp := lookupError(err)
	c.AbortWithStatusJSON(resp.status, gin.H{"error": resp.message})
}

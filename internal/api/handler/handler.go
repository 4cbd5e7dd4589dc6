package handler

import (
	"errors"
	"net/http"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/events"
	"complaintdesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler holds the dependencies of the HTTP surface.
type Handler struct {
	Service   *complaint.Service
	Storage   storage.Storage
	Hub       *events.Hub
	JWTSecret []byte
}

func NewHandler(svc *complaint.Service, s storage.Storage, hub *events.Hub, jwtSecret string) *Handler {
	return &Handler{
		Service:   svc,
		Storage:   s,
		Hub:       hub,
		JWTSecret: []byte(jwtSecret),
	}
}

// fail maps a service error onto an HTTP status. Anything outside the known
// taxonomy is a persistence failure and stays generic towards the client.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Complaint not found"})
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, apperr.ErrUnsupportedMedia):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"message": "Invalid file type. Only images and PDF files are allowed."})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Feedback has already been submitted for this complaint"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// CORS restricts browser callers to the configured origin allow-list.
// Requests without an Origin header (curl, mobile apps) pass through.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, origin := range allowedOrigins {
		if origin != "" {
			allowed[origin] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

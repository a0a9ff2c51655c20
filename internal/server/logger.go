// file: internal/server/logger.go
// version: 2.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/art-roulette/internal/server/middleware"
)

// OperationLogger tracks the lifecycle of a handler operation
type OperationLogger struct {
	handler    string
	method     string
	path       string
	startTime  time.Time
	requestID  string
	resourceID string
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(handler, method, path, requestID string) *OperationLogger {
	return &OperationLogger{
		handler:   handler,
		method:    method,
		path:      path,
		startTime: time.Now(),
		requestID: requestID,
	}
}

// newOperationLogger builds an OperationLogger from the request.
func newOperationLogger(c *gin.Context, handler string) *OperationLogger {
	return NewOperationLogger(handler, c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c))
}

// SetResourceID sets the resource ID being operated on
func (ol *OperationLogger) SetResourceID(id string) {
	ol.resourceID = id
}

func (ol *OperationLogger) suffix() string {
	if ol.resourceID != "" {
		return fmt.Sprintf(" (resource: %s) [request-id: %s]", ol.resourceID, ol.requestID)
	}
	return fmt.Sprintf(" [request-id: %s]", ol.requestID)
}

// LogStart logs the start of the operation
func (ol *OperationLogger) LogStart() {
	log.Printf("[DEBUG] [START] %s %s%s", ol.method, ol.path, ol.suffix())
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess(statusCode int) {
	log.Printf("[INFO] [SUCCESS] %s %s (%d) in %v%s",
		ol.method, ol.path, statusCode, time.Since(ol.startTime), ol.suffix())
}

// LogError logs an error that occurred during the operation
func (ol *OperationLogger) LogError(statusCode int, err error) {
	log.Printf("[ERROR] %s %s (%d) in %v: %v%s",
		ol.method, ol.path, statusCode, time.Since(ol.startTime), err, ol.suffix())
}

// LogWarning logs a warning message
func (ol *OperationLogger) LogWarning(message string) {
	log.Printf("[WARN] %s: %s%s", ol.handler, message, ol.suffix())
}

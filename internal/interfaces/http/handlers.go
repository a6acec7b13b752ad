package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/service"
	"github.com/fcastillo/hybrid-notary/internal/application/workflow"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
	domainwf "github.com/fcastillo/hybrid-notary/internal/domain/workflow"
)

// ClientConfig is served to the polling clients so intervals are not
// hard-coded terminal-side
type ClientConfig struct {
	SessionPollInterval time.Duration
	QueuePollInterval   time.Duration
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	intake       service.IntakeService
	engine       workflow.Engine
	queries      service.QueryService
	clientConfig ClientConfig
	logger       *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	intake service.IntakeService,
	engine workflow.Engine,
	queries service.QueryService,
	clientConfig ClientConfig,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		intake:       intake,
		engine:       engine,
		queries:      queries,
		clientConfig: clientConfig,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// InitiateTransactionRequest is the body of POST /transactions
type InitiateTransactionRequest struct {
	TemplateName string `json:"template_name" binding:"required"`
	ServiceType  string `json:"service_type" binding:"required"`
}

// ConfirmPaymentRequest is the body of POST /transactions/:id/payment
type ConfirmPaymentRequest struct {
	ClientName   string `json:"client_name" binding:"required"`
	ClientEmail  string `json:"client_email" binding:"required"`
	TemplateName string `json:"template_name" binding:"required"`
	ServiceType  string `json:"service_type" binding:"required"`
}

// AcceptSessionRequest is the body of POST /sessions/:id/accept
type AcceptSessionRequest struct {
	CertifierID int64 `json:"certifier_id" binding:"required"`
}

// SendDocumentRequest is the body of POST /sessions/:id/document
type SendDocumentRequest struct {
	Content string `json:"content" binding:"required"`
}

// SubmitSignatureRequest is the body of POST /sessions/:id/signature
type SubmitSignatureRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"service":   "hybrid-notary",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// GetClientConfig handles GET /api/v1/client-config
func (h *Handlers) GetClientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"session_poll_interval_ms": h.clientConfig.SessionPollInterval.Milliseconds(),
			"queue_poll_interval_ms":   h.clientConfig.QueuePollInterval.Milliseconds(),
		},
	})
}

// InitiateTransaction handles POST /api/v1/transactions
func (h *Handlers) InitiateTransaction(c *gin.Context) {
	var req InitiateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	tx, err := h.intake.InitiateTransaction(c.Request.Context(), req.TemplateName, req.ServiceType)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: tx})
}

// ConfirmPayment handles POST /api/v1/transactions/:id/payment
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	session, err := h.intake.ConfirmPayment(c.Request.Context(), id,
		req.ClientName, req.ClientEmail, req.TemplateName, req.ServiceType)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: session})
}

// GetSession handles GET /api/v1/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	session, err := h.queries.GetSession(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// ListSessions handles GET /api/v1/sessions?status=...
func (h *Handlers) ListSessions(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		h.badRequest(c, "status query parameter is required")
		return
	}

	sessions, err := h.queries.ListByStatus(c.Request.Context(), status)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if sessions == nil {
		sessions = []*entity.Session{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: sessions})
}

// GetSessionEvents handles GET /api/v1/sessions/:id/events
func (h *Handlers) GetSessionEvents(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	events, err := h.queries.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if events == nil {
		events = []*entity.SessionEvent{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: events})
}

// AcceptSession handles POST /api/v1/sessions/:id/accept
func (h *Handlers) AcceptSession(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req AcceptSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	session, err := h.engine.AcceptSession(c.Request.Context(), id, req.CertifierID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// SendDocument handles POST /api/v1/sessions/:id/document
func (h *Handlers) SendDocument(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req SendDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	session, err := h.engine.SendDocumentForReview(c.Request.Context(), id, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// ApproveDocument handles POST /api/v1/sessions/:id/approve
func (h *Handlers) ApproveDocument(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	session, err := h.engine.ApproveDocument(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// SubmitSignature handles POST /api/v1/sessions/:id/signature
func (h *Handlers) SubmitSignature(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req SubmitSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	session, err := h.engine.SubmitClientPackage(c.Request.Context(), id, req.Signature)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// FinalizeSession handles POST /api/v1/sessions/:id/finalize
func (h *Handlers) FinalizeSession(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	session, err := h.engine.FinalizeSession(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// pathID parses the :id path parameter, writing the error response itself
func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// writeError maps domain error kinds to HTTP statuses
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainwf.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
	"github.com/custodia-labs/tillsync/internal/logger"
)

type handlers struct {
	offline driving.OfflineService
	toggle  ConnectivityToggle
}

func (h *handlers) register(r gin.IRouter) {
	r.GET("/healthz", h.health)
	r.GET("/status", h.status)

	r.POST("/sales", h.recordSale)
	r.GET("/sales", h.listSales)
	r.GET("/products", h.listProducts)

	r.POST("/sync", h.syncNow)
	r.GET("/queue", h.listQueue)
	r.GET("/dead-letters", h.listDeadLetters)

	r.POST("/connectivity", h.setConnectivity)
	r.POST("/notices/:kind/dismiss", h.dismissNotice)
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) status(c *gin.Context) {
	status, err := h.offline.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *handlers) recordSale(c *gin.Context) {
	var req domain.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	receipt, err := h.offline.RecordSale(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	code := http.StatusCreated
	if receipt.Offline {
		code = http.StatusAccepted
	}
	c.JSON(code, receipt)
}

type saleView struct {
	ID        int64           `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
	Synced    bool            `json:"synced"`
}

func (h *handlers) listSales(c *gin.Context) {
	var filter domain.SaleFilter
	if raw := c.Query("synced"); raw != "" {
		synced, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "synced must be true or false"})
			return
		}
		filter.Synced = &synced
	}

	sales, err := h.offline.Sales(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]saleView, 0, len(sales))
	for _, s := range sales {
		items = append(items, saleView{
			ID:        s.ID,
			Payload:   s.Payload,
			Timestamp: s.Timestamp.UTC().Format(time.RFC3339Nano),
			Synced:    s.Synced,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total_count": len(items)})
}

func (h *handlers) listProducts(c *gin.Context) {
	shopID, err := strconv.ParseInt(c.Query("shop"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop query parameter is required"})
		return
	}

	products, err := h.offline.Products(c.Request.Context(), shopID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": products, "total_count": len(products)})
}

func (h *handlers) syncNow(c *gin.Context) {
	report, err := h.offline.SyncNow(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handlers) listQueue(c *gin.Context) {
	items, err := h.offline.Queue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total_count": len(items)})
}

func (h *handlers) listDeadLetters(c *gin.Context) {
	letters, err := h.offline.DeadLetters(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": letters, "total_count": len(letters)})
}

type connectivityRequest struct {
	Online *bool `json:"online" binding:"required"`
}

func (h *handlers) setConnectivity(c *gin.Context) {
	if h.toggle == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "connectivity is not manually controlled"})
		return
	}

	var req connectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"online\": true|false}"})
		return
	}

	h.toggle.SetOnline(*req.Online)
	c.JSON(http.StatusOK, gin.H{"online": *req.Online})
}

func (h *handlers) dismissNotice(c *gin.Context) {
	if err := h.offline.DismissNotice(domain.NoticeKind(c.Param("kind"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps domain errors to status codes.
func writeError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrOffline):
		code = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSyncInProgress):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrRemoteUnreachable):
		code = http.StatusBadGateway
	}
	if code == http.StatusInternalServerError {
		logger.Warn("http: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

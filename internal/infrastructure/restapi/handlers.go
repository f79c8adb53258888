package restapi

import (
	"net/http"
	"strings"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// GenerateReportRequest is the body of the report endpoints.
type GenerateReportRequest struct {
	Address    string `json:"address" binding:"required"`
	Blockchain string `json:"blockchain"`
}

// ReportHandler serves the wallet report and NFT insight endpoints.
type ReportHandler struct {
	reportService  port.ReportService
	insightService port.NFTInsightService
	logger         port.Logger
}

// NewReportHandler creates a new instance of ReportHandler.
func NewReportHandler(rs port.ReportService, is port.NFTInsightService, log port.Logger) *ReportHandler {
	return &ReportHandler{
		reportService:  rs,
		insightService: is,
		logger:         log,
	}
}

// RootHandler answers the service banner.
func (h *ReportHandler) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Wallet report service is running."})
}

// HealthHandler is the liveness probe.
func (h *ReportHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GenerateReportHandler handles POST /generate-report and POST /api/v1/reports.
func (h *ReportHandler) GenerateReportHandler(c *gin.Context) {
	var body GenerateReportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}

	report, err := h.reportService.GenerateReport(c.Request.Context(), entity.ReportRequest{
		WalletAddress: body.Address,
		Blockchain:    body.Blockchain,
	})
	if err != nil {
		h.logger.Error("Report generation failed", "address", body.Address, "error", err, "request_id", c.GetString(requestIDKey))
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetNFTInsightHandler handles GET /api/v1/nfts/:contractAddress/:tokenId.
func (h *ReportHandler) GetNFTInsightHandler(c *gin.Context) {
	insight, err := h.insightService.GetInsight(c.Request.Context(), entity.NFTInsightRequest{
		ContractAddress: c.Param("contractAddress"),
		TokenID:         c.Param("tokenId"),
		Blockchain:      strings.TrimSpace(c.Query("blockchain")),
	})
	if err != nil {
		h.logger.Warn("NFT insight failed", "contract", c.Param("contractAddress"), "token_id", c.Param("tokenId"), "error", err)
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, insight)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tts-credit-bot/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Summary returns a period report selected by the "period" query
func (h *ReportHandler) Summary(c *gin.Context) {
	var (
		report *services.PeriodReport
		err    error
	)

	switch c.DefaultQuery("period", "today") {
	case "today":
		report, err = h.reportService.Today()
	case "yesterday":
		report, err = h.reportService.Yesterday()
	case "week":
		report, err = h.reportService.LastWeek()
	case "month":
		report, err = h.reportService.LastMonth()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// Range returns a report over an explicit window
func (h *ReportHandler) Range(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}

	report, err := h.reportService.ForRange(from, to.Add(24*time.Hour))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// Export streams a CSV of the transaction log for a window
func (h *ReportHandler) Export(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.DefaultQuery("from", "1970-01-01"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	to := time.Now().UTC()
	if s := c.Query("to"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
		to = parsed.Add(24 * time.Hour)
	}

	path, err := h.reportService.ExportTransactionsCSV(from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.FileAttachment(path, "transactions.csv")
}

// VerifyBalances reports users whose cached balance disagrees with the ledger
func (h *ReportHandler) VerifyBalances(c *gin.Context) {
	drifts, err := h.reportService.VerifyBalances()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    drifts,
		"clean":   len(drifts) == 0,
	})
}

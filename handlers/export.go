package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/services"
)

var exportHeader = []string{"Date", "Description", "Category", "Amount", "Payment Method", "Created By"}

type ExportHandler struct {
	Expenses *services.ExpenseService
}

// Export streams the ledger's expenses as ?format=csv (default) or xlsx,
// honoring the same filter params as the listing.
func (h *ExportHandler) Export(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	expenses, err := h.Expenses.ListAll(c.Request.Context(), userID(c), c.Param("id"), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		h.exportCSV(c, expenses)
	case "xlsx":
		h.exportXLSX(c, expenses)
	default:
		respondError(c, apperr.Validation("format", "format must be csv or xlsx"))
	}
}

func (h *ExportHandler) exportCSV(c *gin.Context, expenses []models.ExpenseResponse) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="expenses.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for _, e := range expenses {
		_ = w.Write(exportRow(e))
	}
	w.Flush()
}

func (h *ExportHandler) exportXLSX(c *gin.Context, expenses []models.ExpenseResponse) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Expenses"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for row, e := range expenses {
		for col, value := range exportRow(e) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="expenses.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write spreadsheet"})
	}
}

func exportRow(e models.ExpenseResponse) []string {
	category := ""
	if e.Category != nil {
		category = e.Category.Name
	}
	return []string{
		e.ExpenseDate,
		e.Description,
		category,
		strconv.FormatInt(e.Amount, 10),
		e.PaymentMethod,
		e.CreatedByName,
	}
}

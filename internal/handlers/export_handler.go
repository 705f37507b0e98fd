package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/services"
)

var exportColumns = []string{"ID", "Name", "Description", "Price", "Count", "Category", "Main Image", "Image Count", "Created At"}

type ExportHandler struct {
	svc services.ProductsServiceInterface
}

func NewExportHandler(svc services.ProductsServiceInterface) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportProducts dumps the catalog as a CSV or XLSX file
// @Summary Export products
// @Description Export the full product catalog in the requested format
// @Tags Products
// @Accept json
// @Produce application/octet-stream
// @Param request body models.ExportProductsRequest true "Export options"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /products/export [post]
func (h *ExportHandler) ExportProducts(c *gin.Context) {
	var req models.ExportProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    models.ErrCodeValidation,
				Message: err.Error(),
			},
		})
		return
	}

	if req.Format != "csv" && req.Format != "xlsx" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    models.ErrCodeValidation,
				Message: "Format must be csv or xlsx",
				Field:   "format",
			},
		})
		return
	}

	products, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}

	fileName := fmt.Sprintf("products-%s.%s", time.Now().Format("2006-01-02"), req.Format)

	var data []byte
	var contentType string
	switch req.Format {
	case "csv":
		data, err = buildCSV(products)
		contentType = "text/csv"
	case "xlsx":
		data, err = buildXLSX(products)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, data)
}

func exportRow(p *models.Product) []string {
	return []string{
		p.ID.String(),
		p.Name,
		services.SanitizeDescription(p.Description),
		p.Price,
		fmt.Sprintf("%d", p.Count),
		func() string {
			if p.Category != nil {
				return p.Category.Name
			}
			return ""
		}(),
		p.MainImage(),
		fmt.Sprintf("%d", len(p.Images)),
		p.CreatedAt.Format(time.RFC3339),
	}
}

func buildCSV(products []models.Product) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for i := range products {
		if err := w.Write(exportRow(&products[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildXLSX(products []models.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx := range products {
		for colIdx, val := range exportRow(&products[rowIdx]) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

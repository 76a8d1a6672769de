package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
	"github.com/teagang/dealership/internal/service/dealer"
	"github.com/teagang/dealership/internal/service/reporting"
)

// DealerService is the inventory surface the HTTP layer depends on.
type DealerService interface {
	Dealership() models.Dealership
	Vehicles() []models.Vehicle
	Find(vin int) (models.Vehicle, error)
	ByPrice(min, max decimal.Decimal) []models.Vehicle
	ByMakeModel(makeFilter, modelFilter string) []models.Vehicle
	ByYear(min, max int) []models.Vehicle
	ByColor(color string) []models.Vehicle
	ByMileage(min, max int64) []models.Vehicle
	ByType(vehicleType string) []models.Vehicle
	AddVehicle(ctx context.Context, v models.Vehicle, replace bool) (bool, error)
	RemoveVehicle(ctx context.Context, vin int) error
	LoadStats() models.LoadStats
	Repair(ctx context.Context, records []string) (models.LoadStats, error)
	Quote(vin int, kind models.ContractKind, financed bool) (models.Contract, error)
	Sell(ctx context.Context, req dealer.DealRequest) (models.Contract, error)
	Lease(ctx context.Context, req dealer.DealRequest) (models.Contract, error)
}

// Summarizer produces the inventory summary report.
type Summarizer interface {
	Summary(ctx context.Context) reporting.InventorySummary
}

// InventoryHandler exposes the dealer service over HTTP.
type InventoryHandler struct {
	svc     DealerService
	reports Summarizer
	logger  *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc DealerService, reports Summarizer, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, reports: reports, logger: logger}
}

// ContractResponse is a contract together with its derived amounts.
type ContractResponse struct {
	models.Contract
	ExpectedEndingValue *decimal.Decimal `json:"expected_ending_value,omitempty"`
	LeaseFee            *decimal.Decimal `json:"lease_fee,omitempty"`
	TotalPrice          decimal.Decimal  `json:"total_price"`
	MonthlyPayment      decimal.Decimal  `json:"monthly_payment"`
	Record              string           `json:"record,omitempty"`
}

type repairRequest struct {
	Records []string `json:"records" binding:"required"`
}

// Dealership returns the dealership header.
func (h *InventoryHandler) Dealership(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Dealership())
}

// ListVehicles returns every vehicle in storage order.
func (h *InventoryHandler) ListVehicles(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Vehicles())
}

// GetVehicle returns one vehicle by VIN.
func (h *InventoryHandler) GetVehicle(c *gin.Context) {
	vin, ok := h.vinParam(c)
	if !ok {
		return
	}
	v, err := h.svc.Find(vin)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// SearchByPrice filters on ?min=&max=. A missing bound is open.
func (h *InventoryHandler) SearchByPrice(c *gin.Context) {
	min, err := decimalQuery(c, "min", decimal.Zero)
	if err != nil {
		badRequest(c, "min must be a number")
		return
	}
	max, err := decimalQuery(c, "max", decimal.NewFromInt(math.MaxInt64))
	if err != nil {
		badRequest(c, "max must be a number")
		return
	}
	c.JSON(http.StatusOK, h.svc.ByPrice(min, max))
}

// SearchByMakeModel filters on ?make=&model=.
func (h *InventoryHandler) SearchByMakeModel(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ByMakeModel(c.Query("make"), c.Query("model")))
}

// SearchByYear filters on ?min=&max=.
func (h *InventoryHandler) SearchByYear(c *gin.Context) {
	min, errMin := intQuery(c, "min", math.MinInt)
	max, errMax := intQuery(c, "max", math.MaxInt)
	if errMin != nil || errMax != nil {
		badRequest(c, "min and max must be whole numbers")
		return
	}
	c.JSON(http.StatusOK, h.svc.ByYear(int(min), int(max)))
}

// SearchByColor filters on ?color=.
func (h *InventoryHandler) SearchByColor(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ByColor(c.Query("color")))
}

// SearchByMileage filters on ?min=&max=.
func (h *InventoryHandler) SearchByMileage(c *gin.Context) {
	min, errMin := intQuery(c, "min", 0)
	max, errMax := intQuery(c, "max", math.MaxInt64)
	if errMin != nil || errMax != nil {
		badRequest(c, "min and max must be whole numbers")
		return
	}
	c.JSON(http.StatusOK, h.svc.ByMileage(min, max))
}

// SearchByType filters on ?type=.
func (h *InventoryHandler) SearchByType(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ByType(c.Query("type")))
}

// AddVehicle stores the posted vehicle. ?replace=true overwrites a VIN collision.
func (h *InventoryHandler) AddVehicle(c *gin.Context) {
	var v models.Vehicle
	if err := c.ShouldBindJSON(&v); err != nil {
		h.logger.Warn("invalid vehicle payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	replace, _ := strconv.ParseBool(c.DefaultQuery("replace", "false"))
	replaced, err := h.svc.AddVehicle(c.Request.Context(), v, replace)
	if err != nil {
		h.fail(c, err)
		return
	}

	if replaced {
		c.JSON(http.StatusOK, v)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// RemoveVehicle deletes a vehicle by VIN.
func (h *InventoryHandler) RemoveVehicle(c *gin.Context) {
	vin, ok := h.vinParam(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveVehicle(c.Request.Context(), vin); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LoadReport returns the counters of the last load and the pending bad records.
func (h *InventoryHandler) LoadReport(c *gin.Context) {
	stats := h.svc.LoadStats()
	c.JSON(http.StatusOK, gin.H{
		"loaded":      stats.Loaded,
		"skipped":     stats.Skipped,
		"duplicate":   stats.Duplicate,
		"processed":   stats.Processed(),
		"bad_records": nonNil(stats.BadRecords),
	})
}

// Repair submits corrected records for the pending bad ones.
func (h *InventoryHandler) Repair(c *gin.Context) {
	var req repairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	stats, err := h.svc.Repair(c.Request.Context(), req.Records)
	if err != nil {
		h.fail(c, err)
		return
	}
	stats.BadRecords = nonNil(stats.BadRecords)
	c.JSON(http.StatusOK, stats)
}

// Quote prices a sale or lease without recording it.
func (h *InventoryHandler) Quote(c *gin.Context) {
	vin, ok := h.vinParam(c)
	if !ok {
		return
	}
	kind := models.ContractKind(strings.ToUpper(c.DefaultQuery("kind", "sale")))
	financed, _ := strconv.ParseBool(c.DefaultQuery("finance", "false"))

	contract, err := h.svc.Quote(vin, kind, financed)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newContractResponse(contract, false))
}

// CreateSale records a sales contract.
func (h *InventoryHandler) CreateSale(c *gin.Context) {
	h.createContract(c, h.svc.Sell)
}

// CreateLease records a lease contract.
func (h *InventoryHandler) CreateLease(c *gin.Context) {
	h.createContract(c, h.svc.Lease)
}

// Summary returns the inventory summary report.
func (h *InventoryHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.reports.Summary(c.Request.Context()))
}

func (h *InventoryHandler) createContract(c *gin.Context, record func(context.Context, dealer.DealRequest) (models.Contract, error)) {
	var req dealer.DealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid contract payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	contract, err := record(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newContractResponse(contract, true))
}

func (h *InventoryHandler) vinParam(c *gin.Context) (int, bool) {
	vin, err := strconv.Atoi(c.Param("vin"))
	if err != nil {
		badRequest(c, "vin must be an integer")
		return 0, false
	}
	return vin, true
}

func (h *InventoryHandler) fail(c *gin.Context, err error) {
	var formatErr *models.FormatError
	switch {
	case errors.Is(err, models.ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDuplicateVIN):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &formatErr), errors.Is(err, models.ErrInvalidContract):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrStoreUnavailable):
		h.logger.Error("store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func newContractResponse(contract models.Contract, withRecord bool) ContractResponse {
	resp := ContractResponse{
		Contract:       contract,
		TotalPrice:     contract.TotalPrice().Round(2),
		MonthlyPayment: contract.MonthlyPayment().Round(2),
	}
	if contract.Kind == models.ContractLease {
		ending := contract.ExpectedEndingValue().Round(2)
		fee := contract.LeaseFee().Round(2)
		resp.ExpectedEndingValue = &ending
		resp.LeaseFee = &fee
	}
	if withRecord {
		resp.Record = contract.Record()
	}
	return resp
}

func decimalQuery(c *gin.Context, key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	return decimal.NewFromString(raw)
}

func intQuery(c *gin.Context, key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func nonNil(records []string) []string {
	if records == nil {
		return []string{}
	}
	return records
}

package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-settlement/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Lifecycle
	GenerateSettlement(w http.ResponseWriter, r *http.Request)
	GenerateForPeriod(w http.ResponseWriter, r *http.Request)
	ApproveSettlement(w http.ResponseWriter, r *http.Request)
	RejectSettlement(w http.ResponseWriter, r *http.Request)

	// Payment
	PaySettlement(w http.ResponseWriter, r *http.Request)
	PayBatch(w http.ResponseWriter, r *http.Request)

	// Read
	GetSettlement(w http.ResponseWriter, r *http.Request)
	ListSettlements(w http.ResponseWriter, r *http.Request)
	GetPeriodSummary(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

// ========== LIFECYCLE ==========

func (h *payrollHandlerImpl) GenerateSettlement(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.GenerateSettlement(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Settlement generated successfully", result)
}

func (h *payrollHandlerImpl) GenerateForPeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateForPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.GenerateForPeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ApproveSettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Settlement ID is required", nil)
		return
	}

	result, err := h.payrollService.ApproveSettlement(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement approved", result)
}

func (h *payrollHandlerImpl) RejectSettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Settlement ID is required", nil)
		return
	}

	var req payroll.RejectSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.RejectSettlement(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement rejected", result)
}

// ========== PAYMENT ==========

func (h *payrollHandlerImpl) PaySettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Settlement ID is required", nil)
		return
	}

	var req payroll.PayPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.SettlementID = id

	result, err := h.payrollService.PayPeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement paid", result)
}

func (h *payrollHandlerImpl) PayBatch(w http.ResponseWriter, r *http.Request) {
	var req payroll.PayBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.PayBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlements paid", result)
}

// ========== READ ==========

func (h *payrollHandlerImpl) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Settlement ID is required", nil)
		return
	}

	result, err := h.payrollService.GetSettlement(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListSettlements(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := payroll.SettlementFilter{
		Page:  1,
		Limit: 20,
	}

	if pageStr := query.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if monthStr := query.Get("period_month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			response.BadRequest(w, "Invalid period_month", nil)
			return
		}
		filter.PeriodMonth = &month
	}
	if yearStr := query.Get("period_year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "Invalid period_year", nil)
			return
		}
		filter.PeriodYear = &year
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	result, err := h.payrollService.ListSettlements(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *payrollHandlerImpl) GetPeriodSummary(w http.ResponseWriter, r *http.Request) {
	monthStr := r.URL.Query().Get("period_month")
	yearStr := r.URL.Query().Get("period_year")

	if monthStr == "" || yearStr == "" {
		response.BadRequest(w, "period_month and period_year are required", nil)
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		response.BadRequest(w, "Invalid period_month", nil)
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		response.BadRequest(w, "Invalid period_year", nil)
		return
	}

	result, err := h.payrollService.GetPeriodSummary(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

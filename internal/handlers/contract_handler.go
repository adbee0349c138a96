package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vanroute/vanroute-api/internal/middleware"
	"github.com/vanroute/vanroute-api/internal/models"
	"github.com/vanroute/vanroute-api/internal/repository"
	"github.com/vanroute/vanroute-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// @Summary List Contracts
// @Description Get a paginated list of the operator's contracts
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")

	contracts, total, err := h.contractService.List(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, contract := range contracts {
		responses = append(responses, contract.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Contract
// @Description Get a contract with its payment schedule
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.FindByID(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

type ContractRequest struct {
	StudentID     uint            `json:"student_id" binding:"required"`
	PayerID       uint            `json:"payer_id" binding:"required"`
	StartDate     string          `json:"start_date" binding:"required"`
	EndDate       *string         `json:"end_date"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount" binding:"required"`
	DueDay        int             `json:"due_day" binding:"required"`
	ServiceType   string          `json:"service_type" binding:"required"`
	Notes         *string         `json:"notes"`
}

// @Summary Create Contract
// @Description Create a contract and generate its full payment schedule
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body ContractRequest true "Contract Data"
// @Success 201 {object} models.ContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req ContractRequest
	if err := BindNestedOrFlat(c, "contract", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StudentID == 0 || req.PayerID == 0 || req.StartDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aluno, responsável e data de início são obrigatórios"})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data de início deve ter formato YYYY-MM-DD"})
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data final deve ter formato YYYY-MM-DD"})
			return
		}
		endDate = &parsed
	}

	contract := &models.Contract{
		OwnerID:       middleware.GetUserID(c),
		StudentID:     req.StudentID,
		PayerID:       req.PayerID,
		StartDate:     startDate,
		EndDate:       endDate,
		MonthlyAmount: req.MonthlyAmount,
		DueDay:        req.DueDay,
		ServiceType:   req.ServiceType,
		Notes:         req.Notes,
	}

	created, err := h.contractService.Create(c.Request.Context(), contract)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contract": created.ToResponse()})
}

type contractUpdateRequest struct {
	StudentID     *uint            `json:"student_id"`
	PayerID       *uint            `json:"payer_id"`
	EndDate       *string          `json:"end_date"`
	MonthlyAmount *decimal.Decimal `json:"monthly_amount"`
	DueDay        *int             `json:"due_day"`
	Status        *string          `json:"status"`
	ServiceType   *string          `json:"service_type"`
	Notes         *string          `json:"notes"`
}

// @Summary Update Contract
// @Description Partially update a contract; the payment schedule is reconciled when billing terms change
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [patch]
func (h *ContractHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	// Key presence distinguishes "clear the end date" (null sent) from "end
	// date untouched", so read the raw keys before binding.
	keys, err := BodyKeys(c, "contract")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON inválido"})
		return
	}

	var req contractUpdateRequest
	if err := BindNestedOrFlat(c, "contract", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changes := &services.ContractChanges{
		StudentID:     req.StudentID,
		PayerID:       req.PayerID,
		MonthlyAmount: req.MonthlyAmount,
		DueDay:        req.DueDay,
		Status:        req.Status,
		ServiceType:   req.ServiceType,
		Notes:         req.Notes,
		EndDateSet:    keys["end_date"],
	}

	if changes.EndDateSet && req.EndDate != nil && *req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data final deve ter formato YYYY-MM-DD"})
			return
		}
		changes.EndDate = &parsed
	}

	contract, err := h.contractService.Update(c.Request.Context(), middleware.GetUserID(c), uint(id), changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Delete Contract
// @Description Delete a contract and its entire payment schedule
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	if err := h.contractService.Delete(c.Request.Context(), middleware.GetUserID(c), uint(id)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contrato removido"})
}

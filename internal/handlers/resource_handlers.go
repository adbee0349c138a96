package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vanroute/vanroute-api/internal/middleware"
	"github.com/vanroute/vanroute-api/internal/models"
	"github.com/vanroute/vanroute-api/internal/repository"
	"github.com/vanroute/vanroute-api/internal/services"
)

// Fleet registry handlers: schools, drivers, vans, routes, students and
// guardians. All of them are plain tenant-scoped CRUD over the registry
// service, so they share the list/param helpers below.

func listQueryFrom(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	return query
}

func paginationFor(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
	}
}

func idParam(c *gin.Context, name string) uint {
	id, _ := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id)
}

func parseDateField(c *gin.Context, value, label string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": label + " deve ter formato YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}

// Schools

type SchoolHandler struct {
	registry *services.RegistryService
}

func NewSchoolHandler(registry *services.RegistryService) *SchoolHandler {
	return &SchoolHandler{registry: registry}
}

type SchoolRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

func (h *SchoolHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	schools, total, err := h.registry.ListSchools(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schools": schools, "pagination": paginationFor(query, total)})
}

func (h *SchoolHandler) Show(c *gin.Context) {
	school, err := h.registry.FindSchool(c.Request.Context(), middleware.GetUserID(c), idParam(c, "school_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Escola não encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"school": school})
}

func (h *SchoolHandler) Create(c *gin.Context) {
	var req SchoolRequest
	if err := BindNestedOrFlat(c, "school", &req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome da escola é obrigatório"})
		return
	}

	school := &models.School{
		OwnerID: middleware.GetUserID(c),
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if err := h.registry.CreateSchool(c.Request.Context(), school); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"school": school})
}

func (h *SchoolHandler) Update(c *gin.Context) {
	var req SchoolRequest
	if err := BindNestedOrFlat(c, "school", &req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome da escola é obrigatório"})
		return
	}

	ownerID := middleware.GetUserID(c)
	school, err := h.registry.FindSchool(c.Request.Context(), ownerID, idParam(c, "school_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Escola não encontrada"})
		return
	}

	school.Name = req.Name
	school.Address = req.Address
	school.Phone = req.Phone
	if err := h.registry.UpdateSchool(c.Request.Context(), school); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"school": school})
}

func (h *SchoolHandler) Delete(c *gin.Context) {
	if err := h.registry.DeleteSchool(c.Request.Context(), middleware.GetUserID(c), idParam(c, "school_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Escola removida"})
}

// Drivers

type DriverHandler struct {
	registry *services.RegistryService
}

func NewDriverHandler(registry *services.RegistryService) *DriverHandler {
	return &DriverHandler{registry: registry}
}

type DriverRequest struct {
	FullName      string  `json:"full_name" binding:"required"`
	LicenseNumber string  `json:"license_number" binding:"required"`
	LicenseExpiry string  `json:"license_expiry"`
	Phone         *string `json:"phone"`
}

func (h *DriverHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	drivers, total, err := h.registry.ListDrivers(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers, "pagination": paginationFor(query, total)})
}

func (h *DriverHandler) Show(c *gin.Context) {
	driver, err := h.registry.FindDriver(c.Request.Context(), middleware.GetUserID(c), idParam(c, "driver_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Motorista não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

func (h *DriverHandler) Create(c *gin.Context) {
	var req DriverRequest
	if err := BindNestedOrFlat(c, "driver", &req); err != nil || req.FullName == "" || req.LicenseNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome e CNH do motorista são obrigatórios"})
		return
	}

	expiry, ok := parseDateField(c, req.LicenseExpiry, "Validade da CNH")
	if !ok {
		return
	}

	driver := &models.Driver{
		OwnerID:       middleware.GetUserID(c),
		FullName:      req.FullName,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: expiry,
		Phone:         req.Phone,
	}
	if err := h.registry.CreateDriver(c.Request.Context(), driver); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"driver": driver})
}

func (h *DriverHandler) Update(c *gin.Context) {
	var req DriverRequest
	if err := BindNestedOrFlat(c, "driver", &req); err != nil || req.FullName == "" || req.LicenseNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome e CNH do motorista são obrigatórios"})
		return
	}

	ownerID := middleware.GetUserID(c)
	driver, err := h.registry.FindDriver(c.Request.Context(), ownerID, idParam(c, "driver_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Motorista não encontrado"})
		return
	}

	expiry, ok := parseDateField(c, req.LicenseExpiry, "Validade da CNH")
	if !ok {
		return
	}

	driver.FullName = req.FullName
	driver.LicenseNumber = req.LicenseNumber
	driver.LicenseExpiry = expiry
	driver.Phone = req.Phone
	if err := h.registry.UpdateDriver(c.Request.Context(), driver); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

func (h *DriverHandler) Delete(c *gin.Context) {
	if err := h.registry.DeleteDriver(c.Request.Context(), middleware.GetUserID(c), idParam(c, "driver_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Motorista removido"})
}

// Vans

type VanHandler struct {
	registry *services.RegistryService
}

func NewVanHandler(registry *services.RegistryService) *VanHandler {
	return &VanHandler{registry: registry}
}

type VanRequest struct {
	Plate    string  `json:"plate" binding:"required"`
	Model    *string `json:"model"`
	Year     *int    `json:"year"`
	Capacity int     `json:"capacity" binding:"required"`
}

func (h *VanHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	vans, total, err := h.registry.ListVans(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vans": vans, "pagination": paginationFor(query, total)})
}

func (h *VanHandler) Show(c *gin.Context) {
	van, err := h.registry.FindVan(c.Request.Context(), middleware.GetUserID(c), idParam(c, "van_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Van não encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"van": van})
}

func (h *VanHandler) Create(c *gin.Context) {
	var req VanRequest
	if err := BindNestedOrFlat(c, "van", &req); err != nil || req.Plate == "" || req.Capacity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Placa e capacidade da van são obrigatórias"})
		return
	}

	van := &models.Van{
		OwnerID:  middleware.GetUserID(c),
		Plate:    req.Plate,
		Model:    req.Model,
		Year:     req.Year,
		Capacity: req.Capacity,
	}
	if err := h.registry.CreateVan(c.Request.Context(), van); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"van": van})
}

func (h *VanHandler) Update(c *gin.Context) {
	var req VanRequest
	if err := BindNestedOrFlat(c, "van", &req); err != nil || req.Plate == "" || req.Capacity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Placa e capacidade da van são obrigatórias"})
		return
	}

	ownerID := middleware.GetUserID(c)
	van, err := h.registry.FindVan(c.Request.Context(), ownerID, idParam(c, "van_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Van não encontrada"})
		return
	}

	van.Plate = req.Plate
	van.Model = req.Model
	van.Year = req.Year
	van.Capacity = req.Capacity
	if err := h.registry.UpdateVan(c.Request.Context(), van); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"van": van})
}

func (h *VanHandler) Delete(c *gin.Context) {
	if err := h.registry.DeleteVan(c.Request.Context(), middleware.GetUserID(c), idParam(c, "van_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Van removida"})
}

// Routes

type RouteHandler struct {
	registry *services.RegistryService
}

func NewRouteHandler(registry *services.RegistryService) *RouteHandler {
	return &RouteHandler{registry: registry}
}

type RouteRequest struct {
	Name        string  `json:"name" binding:"required"`
	Shift       string  `json:"shift" binding:"required"`
	SchoolID    uint    `json:"school_id" binding:"required"`
	DriverID    uint    `json:"driver_id" binding:"required"`
	VanID       uint    `json:"van_id" binding:"required"`
	Description *string `json:"description"`
}

func validShift(shift string) bool {
	return shift == models.ShiftMorning || shift == models.ShiftAfternoon || shift == models.ShiftFullDay
}

func (h *RouteHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	routes, total, err := h.registry.ListRoutes(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "pagination": paginationFor(query, total)})
}

func (h *RouteHandler) Show(c *gin.Context) {
	route, err := h.registry.FindRoute(c.Request.Context(), middleware.GetUserID(c), idParam(c, "route_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rota não encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

func (h *RouteHandler) Create(c *gin.Context) {
	var req RouteRequest
	if err := BindNestedOrFlat(c, "route", &req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome, turno, escola, motorista e van são obrigatórios"})
		return
	}
	if !validShift(req.Shift) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Turno deve ser morning, afternoon ou full_day"})
		return
	}

	route := &models.Route{
		OwnerID:     middleware.GetUserID(c),
		Name:        req.Name,
		Shift:       req.Shift,
		SchoolID:    req.SchoolID,
		DriverID:    req.DriverID,
		VanID:       req.VanID,
		Description: req.Description,
	}
	if err := h.registry.CreateRoute(c.Request.Context(), route); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

func (h *RouteHandler) Update(c *gin.Context) {
	var req RouteRequest
	if err := BindNestedOrFlat(c, "route", &req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome, turno, escola, motorista e van são obrigatórios"})
		return
	}
	if !validShift(req.Shift) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Turno deve ser morning, afternoon ou full_day"})
		return
	}

	ownerID := middleware.GetUserID(c)
	route, err := h.registry.FindRoute(c.Request.Context(), ownerID, idParam(c, "route_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rota não encontrada"})
		return
	}

	route.Name = req.Name
	route.Shift = req.Shift
	route.SchoolID = req.SchoolID
	route.DriverID = req.DriverID
	route.VanID = req.VanID
	route.Description = req.Description
	if err := h.registry.UpdateRoute(c.Request.Context(), route); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

func (h *RouteHandler) Delete(c *gin.Context) {
	if err := h.registry.DeleteRoute(c.Request.Context(), middleware.GetUserID(c), idParam(c, "route_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rota removida"})
}

type AssignStudentsRequest struct {
	StudentIDs []uint `json:"student_ids" binding:"required"`
}

// AssignStudents replaces the set of students riding the route
func (h *RouteHandler) AssignStudents(c *gin.Context) {
	var req AssignStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lista de alunos é obrigatória"})
		return
	}

	route, err := h.registry.AssignStudents(c.Request.Context(), middleware.GetUserID(c), idParam(c, "route_id"), req.StudentIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// Students

type StudentHandler struct {
	registry *services.RegistryService
}

func NewStudentHandler(registry *services.RegistryService) *StudentHandler {
	return &StudentHandler{registry: registry}
}

type StudentRequest struct {
	FullName            string  `json:"full_name" binding:"required"`
	BirthDate           string  `json:"birth_date"`
	SchoolID            uint    `json:"school_id" binding:"required"`
	PrimaryGuardianID   uint    `json:"primary_guardian_id" binding:"required"`
	SecondaryGuardianID *uint   `json:"secondary_guardian_id"`
	Notes               *string `json:"notes"`
}

func (h *StudentHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	students, total, err := h.registry.ListStudents(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students, "pagination": paginationFor(query, total)})
}

func (h *StudentHandler) Show(c *gin.Context) {
	student, err := h.registry.FindStudent(c.Request.Context(), middleware.GetUserID(c), idParam(c, "student_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aluno não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student})
}

func (h *StudentHandler) Create(c *gin.Context) {
	var req StudentRequest
	if err := BindNestedOrFlat(c, "student", &req); err != nil || req.FullName == "" || req.SchoolID == 0 || req.PrimaryGuardianID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome, escola e responsável principal são obrigatórios"})
		return
	}

	birthDate, ok := parseDateField(c, req.BirthDate, "Data de nascimento")
	if !ok {
		return
	}

	student := &models.Student{
		OwnerID:             middleware.GetUserID(c),
		FullName:            req.FullName,
		BirthDate:           birthDate,
		SchoolID:            req.SchoolID,
		PrimaryGuardianID:   req.PrimaryGuardianID,
		SecondaryGuardianID: req.SecondaryGuardianID,
		Notes:               req.Notes,
	}
	if err := h.registry.CreateStudent(c.Request.Context(), student); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"student": student})
}

func (h *StudentHandler) Update(c *gin.Context) {
	var req StudentRequest
	if err := BindNestedOrFlat(c, "student", &req); err != nil || req.FullName == "" || req.SchoolID == 0 || req.PrimaryGuardianID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome, escola e responsável principal são obrigatórios"})
		return
	}

	ownerID := middleware.GetUserID(c)
	student, err := h.registry.FindStudent(c.Request.Context(), ownerID, idParam(c, "student_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aluno não encontrado"})
		return
	}

	birthDate, ok := parseDateField(c, req.BirthDate, "Data de nascimento")
	if !ok {
		return
	}

	student.FullName = req.FullName
	student.BirthDate = birthDate
	student.SchoolID = req.SchoolID
	student.PrimaryGuardianID = req.PrimaryGuardianID
	student.SecondaryGuardianID = req.SecondaryGuardianID
	student.Notes = req.Notes
	if err := h.registry.UpdateStudent(c.Request.Context(), student); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student})
}

func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.registry.DeleteStudent(c.Request.Context(), middleware.GetUserID(c), idParam(c, "student_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Aluno removido"})
}

// Guardians

type GuardianHandler struct {
	registry *services.RegistryService
}

func NewGuardianHandler(registry *services.RegistryService) *GuardianHandler {
	return &GuardianHandler{registry: registry}
}

type GuardianRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Document *string `json:"document"`
	Email    *string `json:"email"`
	Phone    string  `json:"phone" binding:"required"`
	Address  *string `json:"address"`
}

func (h *GuardianHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	guardians, total, err := h.registry.ListGuardians(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"guardians": guardians, "pagination": paginationFor(query, total)})
}

func (h *GuardianHandler) Show(c *gin.Context) {
	guardian, err := h.registry.FindGuardian(c.Request.Context(), middleware.GetUserID(c), idParam(c, "guardian_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Responsável não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"guardian": guardian})
}

func (h *GuardianHandler) Create(c *gin.Context) {
	var req GuardianRequest
	if err := BindNestedOrFlat(c, "guardian", &req); err != nil || req.FullName == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome e telefone do responsável são obrigatórios"})
		return
	}

	guardian := &models.Guardian{
		OwnerID:  middleware.GetUserID(c),
		FullName: req.FullName,
		Document: req.Document,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if err := h.registry.CreateGuardian(c.Request.Context(), guardian); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"guardian": guardian})
}

func (h *GuardianHandler) Update(c *gin.Context) {
	var req GuardianRequest
	if err := BindNestedOrFlat(c, "guardian", &req); err != nil || req.FullName == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome e telefone do responsável são obrigatórios"})
		return
	}

	ownerID := middleware.GetUserID(c)
	guardian, err := h.registry.FindGuardian(c.Request.Context(), ownerID, idParam(c, "guardian_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Responsável não encontrado"})
		return
	}

	guardian.FullName = req.FullName
	guardian.Document = req.Document
	guardian.Email = req.Email
	guardian.Phone = req.Phone
	guardian.Address = req.Address
	if err := h.registry.UpdateGuardian(c.Request.Context(), guardian); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guardian": guardian})
}

func (h *GuardianHandler) Delete(c *gin.Context) {
	if err := h.registry.DeleteGuardian(c.Request.Context(), middleware.GetUserID(c), idParam(c, "guardian_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Responsável removido"})
}

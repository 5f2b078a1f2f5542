package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCategoryService struct {
	deleteErr error
	audience  string
}

var _ service.CategoryService = (*stubCategoryService)(nil)

func (s *stubCategoryService) Create(_ context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	return &dto.CategoryResponse{ID: uuid.New(), Name: req.Name, Slug: "resinas"}, nil
}
func (s *stubCategoryService) List(_ context.Context, audience string) ([]dto.CategoryResponse, error) {
	s.audience = audience
	return []dto.CategoryResponse{{Name: "Resinas", Slug: "resinas", ProductCount: 3}}, nil
}
func (s *stubCategoryService) GetBySlug(_ context.Context, slug string) (*dto.CategoryResponse, error) {
	if slug != "resinas" {
		return nil, &service.NotFoundError{Resource: "Categoría"}
	}
	return &dto.CategoryResponse{Name: "Resinas", Slug: slug}, nil
}
func (s *stubCategoryService) Update(_ context.Context, id uuid.UUID, _ dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	return &dto.CategoryResponse{ID: id}, nil
}
func (s *stubCategoryService) Delete(context.Context, uuid.UUID) error { return s.deleteErr }

type stubExpenseService struct {
	receipt  *string
	previous *string
	attached string
}

var _ service.ExpenseService = (*stubExpenseService)(nil)

func (s *stubExpenseService) Create(_ context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	return &dto.ExpenseResponse{ID: uuid.New(), Concept: req.Concept, Amount: req.Amount, Date: req.Date}, nil
}
func (s *stubExpenseService) Get(_ context.Context, id uuid.UUID) (*dto.ExpenseResponse, error) {
	return &dto.ExpenseResponse{ID: id}, nil
}
func (s *stubExpenseService) Update(_ context.Context, id uuid.UUID, _ dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	return &dto.ExpenseResponse{ID: id}, nil
}
func (s *stubExpenseService) Delete(context.Context, uuid.UUID) (*string, error) { return s.receipt, nil }
func (s *stubExpenseService) List(context.Context, dto.ExpenseFilter) (*dto.ExpenseListResponse, error) {
	return &dto.ExpenseListResponse{Results: []dto.ExpenseResponse{}}, nil
}
func (s *stubExpenseService) Export(context.Context, dto.ExpenseFilter) ([]dto.ExpenseCSVRow, error) {
	return []dto.ExpenseCSVRow{{ID: "e1", Date: "2026-03-01", Concept: "Courier", Category: "LOGISTICS", Amount: "20.00"}}, nil
}
func (s *stubExpenseService) AttachReceipt(_ context.Context, id uuid.UUID, path string) (*dto.ExpenseResponse, *string, error) {
	s.attached = path
	return &dto.ExpenseResponse{ID: id, Receipt: &path}, s.previous, nil
}

func TestCategories_PublicAndAdmin(t *testing.T) {
	svc := &stubCategoryService{}
	h := NewCategoriesHandler(svc)
	r := gin.New()
	r.GET("/v1/categories", h.List)
	r.GET("/v1/categories/:slug", h.GetBySlug)
	r.POST("/v1/admin/categories", h.Create)
	r.DELETE("/v1/admin/categories/:id", h.Delete)

	w := doJSON(r, http.MethodGet, "/v1/categories?audience=STUDENT", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "STUDENT", svc.audience)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/v1/categories/implantes", nil).Code)

	w = doJSON(r, http.MethodPost, "/v1/admin/categories", map[string]string{"name": "R"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = doJSON(r, http.MethodPost, "/v1/admin/categories", map[string]string{"name": "Resinas", "target_audience": "DENTIST"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = doJSON(r, http.MethodPost, "/v1/admin/categories", map[string]string{"name": "Resinas"})
	assert.Equal(t, http.StatusCreated, w.Code)

	svc.deleteErr = &service.ConstraintViolationError{Detail: "La categoría tiene productos asociados"}
	w = doJSON(r, http.MethodDelete, "/v1/admin/categories/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "La categoría tiene productos asociados", decodeBody(t, w)["detail"])
}

func expensesRouter(svc *stubExpenseService, media *stubMedia) *gin.Engine {
	h := NewExpensesHandler(svc, media)
	r := gin.New()
	r.POST("/v1/finance/expenses", h.Create)
	r.GET("/v1/finance/expenses/export", h.Export)
	r.DELETE("/v1/finance/expenses/:id", h.Delete)
	r.POST("/v1/finance/expenses/:id/receipt", h.UploadReceipt)
	return r
}

func TestExpenses_CreateValidation(t *testing.T) {
	r := expensesRouter(&stubExpenseService{}, &stubMedia{})

	w := doJSON(r, http.MethodPost, "/v1/finance/expenses", map[string]string{"concept": "Courier", "amount": "0", "date": "2026-03-01"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeBody(t, w)["fields"], "amount")

	w = doJSON(r, http.MethodPost, "/v1/finance/expenses", map[string]string{"concept": "Courier", "amount": "20", "date": "01-03-2026"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/finance/expenses", map[string]string{"concept": "Courier", "amount": "20", "date": "2026-03-01", "category": "LOGISTICS"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestExpenses_DeleteRemovesReceipt(t *testing.T) {
	receipt := "receipts/abc.pdf"
	media := &stubMedia{}
	w := doJSON(expensesRouter(&stubExpenseService{receipt: &receipt}, media), http.MethodDelete, "/v1/finance/expenses/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{receipt}, media.deleted)
}

func TestExpenses_UploadReceipt(t *testing.T) {
	prev := "receipts/old.pdf"
	svc := &stubExpenseService{previous: &prev}
	media := &stubMedia{}

	w := httptest.NewRecorder()
	expensesRouter(svc, media).ServeHTTP(w, multipartRequest(t, "/v1/finance/expenses/"+uuid.NewString()+"/receipt", "receipt", "factura.pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "receipts/factura.pdf", svc.attached)
	assert.Equal(t, []string{prev}, media.deleted)
}

func TestExpenses_Export(t *testing.T) {
	w := doJSON(expensesRouter(&stubExpenseService{}, &stubMedia{}), http.MethodGet, "/v1/finance/expenses/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "id,date,concept,category,amount,notes")
	assert.Contains(t, w.Body.String(), "e1,2026-03-01,Courier,LOGISTICS,20.00,")
}

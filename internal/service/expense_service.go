package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/model"
	"github.com/Renatopaccha/Dental-Gest/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseService interface {
	Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*string, error)
	List(ctx context.Context, filter dto.ExpenseFilter) (*dto.ExpenseListResponse, error)
	Export(ctx context.Context, filter dto.ExpenseFilter) ([]dto.ExpenseCSVRow, error)
	// AttachReceipt stores the receipt path and returns the previous one, if any.
	AttachReceipt(ctx context.Context, id uuid.UUID, path string) (*dto.ExpenseResponse, *string, error)
}

type expenseService struct {
	repo     repository.ExpenseRepository
	mediaURL string
}

func NewExpenseService(repo repository.ExpenseRepository, mediaBaseURL string) ExpenseService {
	return &expenseService{repo: repo, mediaURL: mediaBaseURL}
}

func (s *expenseService) Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	date, err := parseCalendarDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, invalid("amount", "El monto debe ser mayor a cero.")
	}
	category := req.Category
	if category == "" {
		category = model.ExpenseOther
	}
	if _, ok := model.ExpenseCategoryLabels[category]; !ok {
		return nil, invalid("category", "Categoría de gasto inválida.")
	}

	e := &model.Expense{
		Concept:  strings.TrimSpace(req.Concept),
		Amount:   req.Amount,
		Category: category,
		Date:     date,
		Notes:    req.Notes,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return s.toResponse(e), nil
}

func (s *expenseService) Get(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Gasto")
	}
	return s.toResponse(e), nil
}

func (s *expenseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Gasto")
	}
	if req.Concept != nil {
		e.Concept = strings.TrimSpace(*req.Concept)
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, invalid("amount", "El monto debe ser mayor a cero.")
		}
		e.Amount = *req.Amount
	}
	if req.Category != nil {
		if _, ok := model.ExpenseCategoryLabels[*req.Category]; !ok {
			return nil, invalid("category", "Categoría de gasto inválida.")
		}
		e.Category = *req.Category
	}
	if req.Date != nil {
		d, err := parseCalendarDate(*req.Date, "date")
		if err != nil {
			return nil, err
		}
		e.Date = d
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.toResponse(e), nil
}

// Delete returns the receipt path so the caller can remove the file.
func (s *expenseService) Delete(ctx context.Context, id uuid.UUID) (*string, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Gasto")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Gasto")
		}
		return nil, err
	}
	return e.Receipt, nil
}

func (s *expenseService) List(ctx context.Context, filter dto.ExpenseFilter) (*dto.ExpenseListResponse, error) {
	q, err := expenseListFilter(filter)
	if err != nil {
		return nil, err
	}
	expenses, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	results := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		results = append(results, *s.toResponse(&expenses[i]))
	}
	return &dto.ExpenseListResponse{Count: total, Page: q.Page, PageSize: q.Limit, Results: results}, nil
}

func (s *expenseService) Export(ctx context.Context, filter dto.ExpenseFilter) ([]dto.ExpenseCSVRow, error) {
	q, err := expenseListFilter(filter)
	if err != nil {
		return nil, err
	}
	q.Page, q.Limit = 1, maxExportRows
	expenses, _, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ExpenseCSVRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, dto.ExpenseCSVRow{
			ID:       e.ID.String(),
			Date:     e.Date.Format(dateOnly),
			Concept:  e.Concept,
			Category: model.ExpenseCategoryLabels[e.Category],
			Amount:   e.Amount.StringFixed(2),
			Notes:    e.Notes,
		})
	}
	return rows, nil
}

func (s *expenseService) AttachReceipt(ctx context.Context, id uuid.UUID, path string) (*dto.ExpenseResponse, *string, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "Gasto")
	}
	previous := e.Receipt
	if err := s.repo.SetReceipt(ctx, id, path); err != nil {
		return nil, nil, notFoundOr(err, "Gasto")
	}
	e.Receipt = &path
	return s.toResponse(e), previous, nil
}

// parseCalendarDate reads a YYYY-MM-DD day as midnight UTC; expenses carry no time of day.
func parseCalendarDate(raw, field string) (time.Time, error) {
	d, err := time.Parse(dateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalid(field, "Formato de fecha inválido (AAAA-MM-DD).")
	}
	return d, nil
}

func expenseListFilter(filter dto.ExpenseFilter) (repository.ExpenseListFilter, error) {
	page, limit := normalizePage(filter.Page, filter.PageSize, 50)
	q := repository.ExpenseListFilter{Category: filter.Category, Page: page, Limit: limit}
	if filter.StartDate != "" {
		from, err := parseCalendarDate(filter.StartDate, "start_date")
		if err != nil {
			return q, err
		}
		q.From = &from
	}
	if filter.EndDate != "" {
		to, err := parseCalendarDate(filter.EndDate, "end_date")
		if err != nil {
			return q, err
		}
		q.To = &to
	}
	return q, nil
}

func (s *expenseService) toResponse(e *model.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:              e.ID,
		Concept:         e.Concept,
		Amount:          e.Amount,
		Category:        e.Category,
		CategoryDisplay: model.ExpenseCategoryLabels[e.Category],
		Date:            e.Date.Format(dateOnly),
		Receipt:         e.Receipt,
		ReceiptURL:      mediaURL(s.mediaURL, e.Receipt),
		Notes:           e.Notes,
		CreatedAt:       formatTime(e.CreatedAt),
	}
}

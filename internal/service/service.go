package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const timestampLayout = "2006-01-02T15:04:05Z07:00"

// ProductCache holds rendered product details keyed by product id.
// Writers invalidate after their transaction commits.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, bool)
	Set(ctx context.Context, id uuid.UUID, p *dto.ProductResponse)
	Invalidate(ctx context.Context, ids ...uuid.UUID)
	Flush(ctx context.Context)
}

// JobDispatcher enqueues background jobs. Implemented by worker.Dispatcher.
type JobDispatcher interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFoundError for resource.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource)
	}
	return err
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalid(field, "Identificador inválido.")
	}
	return id, nil
}

// uniqueSlug slugifies base and appends -2, -3... until exists reports it free.
func uniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	root := slug.Make(base)
	if root == "" {
		return "", invalid("name", "El nombre debe contener letras o números.")
	}
	candidate := root
	for i := 2; i < 100; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", root, i)
	}
	return "", &ConstraintViolationError{Detail: "No se pudo generar un slug único para " + base}
}

// mediaURL joins the public media prefix with a stored relative path.
func mediaURL(base string, path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	u := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(*path, "/")
	return &u
}

// constraintOr turns integrity violations into ConstraintViolationError with detail.
func constraintOr(err error, detail string) error {
	if repository.IsForeignKeyViolation(err) || repository.IsUniqueViolation(err) {
		return &ConstraintViolationError{Detail: detail}
	}
	return err
}

func formatTime(t time.Time) string { return t.Format(timestampLayout) }

func normalizePage(page, size, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = def
	}
	return page, size
}

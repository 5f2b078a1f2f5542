package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Renatopaccha/Dental-Gest/internal/apierror"
	"github.com/Renatopaccha/Dental-Gest/internal/infra"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report json / form names in validation envelopes instead of Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es obligatorio."
	case "min", "gte":
		return "Debe ser al menos " + fe.Param() + "."
	case "max", "lte":
		return "Debe ser como máximo " + fe.Param() + "."
	case "gt":
		return "Debe ser mayor a " + fe.Param() + "."
	case "ne":
		return "No puede ser " + fe.Param() + "."
	case "oneof":
		return "Valor no permitido. Opciones: " + fe.Param() + "."
	case "uuid":
		return "Identificador inválido."
	case "email":
		return "Correo electrónico inválido."
	case "datetime":
		return "Formato de fecha inválido, use " + fe.Param() + "."
	}
	return fe.Tag()
}

// respondError maps service errors to HTTP status codes. Anything unknown is
// attached to the context for ErrorHandler and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var (
		nf  *service.NotFoundError
		ve  *service.ValidationError
		ise *service.InsufficientStockError
		cv  *service.ConstraintViolationError
	)
	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, apierror.New(nf.Error()))
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(ve.Fields))
	case errors.As(err, &ise):
		c.JSON(http.StatusConflict, apierror.NewInsufficientStock(ise.Error(), ise.Available, ise.Requested))
	case errors.As(err, &cv):
		c.JSON(http.StatusConflict, apierror.New(cv.Detail))
	case errors.Is(err, infra.ErrUnsupportedMedia), errors.Is(err, infra.ErrMediaTooLarge):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"file": err.Error()}))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

// parseUUIDParam reads a UUID path parameter, answering 404 when malformed so
// that /products/abc behaves like an unknown id.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
		return uuid.Nil, false
	}
	return id, true
}

// parseDecimalQuery parses an optional decimal query parameter.
func parseDecimalQuery(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{name: "Debe ser un número."}))
		return nil, false
	}
	return &d, true
}

// pageLinks builds absolute next / previous URLs for a page of count items.
func pageLinks(c *gin.Context, page, size int, count int64) (next, previous *string) {
	if size <= 0 {
		return nil, nil
	}
	link := func(p int) *string {
		q := c.Request.URL.Query()
		if p == 1 {
			q.Del("page")
		} else {
			q.Set("page", strconv.Itoa(p))
		}
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
			scheme = fwd
		}
		u := fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)
		if enc := q.Encode(); enc != "" {
			u += "?" + enc
		}
		return &u
	}
	if int64(page*size) < count {
		next = link(page + 1)
	}
	if page > 1 {
		previous = link(page - 1)
	}
	return next, previous
}

package controller

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/dto"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/auth"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// decimal.Decimal se valida como número para que gt=0 y min funcionen
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// Los errores por campo usan el nombre JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate lee el JSON y aplica las reglas de validación.
// Si devuelve false la respuesta ya fue escrita.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    "INVALID_JSON",
			Kind:    string(domain.KindValidation),
			Message: "JSON inválido",
			Details: err.Error(),
		})
		return false
	}
	return validateRequest(c, req)
}

// bindOptional acepta un cuerpo vacío
func bindOptional(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return validateRequest(c, req)
	}
	return bindAndValidate(c, req)
}

func validateRequest(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("INVALID_REQUEST", string(domain.KindValidation), err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:]] = fe.Tag()
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationResponse(fields))
	return false
}

// respondError traduce un error al status HTTP según su tipo.
// Los errores no clasificados se registran y se responden sin detalle.
func respondError(c *gin.Context, log logger.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindInternal {
		log.Error("error interno",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("INTERNAL", string(domain.KindInternal), "error interno del servidor"))
		return
	}

	status := statusFor(de.Kind)
	if status >= http.StatusInternalServerError {
		log.Error("error de dependencia", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, dto.NewErrorResponse(de.Code, string(de.Kind), de.Message))
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindStateConflict:
		return http.StatusConflict
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindDependencyMissing:
		return http.StatusFailedDependency
	default:
		return http.StatusInternalServerError
	}
}

// actorFrom arma el actor con las claims que dejó el middleware JWT
func actorFrom(c *gin.Context) service.Actor {
	id, _, role := auth.GetCurrentUser(c)
	return service.Actor{ID: id, Role: user.Role(role)}
}

// queryBool lee un booleano opcional de la query
func queryBool(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidation("INVALID_QUERY", key+" debe ser true o false")
	}
	return &v, nil
}

// requireQuery devuelve el parámetro o un error de validación si falta
func requireQuery(c *gin.Context, key string) (string, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return "", domain.NewValidation("MISSING_"+strings.ToUpper(key), key+" es obligatorio")
	}
	return v, nil
}

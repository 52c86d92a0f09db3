package handler

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
)

// Gin context keys set by the auth middleware
const (
	CtxUserID      = "user_id"
	CtxUsername    = "username"
	CtxOutletID    = "outlet_id"
	CtxRoles       = "user_roles"
	CtxPermissions = "user_permissions"
)

const dateLayout = "2006-01-02"

// Validation errors name fields by their json tag
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) uuid.UUID {
	userID, _ := c.Get(CtxUserID)
	id, _ := userID.(uuid.UUID)
	return id
}

// GetOutletID returns the outlet the caller is bound to, if any
func GetOutletID(c *gin.Context) *uuid.UUID {
	val, exists := c.Get(CtxOutletID)
	if !exists {
		return nil
	}
	id, ok := val.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return nil
	}
	return &id
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	roles, _ := c.Get(CtxRoles)
	list, _ := roles.([]string)
	return list
}

// GetUserPermissions extracts the user permissions from the Gin context
func GetUserPermissions(c *gin.Context) []string {
	permissions, _ := c.Get(CtxPermissions)
	list, _ := permissions.([]string)
	return list
}

// IsAdmin reports whether the caller holds an admin role
func IsAdmin(c *gin.Context) bool {
	for _, role := range GetUserRoles(c) {
		if enum.IsAdminRole(role) {
			return true
		}
	}
	return false
}

// bindJSON decodes the body into req. Validation failures become 422 field
// errors keyed by the json name; malformed bodies become 400.
func bindJSON(c *gin.Context, req interface{}) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   jsonPath(fe.Namespace()),
				Message: validationMessage(fe),
			})
		}
		return apperror.NewValidationError(fields)
	}
	return apperror.NewBadRequestError("Invalid request body: " + err.Error())
}

// jsonPath turns "CreateBillRequest.items[0].item_id" into "items[0].item_id".
// Request struct names, including embedded ones, are dropped.
func jsonPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	out := parts[:0]
	for _, p := range parts {
		if strings.HasSuffix(p, "Request") {
			continue
		}
		out = append(out, snakeCase(p))
	}
	return strings.Join(out, ".")
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] != '[' && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + fe.Param()
	case "max":
		return "Must be at most " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be " + fe.Param() + " or more"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "email":
		return "Must be a valid email address"
	case "eqfield":
		return "Must match " + snakeCase(fe.Param())
	case "dive":
		return "Invalid entry"
	}
	return "Invalid value"
}

// paramUUID parses a UUID path parameter
func paramUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := utils.ParseUUID(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("Invalid " + name + " format")
	}
	return id, nil
}

// queryUUID parses an optional UUID query parameter
func queryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	id, err := utils.ParseOptionalUUID(c.Query(name))
	if err != nil {
		return nil, apperror.NewFieldError(name, "Invalid ID")
	}
	return id, nil
}

// queryTime parses an optional RFC3339 timestamp or YYYY-MM-DD date. A bare
// date used as an upper bound covers the whole day.
func queryTime(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, apperror.NewFieldError(name, "Must be a date (YYYY-MM-DD) or RFC3339 timestamp")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

// paginationParams reads page and per_page
func paginationParams(c *gin.Context) *pagination.PaginationParams {
	return pagination.Parse(c.Query("page"), c.Query("per_page"))
}

// scopedOutlet returns the outlet a request acts on: the caller's bound
// outlet, otherwise the outlet_id query parameter.
func scopedOutlet(c *gin.Context) (*uuid.UUID, error) {
	if id := GetOutletID(c); id != nil && !IsAdmin(c) {
		return id, nil
	}
	id, err := queryUUID(c, "outlet_id")
	if err != nil {
		return nil, err
	}
	if id == nil {
		return GetOutletID(c), nil
	}
	return id, nil
}

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type lineRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Qty    int    `json:"qty" binding:"gt=0"`
}

type orderRequest struct {
	TableNo string        `json:"table_no" binding:"max=5"`
	Lines   []lineRequest `json:"lines" binding:"required,min=1,dive"`
}

func testContext(method, target, body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func asAppError(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "got %T: %v", err, err)
	return appErr
}

func TestJSONPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"CreateBillRequest.items[0].item_id", "items[0].item_id"},
		{"SettleRequest.settlements[1].amount", "settlements[1].amount"},
		{"UpdateUserRequest.CreateUserRequest.full_name", "full_name"},
		{"orderRequest.TableNo", "table_no"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, jsonPath(tt.in), tt.in)
	}
}

func TestBindJSONReportsNestedFields(t *testing.T) {
	c := testContext(http.MethodPost, "/", `{"table_no":"123456","lines":[{"item_id":"a","qty":1},{"qty":0}]}`)

	var req orderRequest
	err := bindJSON(c, &req)
	appErr := asAppError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)

	fields := map[string]string{}
	for _, fe := range appErr.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "Must be at most 5", fields["table_no"])
	assert.Equal(t, "This field is required", fields["lines[1].item_id"])
	assert.Equal(t, "Must be greater than 0", fields["lines[1].qty"])
}

func TestBindJSONMalformedBody(t *testing.T) {
	c := testContext(http.MethodPost, "/", `{"lines":`)

	var req orderRequest
	appErr := asAppError(t, bindJSON(c, &req))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestParamAndQueryUUID(t *testing.T) {
	id := uuid.New()
	c := testContext(http.MethodGet, "/?table_id="+id.String()+"&user_id=nope", "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}, {Key: "bad", Value: "42"}}

	got, err := paramUUID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = paramUUID(c, "bad")
	assert.Equal(t, http.StatusBadRequest, asAppError(t, err).Code)

	table, err := queryUUID(c, "table_id")
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Equal(t, id, *table)

	missing, err := queryUUID(c, "department_id")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = queryUUID(c, "user_id")
	assert.Equal(t, http.StatusUnprocessableEntity, asAppError(t, err).Code)
}

func TestQueryTime(t *testing.T) {
	c := testContext(http.MethodGet, "/?from=2026-03-01&to=2026-03-01&at=2026-03-01T10:30:00Z&bad=March", "")

	from, err := queryTime(c, "from", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), *from)

	to, err := queryTime(c, "to", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local).Add(-time.Nanosecond), *to)

	at, err := queryTime(c, "at", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), at.UTC())

	none, err := queryTime(c, "until", false)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = queryTime(c, "bad", false)
	assert.Error(t, err)
}

func TestPaginationParams(t *testing.T) {
	c := testContext(http.MethodGet, "/?page=3&per_page=500", "")
	params := paginationParams(c)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 100, params.PerPage)

	c = testContext(http.MethodGet, "/?page=x", "")
	params = paginationParams(c)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 15, params.PerPage)
}

func TestScopedOutlet(t *testing.T) {
	bound := uuid.New()
	other := uuid.New()

	t.Run("bound staff ignore the query", func(t *testing.T) {
		c := testContext(http.MethodGet, "/?outlet_id="+other.String(), "")
		c.Set(CtxOutletID, bound)
		c.Set(CtxRoles, []string{"cashier"})

		id, err := scopedOutlet(c)
		require.NoError(t, err)
		assert.Equal(t, bound, *id)
	})

	t.Run("admins pick by query", func(t *testing.T) {
		c := testContext(http.MethodGet, "/?outlet_id="+other.String(), "")
		c.Set(CtxOutletID, bound)
		c.Set(CtxRoles, []string{enum.RoleAdmin})

		id, err := scopedOutlet(c)
		require.NoError(t, err)
		assert.Equal(t, other, *id)
	})

	t.Run("admins fall back to the selected outlet", func(t *testing.T) {
		c := testContext(http.MethodGet, "/", "")
		c.Set(CtxOutletID, bound)
		c.Set(CtxRoles, []string{enum.RoleAdmin})

		id, err := scopedOutlet(c)
		require.NoError(t, err)
		assert.Equal(t, bound, *id)
	})

	t.Run("nothing selected", func(t *testing.T) {
		c := testContext(http.MethodGet, "/", "")
		c.Set(CtxRoles, []string{enum.RoleAdmin})

		id, err := scopedOutlet(c)
		require.NoError(t, err)
		assert.Nil(t, id)
	})
}

func TestContextAccessors(t *testing.T) {
	c := testContext(http.MethodGet, "/", "")
	assert.Equal(t, uuid.Nil, GetUserID(c))
	assert.Nil(t, GetOutletID(c))
	assert.False(t, IsAdmin(c))

	userID := uuid.New()
	c.Set(CtxUserID, userID)
	c.Set(CtxOutletID, uuid.Nil)
	c.Set(CtxRoles, []string{"captain"})
	c.Set(CtxPermissions, []string{enum.PermPunchKOT})

	assert.Equal(t, userID, GetUserID(c))
	assert.Nil(t, GetOutletID(c))
	assert.Equal(t, []string{"captain"}, GetUserRoles(c))
	assert.Equal(t, []string{enum.PermPunchKOT}, GetUserPermissions(c))
	assert.False(t, IsAdmin(c))
}

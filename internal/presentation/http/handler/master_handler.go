package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
)

// reserved query keys that are not filters
var listKeys = map[string]bool{"page": true, "per_page": true, "search": true}

// MasterHandler serves list/get/create/update/delete for one master entity
type MasterHandler[T any, PT interface {
	*T
	entity.Record
}] struct {
	svc *service.MasterService[T, PT]
}

// NewMasterHandler creates the CRUD handler of a master-data service
func NewMasterHandler[T any, PT interface {
	*T
	entity.Record
}](svc *service.MasterService[T, PT]) *MasterHandler[T, PT] {
	return &MasterHandler[T, PT]{svc: svc}
}

// List returns a page of records. Query keys other than page, per_page and
// search are passed to the service as filters.
func (h *MasterHandler[T, PT]) List(c *gin.Context) {
	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if listKeys[key] || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	result, err := h.svc.List(c.Request.Context(), service.MasterQuery{
		Params:  paginationParams(c),
		Search:  c.Query("search"),
		Filters: filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, h.svc.Resource()+" list retrieved", result)
}

// Get returns one record
func (h *MasterHandler[T, PT]) Get(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.svc.Resource()+" retrieved", record)
}

// Create binds the body onto a defaulted record and stores it
func (h *MasterHandler[T, PT]) Create(c *gin.Context) {
	record := h.svc.New()
	if err := bindJSON(c, record); err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), record)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, h.svc.Resource()+" created", created)
}

// Update binds the body over the stored record, so omitted fields keep
// their values
func (h *MasterHandler[T, PT]) Update(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, func(record *T) error {
		return bindJSON(c, record)
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.svc.Resource()+" updated", updated)
}

// Delete removes a record
func (h *MasterHandler[T, PT]) Delete(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.svc.Resource()+" deleted", nil)
}

// Register mounts the five routes under group
func (h *MasterHandler[T, PT]) Register(group *gin.RouterGroup, write ...gin.HandlerFunc) {
	with := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), fn)
	}
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", with(h.Create)...)
	group.PUT("/:id", with(h.Update)...)
	group.DELETE("/:id", with(h.Delete)...)
}

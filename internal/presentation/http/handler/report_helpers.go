package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sendWorkbook renders the workbook into memory first so a failure can
// still be reported as JSON
func sendWorkbook(c *gin.Context, filename string, write func(buf *bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// settlementFilter reads the outlet, cashier, payment mode and period filters
func settlementFilter(c *gin.Context) (repository.SettlementFilter, error) {
	filter := repository.SettlementFilter{
		Params:      paginationParams(c),
		PaymentMode: c.Query("payment_mode"),
	}
	var err error
	if filter.OutletID, err = scopedOutlet(c); err != nil {
		return filter, err
	}
	if filter.UserID, err = queryUUID(c, "user_id"); err != nil {
		return filter, err
	}
	if filter.From, err = queryTime(c, "from", false); err != nil {
		return filter, err
	}
	if filter.To, err = queryTime(c, "to", true); err != nil {
		return filter, err
	}
	return filter, nil
}

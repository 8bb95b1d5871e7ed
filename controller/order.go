package controller

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tienda-api/apperr"
	"tienda-api/config"
	"tienda-api/models"
	"tienda-api/orders"
)

// Orders is the checkout service, wired in main.
var Orders *orders.Service

// clampPaging normalizes the page/limit query values once; both the query
// scope and the response meta must use the same numbers.
func clampPaging(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func lastPage(total int64, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}

func Paging(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		page, pageSize = clampPaging(page, pageSize)
		offset := (page - 1) * pageSize
		return db.Offset(offset).Limit(pageSize)
	}
}

// CreateOrder is the public checkout endpoint.
func CreateOrder(c *gin.Context) {
	var req orders.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "cuerpo de la petición inválido"))
		return
	}

	order, err := Orders.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": order})
}

// GetOrders lists orders for the admin dashboard, newest first, optionally
// filtered by estado.
func GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	page, limit = clampPaging(page, limit)
	ctx := c.Request.Context()

	db := config.DB.WithContext(ctx).Model(&models.Order{})
	if estado := models.Estado(c.Query("estado")); estado != "" {
		if !estado.Valid() {
			respondError(c, apperr.Newf(apperr.Validation, "estado inválido: %q", estado))
			return
		}
		db = db.Where("estado = ?", estado)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "no se pudieron contar los pedidos"))
		return
	}

	list := []models.Order{}
	err := db.Preload("Items").
		Order("created_at DESC").
		Scopes(Paging(page, limit)).
		Find(&list).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "no se pudieron consultar los pedidos"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": list,
		"meta": gin.H{
			"total":     total,
			"page":      page,
			"limit":     limit,
			"last_page": lastPage(total, limit),
		},
	})
}

func GetOrderByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperr.New(apperr.Validation, "id de pedido inválido"))
		return
	}
	order, err := Orders.Get(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

// GetOrderByCodigo lets a customer track an order without an account.
func GetOrderByCodigo(c *gin.Context) {
	order, err := Orders.GetByCodigo(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

// UpdateOrderStatus moves an order within the closed estado set and
// re-notifies the customer.
func UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperr.New(apperr.Validation, "id de pedido inválido"))
		return
	}

	var input struct {
		Estado models.Estado `json:"estado"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "cuerpo de la petición inválido"))
		return
	}

	order, err := Orders.SetStatus(c.Request.Context(), uint(id), input.Estado)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

// DeleteOrder removes an order. Stock consumed by the order stays consumed.
func DeleteOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperr.New(apperr.Validation, "id de pedido inválido"))
		return
	}
	if err := Orders.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tienda-api/apperr"
	"tienda-api/config"
	"tienda-api/inventory"
	"tienda-api/models"
	"tienda-api/orders"
	"tienda-api/utils"
)

const (
	AllProductsCacheKey = "all_products"
	ProductCacheTTL     = 5 * time.Minute
)

func withStockTotal(products []models.Product) []models.Product {
	for i := range products {
		products[i].StockTotal = inventory.TotalStock(&products[i])
	}
	return products
}

// GetProducts returns the active catalog, cache first.
func GetProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if config.RedisClient != nil {
		cacheData, err := config.RedisClient.Get(ctx, AllProductsCacheKey).Result()
		if err == nil {
			var products []models.Product
			if json.Unmarshal([]byte(cacheData), &products) == nil {
				c.JSON(http.StatusOK, gin.H{"source": "cache", "data": products})
				return
			}
		}
	}

	var products []models.Product
	err := config.DB.WithContext(ctx).
		Preload("Variants").Preload("Images").
		Where("is_active = ?", true).
		Order("featured DESC, created_at DESC").
		Find(&products).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "no se pudieron consultar los productos"))
		return
	}
	products = withStockTotal(products)

	if config.RedisClient != nil {
		productsJSON, err := json.Marshal(products)
		if err == nil {
			go config.RedisClient.Set(context.Background(), AllProductsCacheKey, productsJSON, ProductCacheTTL)
		}
	}

	c.JSON(http.StatusOK, gin.H{"source": "database", "data": products})
}

// GetProduct resolves one product by numeric id or by slug, cache first.
func GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	key := c.Param("id")
	productCacheKey := "product:" + key

	if config.RedisClient != nil {
		cachedProduct, err := config.RedisClient.Get(ctx, productCacheKey).Result()
		if err == nil {
			var product models.Product
			if json.Unmarshal([]byte(cachedProduct), &product) == nil {
				c.JSON(http.StatusOK, gin.H{"source": "cache", "data": product})
				return
			}
		}
	}

	db := config.DB.WithContext(ctx).Preload("Variants").Preload("Images")
	var product models.Product
	var err error
	if id, convErr := strconv.ParseUint(key, 10, 32); convErr == nil {
		err = db.First(&product, uint(id)).Error
	} else {
		err = db.Where("slug = ?", key).First(&product).Error
	}
	if err != nil {
		respondError(c, apperr.New(apperr.NotFound, "producto no encontrado"))
		return
	}
	product.StockTotal = inventory.TotalStock(&product)

	if config.RedisClient != nil {
		productJSON, err := json.Marshal(product)
		if err == nil {
			go config.RedisClient.Set(context.Background(), productCacheKey, productJSON, ProductCacheTTL)
		}
	}

	c.JSON(http.StatusOK, gin.H{"source": "database", "data": product})
}

// GetCategorias lists the distinct categories in the active catalog.
func GetCategorias(c *gin.Context) {
	var categorias []string
	err := config.DB.WithContext(c.Request.Context()).
		Model(&models.Product{}).
		Where("is_active = ? AND categoria <> ''", true).
		Distinct().
		Order("categoria").
		Pluck("categoria", &categorias).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "no se pudieron consultar las categorías"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categorias})
}

// CreateProduct adds a catalog entry. The slug derives from the name; the
// active flag derives from the stock snapshot.
func CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "cuerpo de la petición inválido"))
		return
	}

	product.Normalize()
	if err := product.Validate(); err != nil {
		respondError(c, err)
		return
	}
	product.Slug = uniqueSlug(c, product.Name)
	product.IsActive = !inventory.ProductExhausted(&product)

	if err := config.DB.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "no se pudo crear el producto"))
		return
	}

	invalidateProductCache(product.Id)
	product.StockTotal = inventory.TotalStock(&product)
	c.JSON(http.StatusCreated, gin.H{"data": product})
}

// UpdateProduct replaces the editable fields, including the whole variant
// and image lists, and recomputes exhaustion.
func UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product
	if err := config.DB.Preload("Variants").Preload("Images").First(&product, "id = ?", id).Error; err != nil {
		respondError(c, apperr.New(apperr.NotFound, "producto no encontrado"))
		return
	}

	var input models.Product
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "cuerpo de la petición inválido"))
		return
	}
	input.Id = product.Id
	input.Slug = product.Slug
	input.Normalize()
	if err := input.Validate(); err != nil {
		respondError(c, err)
		return
	}
	input.IsActive = !inventory.ProductExhausted(&input)

	err := config.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		// Admin edits replace the lists wholesale; only checkout touches
		// individual variant rows.
		if err := tx.Model(&product).Association("Variants").Unscoped().Replace(input.Variants); err != nil {
			return err
		}
		if err := tx.Model(&product).Association("Images").Unscoped().Replace(input.Images); err != nil {
			return err
		}
		return tx.Model(&product).Select("Name", "Description", "Precio", "Categoria",
			"Subcategoria", "TallaTipo", "Featured", "IsActive", "Stock").
			Updates(&input).Error
	})
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "no se pudo actualizar el producto"))
		return
	}

	invalidateProductCache(product.Id)
	input.StockTotal = inventory.TotalStock(&input)
	c.JSON(http.StatusOK, gin.H{"data": input})
}

// DeleteProduct removes the product together with its variants and images.
func DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	res := config.DB.WithContext(c.Request.Context()).
		Select("Variants", "Images").
		Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		respondError(c, apperr.Wrap(res.Error, apperr.Internal, "no se pudo eliminar el producto"))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, apperr.New(apperr.NotFound, "producto no encontrado"))
		return
	}

	if config.RedisClient != nil {
		go config.RedisClient.Del(context.Background(), AllProductsCacheKey, "product:"+id)
	}
	c.Status(http.StatusNoContent)
}

func uniqueSlug(c *gin.Context, name string) string {
	slug := utils.Slugify(name)
	var count int64
	config.DB.WithContext(c.Request.Context()).
		Model(&models.Product{}).
		Where("slug = ?", slug).
		Count(&count)
	if count > 0 {
		slug = slug + "-" + uuid.NewString()[:6]
	}
	return slug
}

func invalidateProductCache(id uint) {
	if config.RedisClient == nil {
		return
	}
	go config.RedisClient.Del(context.Background(), AllProductsCacheKey, fmt.Sprintf("product:%d", id))
}

// productCache lets the checkout flow drop catalog cache entries without
// knowing about Redis or the key layout.
type productCache struct{}

func (productCache) InvalidateProducts(_ context.Context, ids ...uint) {
	for _, id := range ids {
		invalidateProductCache(id)
	}
}

func NewProductCache() orders.CacheInvalidator { return productCache{} }

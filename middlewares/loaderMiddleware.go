package middlewares

import (
	"context"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	productLoader         *dataloader.Loader[int, *models.Product]
	productCategoryLoader *dataloader.Loader[int, *models.ProductCategory]
	customerLoader        *dataloader.Loader[int, *models.Customer]
	discountLoader        *dataloader.Loader[int, *models.Discount]
	orderLoader           *dataloader.Loader[int, *models.Order]
	pageLoader            *dataloader.Loader[int, *models.Page]

	orderItemsLoader    *dataloader.Loader[int, []*models.OrderItem]
	cartItemsLoader     *dataloader.Loader[int, []*models.CartItem]
	pageSectionsLoader  *dataloader.Loader[int, []*models.PageSection]
	shippingRatesLoader *dataloader.Loader[int, []*models.ShippingRate]

	productImageLoader  *dataloader.Loader[int, []*models.Image]
	categoryImageLoader *dataloader.Loader[int, []*models.Image]
	pageImageLoader     *dataloader.Loader[int, []*models.Image]

	allProductLoader         *dataloader.Loader[int, *models.AllProduct]
	allProductCategoryLoader *dataloader.Loader[int, *models.AllProductCategory]
	allDiscountLoader        *dataloader.Loader[int, *models.AllDiscount]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	productReader := &productReader{db: conn}
	productCategoryReader := &productCategoryReader{db: conn}
	customerReader := &customerReader{db: conn}
	discountReader := &discountReader{db: conn}
	orderReader := &orderReader{db: conn}
	pageReader := &pageReader{db: conn}

	orderItemsReader := &orderItemsReader{db: conn}
	cartItemsReader := &cartItemsReader{db: conn}
	pageSectionsReader := &pageSectionsReader{db: conn}
	shippingRatesReader := &shippingRatesReader{db: conn}

	productImageReader := &imageReader{db: conn, referenceType: "products"}
	categoryImageReader := &imageReader{db: conn, referenceType: "product_categories"}
	pageImageReader := &imageReader{db: conn, referenceType: "pages"}

	allProductReader := &allProductReader{db: conn}
	allProductCategoryReader := &allProductCategoryReader{db: conn}
	allDiscountReader := &allDiscountReader{db: conn}

	return &Loaders{
		productLoader:         dataloader.NewBatchedLoader(productReader.getProducts, dataloader.WithWait[int, *models.Product](time.Millisecond)),
		productCategoryLoader: dataloader.NewBatchedLoader(productCategoryReader.getProductCategories, dataloader.WithWait[int, *models.ProductCategory](time.Millisecond)),
		customerLoader:        dataloader.NewBatchedLoader(customerReader.getCustomers, dataloader.WithWait[int, *models.Customer](time.Millisecond)),
		discountLoader:        dataloader.NewBatchedLoader(discountReader.getDiscounts, dataloader.WithWait[int, *models.Discount](time.Millisecond)),
		orderLoader:           dataloader.NewBatchedLoader(orderReader.getOrders, dataloader.WithWait[int, *models.Order](time.Millisecond)),
		pageLoader:            dataloader.NewBatchedLoader(pageReader.getPages, dataloader.WithWait[int, *models.Page](time.Millisecond)),

		orderItemsLoader:    dataloader.NewBatchedLoader(orderItemsReader.GetOrderItems, dataloader.WithWait[int, []*models.OrderItem](time.Millisecond)),
		cartItemsLoader:     dataloader.NewBatchedLoader(cartItemsReader.GetCartItems, dataloader.WithWait[int, []*models.CartItem](time.Millisecond)),
		pageSectionsLoader:  dataloader.NewBatchedLoader(pageSectionsReader.GetPageSections, dataloader.WithWait[int, []*models.PageSection](time.Millisecond)),
		shippingRatesLoader: dataloader.NewBatchedLoader(shippingRatesReader.GetShippingRates, dataloader.WithWait[int, []*models.ShippingRate](time.Millisecond)),

		productImageLoader:  dataloader.NewBatchedLoader(productImageReader.GetImages, dataloader.WithWait[int, []*models.Image](time.Millisecond)),
		categoryImageLoader: dataloader.NewBatchedLoader(categoryImageReader.GetImages, dataloader.WithWait[int, []*models.Image](time.Millisecond)),
		pageImageLoader:     dataloader.NewBatchedLoader(pageImageReader.GetImages, dataloader.WithWait[int, []*models.Image](time.Millisecond)),

		allProductLoader:         dataloader.NewBatchedLoader(allProductReader.getAllProducts, dataloader.WithWait[int, *models.AllProduct](time.Millisecond)),
		allProductCategoryLoader: dataloader.NewBatchedLoader(allProductCategoryReader.getAllProductCategories, dataloader.WithWait[int, *models.AllProductCategory](time.Millisecond)),
		allDiscountLoader:        dataloader.NewBatchedLoader(allDiscountReader.getAllDiscounts, dataloader.WithWait[int, *models.AllDiscount](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns results from db into dataloader results
// (T must be a struct)
func generateLoaderResults[T models.Data](results []T, ids []int) []*dataloader.Result[*T] {
	resultMap := make(map[int]T)
	var resultZero T
	resultMap[0] = resultZero.GetDefault(0).(T)
	for _, result := range results {
		resultMap[result.GetId()] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		data := resultMap[id]
		if reflect.ValueOf(data).IsZero() {
			data = data.GetDefault(id).(T)
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: &data})
	}
	return loaderResults
}

// T must be struct
// each id has many related results
func generateLoaderArrayResults[T models.RelatedData](results []T, referenceIds []int) (loaderResults []*dataloader.Result[[]*T]) {
	resultMap := make(map[int][]*T)
	for _, result := range results {
		// creating a new variable every turn, to avoid pointing to the address of result
		copy := result
		resultMap[result.GetReferenceId()] = append(resultMap[result.GetReferenceId()], &copy)
	}
	for _, id := range referenceIds {
		resultArray := resultMap[id]
		loaderResults = append(loaderResults, &dataloader.Result[[]*T]{Data: resultArray})
	}
	return loaderResults
}

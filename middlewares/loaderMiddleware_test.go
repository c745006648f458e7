package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/storefront_backend/models"
)

func TestGenerateLoaderResults(t *testing.T) {
	results := []models.Product{
		{ID: 2, Name: "Green Tea"},
		{ID: 5, Name: "Black Tea"},
	}
	got := generateLoaderResults(results, []int{5, 2, 9})

	if len(got) != 3 {
		t.Fatalf("result count = %d, want 3", len(got))
	}
	if (*got[0].Data).Name != "Black Tea" {
		t.Errorf("got[0] = %q, want Black Tea", (*got[0].Data).Name)
	}
	if (*got[1].Data).Name != "Green Tea" {
		t.Errorf("got[1] = %q, want Green Tea", (*got[1].Data).Name)
	}
	// missing row falls back to a draft placeholder carrying the id
	missing := *got[2].Data
	if missing.ID != 9 || missing.Status != models.ProductStatusDraft {
		t.Errorf("missing row = %+v, want draft placeholder with id 9", missing)
	}
}

func TestGenerateLoaderArrayResults(t *testing.T) {
	results := []models.CartItem{
		{ID: 1, CartId: 10, ProductName: "Green Tea"},
		{ID: 2, CartId: 10, ProductName: "Black Tea"},
		{ID: 3, CartId: 30, ProductName: "Oolong"},
	}
	got := generateLoaderArrayResults(results, []int{10, 20, 30})

	if len(got) != 3 {
		t.Fatalf("result count = %d, want 3", len(got))
	}
	if len(got[0].Data) != 2 {
		t.Errorf("cart 10 items = %d, want 2", len(got[0].Data))
	}
	if len(got[1].Data) != 0 {
		t.Errorf("cart 20 items = %d, want 0", len(got[1].Data))
	}
	if len(got[2].Data) != 1 || got[2].Data[0].ProductName != "Oolong" {
		t.Errorf("cart 30 items = %+v, want only Oolong", got[2].Data)
	}
}

func TestLoaderMiddlewareInjectsLoaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoaderMiddleware())

	var got *Loaders
	router.GET("/", func(c *gin.Context) {
		got = For(c.Request.Context())
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil {
		t.Fatal("loaders missing from request context")
	}
	if got.productLoader == nil || got.cartItemsLoader == nil || got.shippingRatesLoader == nil {
		t.Error("loaders not initialized")
	}
	if got.imageLoaderFor("products") != got.productImageLoader {
		t.Error("image loader lookup returned wrong loader")
	}
}

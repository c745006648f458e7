package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

func TestCheckoutFlowClosesCartAndDrainsStock(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "storefront_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	store, err := models.CreateStore(ctx, &models.NewStore{
		Name:  "Checkout Co",
		Email: "owner@checkout.test",
	})
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	storeID := store.ID.String()
	ctx = utils.SetStoreIdInContext(ctx, storeID)
	ctx = utils.SetIsAdminInContext(ctx, false)
	ctx = utils.SetSkipTenantScopeInContext(ctx, false)

	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:          "Green Tea",
		Sku:           "TEA-001",
		Price:         decimal.NewFromInt(25),
		StockQuantity: 10,
		TrackStock:    utils.NewTrue(),
		Status:        "active",
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	cart, err := models.GetOrCreateCart(ctx, storeID)
	if err != nil {
		t.Fatalf("GetOrCreateCart: %v", err)
	}
	ctx = utils.SetCartTokenInContext(ctx, cart.Token)

	cart, err = models.AddCartItem(ctx, storeID, cart.Token, &models.NewCartItem{
		ProductId: product.ID,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}
	if !cart.SubTotal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("cart subtotal = %s, want 50", cart.SubTotal)
	}

	// the default worldwide zone seeded at store creation quotes a free rate
	options, err := models.EstimateShippingOptions(ctx, storeID, "MM", cart.SubTotal)
	if err != nil {
		t.Fatalf("EstimateShippingOptions: %v", err)
	}
	if len(options) == 0 {
		t.Fatal("expected at least one shipping option from the default zone")
	}

	order, err := models.CheckoutCart(ctx, storeID, cart.Token, &models.CheckoutInput{
		Email:           "shopper@example.com",
		CustomerName:    "First Shopper",
		ShippingCountry: "MM",
		ShippingAddress: "12 Main Street",
		ShippingRateId:  options[0].RateId,
	})
	if err != nil {
		t.Fatalf("CheckoutCart: %v", err)
	}

	if order.Status != models.OrderStatusPending {
		t.Errorf("order status = %s, want pending", order.Status)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("order total = %s, want 50", order.TotalAmount)
	}
	if order.OrderNumber == "" {
		t.Error("order number should be assigned")
	}

	db := config.GetDB()

	var after models.Product
	if err := db.WithContext(ctx).Where("store_id = ? AND id = ?", storeID, product.ID).First(&after).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if after.StockQuantity != 8 {
		t.Errorf("stock after checkout = %d, want 8", after.StockQuantity)
	}

	var closed models.Cart
	if err := db.WithContext(ctx).Where("id = ?", cart.ID).First(&closed).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if closed.Status != models.CartStatusCheckedOut {
		t.Errorf("cart status = %s, want checked_out", closed.Status)
	}

	// the order event must be queued for the dispatcher in the same transaction
	outbox, err := models.GetOutboxStatus(ctx, models.ReferenceTypeOrder, order.ID)
	if err != nil {
		t.Fatalf("GetOutboxStatus: %v", err)
	}
	if outbox.EventType != models.EventTypeOrderCreated {
		t.Errorf("outbox event type = %s, want %s", outbox.EventType, models.EventTypeOrderCreated)
	}
	if outbox.Status != models.OutboxStatusPending {
		t.Errorf("outbox status = %s, want %s", outbox.Status, models.OutboxStatusPending)
	}

	// a closed cart cannot be checked out again
	if _, err := models.CheckoutCart(ctx, storeID, cart.Token, &models.CheckoutInput{
		Email:           "shopper@example.com",
		CustomerName:    "First Shopper",
		ShippingCountry: "MM",
		ShippingAddress: "12 Main Street",
		ShippingRateId:  options[0].RateId,
	}); err == nil {
		t.Error("second checkout on the same cart should fail")
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("storefront-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("storefront-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=storefront_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}

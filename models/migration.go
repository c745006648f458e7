package models

import (
	"log"

	"github.com/mmdatafocus/storefront_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Store{}, &User{},
		&Customer{},
		&ProductCategory{}, &Product{}, &Image{},
		&Cart{}, &CartItem{},
		&Discount{}, &VoucherCode{}, &VoucherRedemption{},
		&Order{}, &OrderItem{},
		&ShippingZone{}, &ShippingRate{},
		&Page{}, &PageSection{},
		&ActivityRecord{},
		&StorefrontEventRecord{},
		&IdempotencyKey{},
		&StoreDailySummary{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

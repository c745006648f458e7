package models

import (
	"github.com/mmdatafocus/storefront_backend/utils"
)

type RedisCleaner interface {
	RemoveInstanceRedis() error // remove one
	RemoveAllRedis() error      // remove list & map if exists
}

// remove both item & list + map
func RemoveRedisBoth[T RedisCleaner](obj T) error {
	if err := obj.RemoveInstanceRedis(); err != nil {
		return err
	}
	if err := obj.RemoveAllRedis(); err != nil {
		return err
	}
	return nil
}

func (obj Store) RemoveInstanceRedis() error {
	return nil
}

func (obj Store) RemoveAllRedis() error {
	return utils.RemoveRedisList[Store]("")
}

func (obj Product) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Product](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Product) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[Product](obj.StoreId); err != nil {
		return err
	}
	if err := utils.RemoveRedisMap[AllProduct](obj.StoreId); err != nil {
		return err
	}
	return nil
}

func (obj ProductCategory) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[ProductCategory](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj ProductCategory) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[ProductCategory](obj.StoreId); err != nil {
		return err
	}
	if err := utils.RemoveRedisMap[AllProductCategory](obj.StoreId); err != nil {
		return err
	}
	return nil
}

func (obj Customer) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Customer](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Customer) RemoveAllRedis() error {
	return utils.RemoveRedisList[Customer](obj.StoreId)
}

func (obj Discount) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Discount](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Discount) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[Discount](obj.StoreId); err != nil {
		return err
	}
	if err := utils.RemoveRedisMap[AllDiscount](obj.StoreId); err != nil {
		return err
	}
	return nil
}

func (obj VoucherCode) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[VoucherCode](obj.ID)
}

func (obj VoucherCode) RemoveAllRedis() error {
	return utils.RemoveRedisList[VoucherCode](obj.StoreId)
}

func (obj ShippingZone) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[ShippingZone](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj ShippingZone) RemoveAllRedis() error {
	return utils.RemoveRedisList[ShippingZone](obj.StoreId)
}

func (obj Page) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Page](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Page) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[Page](obj.StoreId); err != nil {
		return err
	}
	if err := utils.RemoveRedisMap[AllPage](obj.StoreId); err != nil {
		return err
	}
	return nil
}

func (obj Order) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Order](obj.ID)
}

func (obj Order) RemoveAllRedis() error {
	return utils.RemoveRedisList[Order](obj.StoreId)
}

package utils

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
)

var mutex sync.Mutex

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

// get type name of struct
func GetType(i interface{}) string {
	return reflect.TypeOf(i).Name()
}

/* Redis */

// check if model has expiration date
func typeHasExpiration(typeName string) bool {
	expirableTypes := map[string]bool{
		"Product":         true,
		"ProductCategory": true,
		"Page":            true,
		"PageSection":     true,
		"ShippingZone":    true,
		"ShippingRate":    true,
		"Discount":        true,
	}
	return expirableTypes[typeName]
}

// store instance, obj should be a pointer
func StoreRedis[T any](obj any, id int) error {
	typeName := GetTypeName[T]()
	key := typeName + ":" + fmt.Sprint(id)

	var duration time.Duration
	if typeHasExpiration(typeName) {
		duration = GetCacheLifespan()
	}
	return config.SetRedisObject(key, &obj, duration)
}

// store object
func StoreRedisList[T any](obj any, storeId string) error {
	var key string
	typeName := GetTypeName[T]()
	if storeId == "" {
		key = GetTypeName[T]() + "List"
	} else {
		key = GetTypeName[T]() + "List:" + storeId
	}

	var duration time.Duration
	if typeHasExpiration(typeName) {
		duration = GetCacheLifespan()
	}
	return config.SetRedisObject(key, &obj, duration)
}

// get from redis
// returns nil if does not exist
func RetrieveRedis[T any](id int) (*T, error) {
	var result *T
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// retrieve a list.
// storeId can be empty
func RetrieveRedisList[T any](storeId string) ([]*T, error) {
	var key string
	if storeId == "" {
		key = GetTypeName[T]() + "List"
	} else {
		key = GetTypeName[T]() + "List:" + storeId
	}

	var result []*T
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// clear list, TypeList:$store_id
func RemoveRedisList[T any](storeId string) error {
	var key string = GetTypeName[T]() + "List:" + storeId
	return config.RemoveRedisKey(key)
}

// remove an instance, Type:$id
func RemoveRedisItem[T any](id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.RemoveRedisKey(key)
}

// clear map, TypeMap:$store_id
func RemoveRedisMap[T any](storeId string) error {
	var key string = GetTypeName[T]() + "Map:" + storeId
	return config.RemoveRedisKey(key)
}

/* cache tags */

// Cache tags group cached keys so a mutation can drop every list/report that
// depends on an entity without knowing the individual keys.
const (
	CacheTagProducts   = "products"
	CacheTagCategories = "categories"
	CacheTagPages      = "pages"
	CacheTagOrders     = "orders"
	CacheTagCustomers  = "customers"
	CacheTagDiscounts  = "discounts"
	CacheTagShipping   = "shipping"
	CacheTagReports    = "reports"
)

func cacheTagKey(storeId string, tag string) string {
	return "tag:" + storeId + ":" + tag
}

// register key under each tag set, then store the object
func StoreRedisObjectTagged(key string, obj any, duration time.Duration, storeId string, tags ...string) error {
	for _, tag := range tags {
		if err := config.AddRedisSet(cacheTagKey(storeId, tag), key); err != nil {
			return err
		}
	}
	return config.SetRedisObject(key, obj, duration)
}

// drop every key registered under the given tags, then the tag sets themselves
func InvalidateCacheTags(storeId string, tags ...string) error {
	for _, tag := range tags {
		tagKey := cacheTagKey(storeId, tag)
		members, err := config.GetRedisSetMembers(tagKey)
		if err != nil {
			return err
		}
		for _, member := range members {
			if err := config.RemoveRedisKey(member); err != nil {
				return err
			}
		}
		if err := config.RemoveRedisKey(tagKey); err != nil {
			return err
		}
	}
	return nil
}

func GetSequence[T any](ctx context.Context, storeId string) (int64, error) {
	// lock
	var model T
	mutex.Lock()
	defer mutex.Unlock()
	cacheKey := storeId + "-" + strings.ToLower(GetTypeName[T]()) + "_seq"
	var seqNo int64
	var err error
	db := config.GetDB()

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// if not found in redis, get from db
		if seqNo == 1 {
			// get max seq no from db
			var dbSeq *int64
			if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
				Where("store_id = ?", storeId).
				Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			// in case db has no records yet
			if dbSeq == nil {
				seqNo = 0
			} else {
				seqNo = *dbSeq
			}
			// set redis
			seqNo++
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		// check if sequence number exists in db
		err = ValidateUnique[T](ctx, storeId, "sequence_no", seqNo, 0)
		if err == nil {
			break
		}
	}
	return seqNo, nil
}

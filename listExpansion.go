package main

import (
	"context"

	"github.com/mmdatafocus/storefront_backend/middlewares"
	"github.com/mmdatafocus/storefront_backend/models"
)

// List endpoints return bare rows; children are attached here through the
// request-scoped dataloaders so each relation costs one query per page.

func firstLoaderErr(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func expandProductEdges(ctx context.Context, edges []*models.ProductsEdge) error {
	if len(edges) == 0 {
		return nil
	}
	ids := make([]int, len(edges))
	categoryIds := make([]int, len(edges))
	for i, edge := range edges {
		ids[i] = edge.Node.ID
		categoryIds[i] = edge.Node.CategoryId
	}

	images, errs := middlewares.GetImagesForAll(ctx, "products", ids)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	categories, errs := middlewares.GetAllProductCategories(ctx, categoryIds)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	for i, edge := range edges {
		edge.Node.Images = images[i]
		if edge.Node.CategoryId > 0 {
			edge.Node.Category = categories[i]
		}
	}
	return nil
}

func expandCategoryEdges(ctx context.Context, edges []*models.ProductCategoriesEdge) error {
	if len(edges) == 0 {
		return nil
	}
	ids := make([]int, len(edges))
	for i, edge := range edges {
		ids[i] = edge.Node.ID
	}
	images, errs := middlewares.GetImagesForAll(ctx, "product_categories", ids)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	for i, edge := range edges {
		edge.Node.Images = images[i]
	}
	return nil
}

func expandOrderEdges(ctx context.Context, edges []*models.OrdersEdge) error {
	if len(edges) == 0 {
		return nil
	}
	ids := make([]int, len(edges))
	customerIds := make([]int, len(edges))
	for i, edge := range edges {
		ids[i] = edge.Node.ID
		customerIds[i] = edge.Node.CustomerId
	}

	details, errs := middlewares.GetOrderItemsForOrders(ctx, ids)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	customers, errs := middlewares.GetCustomers(ctx, customerIds)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	for i, edge := range edges {
		edge.Node.Details = details[i]
		if edge.Node.CustomerId > 0 {
			edge.Node.Customer = customers[i]
		}
	}
	return nil
}

func expandCartEdges(ctx context.Context, edges []*models.CartsEdge) error {
	if len(edges) == 0 {
		return nil
	}
	ids := make([]int, len(edges))
	for i, edge := range edges {
		ids[i] = edge.Node.ID
	}
	details, errs := middlewares.GetCartItemsForCarts(ctx, ids)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	for i, edge := range edges {
		edge.Node.Details = details[i]
	}
	return nil
}

// expandCartItems attaches the live catalog row to each line so the
// storefront can flag price drift or items that went out of stock.
func expandCartItems(ctx context.Context, items []*models.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.ProductId
	}
	products, errs := middlewares.GetAllProducts(ctx, ids)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	for i, item := range items {
		item.Product = products[i]
	}
	return nil
}

func expandPages(ctx context.Context, pages []*models.Page) error {
	if len(pages) == 0 {
		return nil
	}
	ids := make([]int, len(pages))
	for i, page := range pages {
		ids[i] = page.ID
	}

	sections, errs := middlewares.GetPageSectionsForPages(ctx, ids)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	images, errs := middlewares.GetImagesForAll(ctx, "pages", ids)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	for i, page := range pages {
		page.Sections = sections[i]
		page.Images = images[i]
	}
	return nil
}

func expandShippingZones(ctx context.Context, zones []*models.ShippingZone) error {
	if len(zones) == 0 {
		return nil
	}
	ids := make([]int, len(zones))
	for i, zone := range zones {
		ids[i] = zone.ID
	}
	rates, errs := middlewares.GetShippingRatesForZones(ctx, ids)
	if err := firstLoaderErr(errs); err != nil {
		return err
	}
	for i, zone := range zones {
		zone.Rates = rates[i]
	}
	return nil
}

// groupActivityRefs buckets edge indexes by the referenced table so each
// table resolves through its own loader in one batch.
func groupActivityRefs(edges []*models.ActivitiesEdge) map[string][]int {
	byType := make(map[string][]int)
	for i, edge := range edges {
		if edge.Node.ReferenceID > 0 && edge.Node.ReferenceType != "" {
			byType[edge.Node.ReferenceType] = append(byType[edge.Node.ReferenceType], i)
		}
	}
	return byType
}

func expandActivityEdges(ctx context.Context, edges []*models.ActivitiesEdge) error {
	for refType, indexes := range groupActivityRefs(edges) {
		ids := make([]int, len(indexes))
		for i, idx := range indexes {
			ids[i] = edges[idx].Node.ReferenceID
		}

		switch refType {
		case "products":
			results, errs := middlewares.GetProducts(ctx, ids)
			if err := firstLoaderErr(errs); err != nil {
				return err
			}
			for i, idx := range indexes {
				edges[idx].Node.Subject = results[i]
			}
		case "product_categories":
			results, errs := middlewares.GetProductCategories(ctx, ids)
			if err := firstLoaderErr(errs); err != nil {
				return err
			}
			for i, idx := range indexes {
				edges[idx].Node.Subject = results[i]
			}
		case "orders":
			results, errs := middlewares.GetOrders(ctx, ids)
			if err := firstLoaderErr(errs); err != nil {
				return err
			}
			for i, idx := range indexes {
				edges[idx].Node.Subject = results[i]
			}
		case "customers":
			results, errs := middlewares.GetCustomers(ctx, ids)
			if err := firstLoaderErr(errs); err != nil {
				return err
			}
			for i, idx := range indexes {
				edges[idx].Node.Subject = results[i]
			}
		case "discounts":
			results, errs := middlewares.GetDiscounts(ctx, ids)
			if err := firstLoaderErr(errs); err != nil {
				return err
			}
			for i, idx := range indexes {
				edges[idx].Node.Subject = results[i]
			}
		case "pages":
			results, errs := middlewares.GetPages(ctx, ids)
			if err := firstLoaderErr(errs); err != nil {
				return err
			}
			for i, idx := range indexes {
				edges[idx].Node.Subject = results[i]
			}
		}
	}
	return nil
}

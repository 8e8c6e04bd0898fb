package persistence

import (
	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

// SeedProducts is the starter catalog shared by the in-memory store and the
// SQL seeder. IDs are left zero for the store to assign.
func SeedProducts() []catalog.Product {
	return []catalog.Product{
		{
			Name:        "Bamboo Toothbrush",
			Description: "Biodegradable bamboo toothbrush with soft bristles. Eco-friendly alternative to plastic toothbrushes.",
			Price:       shared.MustMoney("5.99"),
			Stock:       100,
		},
		{
			Name:        "Reusable Water Bottle",
			Description: "Stainless steel water bottle that keeps drinks cold for 24 hours and hot for 12 hours.",
			Price:       shared.MustMoney("24.99"),
			Stock:       50,
		},
		{
			Name:        "Organic Cotton Tote Bag",
			Description: "Durable organic cotton tote bag perfect for grocery shopping and everyday use.",
			Price:       shared.MustMoney("12.99"),
			Stock:       75,
		},
		{
			Name:        "Solar Power Bank",
			Description: "Portable solar power bank with 20000mAh capacity. Charge your devices with renewable energy.",
			Price:       shared.MustMoney("39.99"),
			Stock:       30,
		},
		{
			Name:        "Beeswax Food Wraps",
			Description: "Set of 3 reusable beeswax wraps to replace plastic wrap for food storage.",
			Price:       shared.MustMoney("18.99"),
			Stock:       60,
		},
	}
}

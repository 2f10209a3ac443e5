package shop

import "serotonyl.ru/catch-bot/internal/features/catalog"

// RarityPrices — цена лота по редкости.
var RarityPrices = map[string]int64{
	catalog.RarityCommon:    100,
	catalog.RarityMedium:    500,
	catalog.RarityRare:      1000,
	catalog.RarityLegendary: 5000,
	catalog.RarityWinter:    2000,
	catalog.RaritySummer:    2000,
	catalog.RarityRain:      2000,
	catalog.RarityValentine: 3000,
	catalog.RarityChristmas: 3000,
	catalog.RarityHalloween: 3000,
	catalog.RarityXCross:    7500,
	catalog.RarityUnique:    10000,
	catalog.RarityLimited:   15000,
	catalog.RarityCelestial: 25000,
	catalog.RaritySpecial:   50000,
}

// PriceFor возвращает цену редкости или def, если её нет в таблице.
func PriceFor(rarity string, def int64) int64 {
	if p, ok := RarityPrices[rarity]; ok {
		return p
	}
	return def
}

// Package common — pluralize.go содержит вспомогательные функции
// форматирования сумм и чисел.
package common

import "fmt"

// FormatCoinsAmount создаёт строку вида "+100 монет" или "-50 монет".
// Знак «+» или «-» добавляется автоматически.
//
// Примеры:
//
//	FormatCoinsAmount(100)  → "+100 монет"
//	FormatCoinsAmount(-50)  → "-50 монет"
//	FormatCoinsAmount(1)    → "+1 монета"
func FormatCoinsAmount(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%s %s", FormatNumber(amount), PluralizeCoins(amount))
	}
	return fmt.Sprintf("%s %s", FormatNumber(amount), PluralizeCoins(amount))
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		// -math.MinInt64 не помещается в int64
		return "-" + formatUnsigned(uint64(-(n+1))+1)
	}
	return formatUnsigned(uint64(n))
}

func formatUnsigned(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %03d", formatUnsigned(n/1000), n%1000)
}

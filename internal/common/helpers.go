// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с временем.
package common

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// pluralize выбирает форму слова для числа n по правилам русского языка:
//   - n%10==1 И n%100!=11 → one (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → many (0, 5-20, 25-30, 100, ...)
func pluralize(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// PluralizeCoins возвращает правильную форму слова «монета» для числа n.
//
// Примеры:
//
//	PluralizeCoins(1)  → "монета"
//	PluralizeCoins(3)  → "монеты"
//	PluralizeCoins(5)  → "монет"
//	PluralizeCoins(11) → "монет"
//	PluralizeCoins(21) → "монета"
func PluralizeCoins(n int64) string {
	return pluralize(n, "монета", "монеты", "монет")
}

// PluralizeCharacters возвращает правильную форму слова «персонаж».
func PluralizeCharacters(n int) string {
	return pluralize(int64(n), "персонаж", "персонажа", "персонажей")
}

// FormatBalance форматирует баланс в читабельную строку.
// Пример: FormatBalance(150) → "150 монет"
func FormatBalance(balance int64) string {
	return fmt.Sprintf("%s %s", FormatNumber(balance), PluralizeCoins(balance))
}

// LoadLocation загружает часовой пояс из конфига.
// Если не удалось — используем UTC+3 вручную (часовой пояс по умолчанию — Москва).
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC+3", name)
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

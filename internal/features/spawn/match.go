package spawn

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tokens приводит строку к нижнему регистру (с учётом Unicode) и режет по пробелам.
// Caser хранит состояние, поэтому создаётся на каждый вызов.
func tokens(s string) []string {
	return strings.Fields(cases.Lower(language.Und).String(s))
}

// forbiddenGuess — догадки с "()" или "&" отклоняются без попытки поимки.
func forbiddenGuess(guess string) bool {
	return strings.Contains(guess, "()") || strings.Contains(guess, "&")
}

// nameMatches: совпадает набор слов в любом порядке, либо любое слово догадки
// совпадает с любым словом имени.
func nameMatches(name, guess string) bool {
	nt, gt := tokens(name), tokens(guess)
	if len(nt) == 0 || len(gt) == 0 {
		return false
	}

	sn, sg := slices.Clone(nt), slices.Clone(gt)
	slices.Sort(sn)
	slices.Sort(sg)
	if slices.Equal(sn, sg) {
		return true
	}

	for _, g := range gt {
		if slices.Contains(nt, g) {
			return true
		}
	}
	return false
}

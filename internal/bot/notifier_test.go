package bot

import (
	"strings"
	"testing"

	"serotonyl.ru/catch-bot/internal/features/catalog"
	"serotonyl.ru/catch-bot/internal/features/users"
)

var allowedTags = []string{"<b>", "</b>", `<a href="tg://user?id=`, "</a>"}

var allowedEntities = []string{"&lt;", "&gt;", "&amp;", "&#34;", "&#39;", "&quot;"}

// checkHTML проверяет, что Telegram примет текст с parse_mode=HTML:
// каждый '<' открывает известный тег, каждый '&' начинает сущность.
func checkHTML(t *testing.T, name, text string) {
	t.Helper()
	for i := 0; i < len(text); i++ {
		var allowed []string
		switch text[i] {
		case '<':
			allowed = allowedTags
		case '&':
			allowed = allowedEntities
		default:
			continue
		}
		ok := false
		for _, prefix := range allowed {
			if strings.HasPrefix(text[i:], prefix) {
				ok = true
				break
			}
		}
		if !ok {
			t.Errorf("%s: unescaped markup at %d in %q", name, i, text)
			return
		}
	}
}

func TestRenderedTextsAreValidHTML(t *testing.T) {
	hostile := catalog.Item{
		ID:     "1",
		Name:   "<Rem & Ram>",
		Anime:  `Re:Zero "kara"`,
		Rarity: catalog.RarityLegendary,
	}
	player := users.Profile{ID: 42, FirstName: "<script>&"}

	texts := map[string]string{
		"spawn":   spawnCaption(hostile),
		"capture": captureText(player, hostile),
		"spam":    spamText(player),
		"help":    helpText,
	}
	for name, text := range texts {
		checkHTML(t, name, text)
	}

	if !strings.Contains(texts["spawn"], "/guess &lt;имя&gt;") {
		t.Fatalf("spawn caption lost the usage hint: %q", texts["spawn"])
	}
	if !strings.Contains(texts["capture"], "&lt;Rem &amp; Ram&gt;") {
		t.Fatalf("capture text does not escape the name: %q", texts["capture"])
	}
}

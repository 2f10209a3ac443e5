package bot

import (
	"strings"
	"unicode"
)

// Command — разобранная команда: имя в нижнем регистре, аргументы и
// адресат из суффикса "@botname" (пустой, если суффикса нет).
type Command struct {
	Name    string
	Args    []string
	Mention string
}

// CommandParser парсит команды с префиксами "/", "!" и ".".
type CommandParser struct {
	validPrefixes []string
	botUsername   string
}

// NewCommandParser создаёт парсер команд для бота с указанным username.
func NewCommandParser(botUsername string) *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"/", "!", "."},
		botUsername:   botUsername,
	}
}

// Parse разбирает текст на команду и аргументы.
func (p *CommandParser) Parse(text string) (Command, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return Command{}, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 || strings.HasPrefix(text, " ") {
		return Command{}, false
	}

	name, mention, _ := strings.Cut(parts[0], "@")
	if !isCommandName(name) {
		return Command{}, false
	}

	cmd := Command{Name: strings.ToLower(name), Mention: mention}
	if len(parts) > 1 {
		cmd.Args = parts[1:]
	}
	return cmd, true
}

// Addressed — команда без "@" или адресована этому боту.
func (p *CommandParser) Addressed(cmd Command) bool {
	return cmd.Mention == "" || strings.EqualFold(cmd.Mention, p.botUsername)
}

// isCommandName отсекает "...", "!!!" и прочую пунктуацию в обычных сообщениях.
func isCommandName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

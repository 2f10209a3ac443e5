// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки валидации: ввод отклонён, состояние не менялось.
var (
	// ErrInvalidGuess — в догадке запрещённые конструкции ("()" или "&")
	ErrInvalidGuess = errors.New("недопустимые символы в догадке")
	// ErrUnknownRarity — редкость не из списка
	ErrUnknownRarity = errors.New("неизвестная редкость")
	// ErrInvalidListing — пустой или некорректный номер лота
	ErrInvalidListing = errors.New("некорректный номер лота")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
)

// Конфликты: ожидаемый исход, а не сбой.
var (
	// ErrAlreadyClaimed — персонажа уже поймал кто-то другой
	ErrAlreadyClaimed = errors.New("персонаж уже пойман")
	// ErrAlreadyOwned — персонаж уже есть в коллекции
	ErrAlreadyOwned = errors.New("персонаж уже в коллекции")
	// ErrListingGone — лот исчез после обновления магазина
	ErrListingGone = errors.New("лот больше не продаётся")
	// ErrNoActiveSpawn — в чате нет активного персонажа
	ErrNoActiveSpawn = errors.New("нет активного персонажа")
)

// Исчерпание ресурсов.
var (
	// ErrInsufficientBalance — недостаточно монет на счёте
	ErrInsufficientBalance = errors.New("недостаточно монет на счёте")
	// ErrNoItemsAvailable — каталог пуст, спавнить нечего
	ErrNoItemsAvailable = errors.New("каталог персонажей пуст")
)

// Пользователи и доступ.
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrItemNotFound — персонаж не найден в каталоге
	ErrItemNotFound = errors.New("персонаж не найден")
	// ErrNotOwned — персонажа нет в коллекции пользователя
	ErrNotOwned = errors.New("персонажа нет в коллекции")
	// ErrNotAdmin — пользователь не является владельцем бота
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)

// Ошибки хранилища.
var (
	// ErrTransientStore — таймаут или недоступность хранилища; эффект операции неизвестен
	ErrTransientStore = errors.New("хранилище временно недоступно")
	// ErrServiceUnavailable — повтор не помог, сообщаем пользователю
	ErrServiceUnavailable = errors.New("сервис временно недоступен, попробуйте позже")
)

// IsTransient сообщает, можно ли повторить операцию целиком.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientStore)
}

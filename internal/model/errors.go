package model

import "errors"

var (
	// ErrValidation возвращается, если обязательное поле отсутствует или заполнено неверно.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateIdentity возвращается при попытке занять уже зарегистрированный e-mail.
	ErrDuplicateIdentity = errors.New("email already registered")
	// ErrInvalidCredentials возвращается при неизвестном e-mail или неверном пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountSuspended возвращается при входе в заблокированную учётную запись.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrNotFound возвращается, если идентификатор не найден.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus возвращается, если статус заказа не входит в допустимый набор.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidTransition возвращается, если переход между статусами запрещён.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidArgument возвращается при неверном аргументе запроса.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict возвращается, если заказ изменён параллельно.
	ErrConflict = errors.New("order was modified concurrently")
	// ErrStorage возвращается при недоступности или ошибке хранилища.
	ErrStorage = errors.New("storage error")
	// ErrNotification оборачивает ошибки доставки уведомлений. Наружу не возвращается.
	ErrNotification = errors.New("notification failed")
)

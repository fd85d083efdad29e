package errors

import "fmt"

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUserDisabled       = fmt.Errorf("учётная запись отключена")
	ErrAccountLocked      = fmt.Errorf("слишком много попыток входа, учётная запись временно заблокирована")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
	ErrUserNotFound            = fmt.Errorf("пользователь не найден")

	// Иерархии
	ErrSelfParent       = fmt.Errorf("узел не может быть родителем самого себя")
	ErrParentCycle      = fmt.Errorf("родитель является потомком узла")
	ErrParentNotFound   = fmt.Errorf("родительский узел не найден")
	ErrHasChildren      = fmt.Errorf("у узла есть дочерние элементы, удаление невозможно")
	ErrHasDependents    = fmt.Errorf("на запись ссылаются другие записи, удаление невозможно")
	ErrHierarchyTooDeep = fmt.Errorf("превышена глубина иерархии, возможен цикл")
	ErrHierarchyCycle   = fmt.Errorf("обнаружен цикл в иерархии")

	// Общие
	ErrNotFound       = fmt.Errorf("запись не найдена")
	ErrBadRequest     = fmt.Errorf("неверный запрос")
	ErrConflict       = fmt.Errorf("конфликт данных")
	ErrInternalServer = fmt.Errorf("внутренняя ошибка сервера")
)

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// HttpError несёт HTTP-код, сообщение для клиента и внутреннюю ошибку для логов.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

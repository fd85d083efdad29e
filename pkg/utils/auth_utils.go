package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "admin-backoffice/pkg/errors"
)

// MinPasswordLength совпадает с правилом min=6 в DTO.
const MinPasswordLength = 6

// HashPassword хеширует пароль bcrypt. Короткий пароль отклоняется до хеширования.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperrors.NewInvalidInputError("пароль должен содержать не менее %d символов", MinPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("не удалось хешировать пароль: %w", err)
	}
	return string(hashed), nil
}

// ComparePasswords сверяет пароль с хешем. Несовпадение и битый хеш дают ErrInvalidCredentials,
// чтобы ответ не выдавал, что именно не так.
func ComparePasswords(hashedPassword string, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrHashTooShort):
		return apperrors.ErrInvalidCredentials
	default:
		return fmt.Errorf("ошибка проверки пароля: %w", err)
	}
}

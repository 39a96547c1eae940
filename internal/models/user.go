// Package models содержит доменные сущности IQ-Fit: пользователей, планы,
// подписки, платежи, контент, журнал активности и сообщения, а также
// доменные ошибки, общие для хранилища, сервисов и HTTP-слоя.
package models

import "time"

// Role роль пользователя. Набор значений закрыт.
type Role string

// Допустимые роли.
const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// ParseRole проверяет строку и возвращает роль.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrBadRequest
	}
	return r, nil
}

// Valid сообщает, входит ли роль в закрытый набор.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// IsStaff true для администраторов и суперадминистратора.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// InitialRole роль нового пользователя: самый первый пользователь
// системы становится суперадминистратором.
func InitialRole(existingUsers int64) Role {
	if existingUsers == 0 {
		return RoleSuperAdmin
	}
	return RoleUser
}

// User зарегистрированный пользователь.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsPremium    bool      `json:"isPremium"`
	Suspended    bool      `json:"suspended"`
	DateOfBirth  *Date     `json:"dateOfBirth,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Weight       *float64  `json:"weight,omitempty"`
	Height       *float64  `json:"height,omitempty"`
	JoinDate     time.Time `json:"joinDate"`
}

// Profile изменяемые поля профиля. Пустой Password оставляет пароль без изменений.
type Profile struct {
	FullName    string
	Email       string
	Password    string
	DateOfBirth *Date
	Gender      string
	Bio         string
	Weight      *float64
	Height      *float64
}

// AccountStatus краткое состояние учётной записи для проверок доступа.
type AccountStatus struct {
	Role      Role `json:"role"`
	IsPremium bool `json:"isPremium"`
	Suspended bool `json:"suspended"`
}

// PremiumCause причина изменения премиум-статуса.
type PremiumCause string

// Причины изменения премиум-статуса.
const (
	PremiumCausePurchase      PremiumCause = "PURCHASE"
	PremiumCauseAdminOverride PremiumCause = "ADMIN_OVERRIDE"
)

// PremiumChange запись аудита изменения премиум-статуса.
type PremiumChange struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"userId"`
	IsPremium      bool         `json:"isPremium"`
	Cause          PremiumCause `json:"cause"`
	SubscriptionID *int64       `json:"subscriptionId,omitempty"`
	ChangedAt      time.Time    `json:"changedAt"`
}

// UserStats количество завершённых активностей по типам контента.
type UserStats struct {
	Workouts      int64 `json:"workouts"`
	StudySessions int64 `json:"studySessions"`
	RecipesTried  int64 `json:"recipesTried"`
}

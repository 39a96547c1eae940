package models

import (
	"encoding/json"
	"time"
)

// ContentType тип контента.
type ContentType string

// Типы контента.
const (
	ContentWorkout  ContentType = "WORKOUT"
	ContentStudyTip ContentType = "STUDY_TIP"
	ContentRecipe   ContentType = "RECIPE"
)

// Valid сообщает, входит ли тип в закрытый набор.
func (t ContentType) Valid() bool {
	switch t {
	case ContentWorkout, ContentStudyTip, ContentRecipe:
		return true
	default:
		return false
	}
}

// AccessLevel уровень доступа к контенту.
type AccessLevel string

// Уровни доступа.
const (
	AccessFree    AccessLevel = "FREE"
	AccessPremium AccessLevel = "PREMIUM"
)

// Valid сообщает, входит ли уровень в закрытый набор.
func (l AccessLevel) Valid() bool {
	return l == AccessFree || l == AccessPremium
}

// Content элемент каталога: тренировка, совет по учёбе или рецепт.
type Content struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ContentType     ContentType     `json:"contentType"`
	Category        string          `json:"category"`
	DifficultyLevel string          `json:"difficultyLevel"`
	AccessLevel     AccessLevel     `json:"accessLevel"`
	DurationMinutes *int            `json:"durationMinutes,omitempty"`
	VideoURL        string          `json:"videoUrl,omitempty"`
	Sets            *int            `json:"sets,omitempty"`
	Reps            string          `json:"reps,omitempty"`
	RestTimeSeconds *int            `json:"restTimeSeconds,omitempty"`
	Details         json.RawMessage `json:"details,omitempty"`
	UploadDate      time.Time       `json:"uploadDate"`
}

// ContentFilter параметры поиска по каталогу. Пустые поля не участвуют в фильтре.
type ContentFilter struct {
	ContentType     ContentType
	AccessLevel     AccessLevel
	Category        string
	DifficultyLevel string
}

// Viewer пользователь, запрашивающий контент.
type Viewer struct {
	ID        int64
	Role      Role
	IsPremium bool
}

// CanView проверяет доступ к элементу каталога.
func (v Viewer) CanView(c *Content) bool {
	if c.AccessLevel != AccessPremium {
		return true
	}
	return v.IsPremium || v.Role.IsStaff()
}

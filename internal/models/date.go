package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout формат календарной даты в JSON.
const DateLayout = "2006-01-02"

// Date календарная дата без времени суток (колонки DATE в PostgreSQL).
// В JSON кодируется как 2006-01-02.
type Date struct {
	time.Time
}

// NewDate усекает t до начала суток в UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today возвращает текущую дату в UTC.
func Today() Date {
	return NewDate(time.Now().UTC())
}

// ParseDate разбирает дату в формате 2006-01-02.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// AddDays возвращает дату, сдвинутую на n дней.
func (d Date) AddDays(n int) Date {
	return NewDate(d.AddDate(0, 0, n))
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON реализует json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON реализует json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

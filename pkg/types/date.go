package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ErrInvalidDate возвращается при некорректном формате даты
var ErrInvalidDate = errors.New("invalid date format")

// Date календарная дата без времени и часового пояса
// В БД хранится как DATE (postgres) или TEXT "YYYY-MM-DD" (sqlite)
type Date struct {
	time.Time
}

// NewDate отбрасывает время и часовой пояс
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate парсит "YYYY-MM-DD"
func ParseDate(s string) (Date, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: parsed}, nil
}

// String возвращает "YYYY-MM-DD"
func (d Date) String() string {
	return d.Format(dateLayout)
}

// Equal сравнивает только календарные даты
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

// Before сравнивает только календарные даты
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

// After сравнивает только календарные даты
func (d Date) After(other Date) bool {
	return d.String() > other.String()
}

// AddDays сдвигает дату на n дней
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Scan реализует sql.Scanner
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.parseInto(v)
	case []byte:
		return d.parseInto(string(v))
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidDate, src)
	}
}

func (d *Date) parseInto(raw string) error {
	if len(raw) > len(dateLayout) {
		raw = raw[:len(dateLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value реализует driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// MarshalText используется при кодировании в JSON
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText используется при декодировании из JSON
func (d *Date) UnmarshalText(text []byte) error {
	return d.parseInto(string(text))
}

// MarshalJSON перекрывает формат RFC3339 встроенного time.Time
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON парсит "YYYY-MM-DD"
func (d *Date) UnmarshalJSON(data []byte) error {
	return d.parseInto(strings.Trim(string(data), `"`))
}

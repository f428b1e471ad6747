package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// layouts returned as text by drivers that do not parse timestamps themselves
// (MySQL without parseTime, SQLite).
var layouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

type CustomTime struct {
	time.Time
}

func (c CustomTime) MarshalJson() ([]byte, error) {
	return c.MarshalJSON()
}

func (c CustomTime) Value() (driver.Value, error) {
	return c.Time, nil
}

func (c *CustomTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = CustomTime{}
	case time.Time:
		*c = CustomTime{Time: v}
	case int64:
		*c = CustomTime{Time: time.Unix(v, 0)}
	case []byte:
		return c.parse(string(v))
	case string:
		return c.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", value)
	}

	return nil
}

func (c *CustomTime) parse(value string) error {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			*c = CustomTime{Time: t}
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", value)
}

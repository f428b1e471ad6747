package models

import "fmt"

// Engine выбирает драйвер подключения и диалект разбора скриптов.
type Engine string

const (
	EngineMySQL      Engine = "mysql"
	EnginePostgreSQL Engine = "postgresql"
)

func ParseEngine(value string) (Engine, error) {
	switch engine := Engine(value); engine {
	case EngineMySQL, EnginePostgreSQL:
		return engine, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidEngine, value)
	}
}

// DefaultPort returns the server port used when a target does not set one.
func (e Engine) DefaultPort() int {
	if e == EnginePostgreSQL {
		return 5432
	}
	return 3306
}

func (e Engine) String() string {
	return string(e)
}

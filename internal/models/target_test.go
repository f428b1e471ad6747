package models

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestParseEngine(t *testing.T) {
	engine, err := ParseEngine("postgresql")
	require.NoError(t, err)
	assert.Equal(t, EnginePostgreSQL, engine)
	assert.Equal(t, 5432, engine.DefaultPort())
	assert.Equal(t, 3306, EngineMySQL.DefaultPort())

	_, err = ParseEngine("postgres")
	assert.ErrorIs(t, err, ErrInvalidEngine)
}

func TestTarget_WithDefaults(t *testing.T) {
	target := Target{User: "root", Database: "app", Path: "/srv"}.WithDefaults()
	assert.Equal(t, EngineMySQL, target.Engine)
	assert.Equal(t, "localhost", target.Host)
	assert.Equal(t, 3306, target.Port)

	target = Target{Engine: EnginePostgreSQL, Host: "db", Port: 6432}.WithDefaults()
	assert.Equal(t, "db", target.Host)
	assert.Equal(t, 6432, target.Port)

	target = Target{Engine: EnginePostgreSQL}.WithDefaults()
	assert.Equal(t, 5432, target.Port)
}

func TestTarget_Validate(t *testing.T) {
	valid := Target{User: "root", Database: "app", Path: "/srv"}.WithDefaults()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Target)
		want   error
	}{
		{name: "engine", modify: func(t *Target) { t.Engine = "sqlserver" }, want: ErrInvalidEngine},
		{name: "user", modify: func(t *Target) { t.User = "" }, want: ErrConfig},
		{name: "db", modify: func(t *Target) { t.Database = "" }, want: ErrConfig},
		{name: "path", modify: func(t *Target) { t.Path = "" }, want: ErrConfig},
		{name: "port", modify: func(t *Target) { t.Port = 70000 }, want: ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := valid
			tt.modify(&target)
			assert.ErrorIs(t, target.Validate(), tt.want)
		})
	}
}

func TestTarget_Options(t *testing.T) {
	off := false
	target := Target{
		Transactional: &off,
		Options: map[string]interface{}{
			"sslmode":            "require",
			"ssl_check_hostname": false,
			"empty":              nil,
		},
	}

	assert.False(t, target.IsTransactional())
	assert.True(t, Target{}.IsTransactional())

	value, ok := target.Option("ssl_check_hostname")
	assert.True(t, ok)
	assert.Equal(t, "false", value)

	_, ok = target.Option("empty")
	assert.False(t, ok)
	_, ok = target.Option("sslcert")
	assert.False(t, ok)

	assert.Equal(t, []string{"empty", "ssl_check_hostname", "sslmode"}, target.OptionKeys())
}

func TestCustomTime_Scan(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value interface{}
		want  time.Time
	}{
		{name: "time", value: want, want: want},
		{name: "text", value: "2024-03-01 10:30:00", want: want},
		{name: "bytes", value: []byte("2024-03-01 10:30:00"), want: want},
		{name: "rfc3339", value: "2024-03-01T10:30:00Z", want: want},
		{name: "unix", value: want.Unix(), want: time.Unix(want.Unix(), 0)},
		{name: "null", value: nil, want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c CustomTime
			require.NoError(t, c.Scan(tt.value))
			assert.True(t, tt.want.Equal(c.Time), "got %s", c.Time)
		})
	}

	var c CustomTime
	assert.Error(t, c.Scan("yesterday"))
	assert.Error(t, c.Scan(3.14))
}

package dbschema

import (
	"log/slog"
)

type ManagerOption func(*MigrationManager)

func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *MigrationManager) {
		m.logger = logger
	}
}

// WithConnectFunc replaces the engine based connector, the manager still owns the
// returned session and releases it with the disconnect function.
func WithConnectFunc(connectFunc ConnectFunc) ManagerOption {
	return func(m *MigrationManager) {
		m.connectFunc = connectFunc
	}
}

func WithDisconnectFunc(disconnectFunc DisconnectFunc) ManagerOption {
	return func(m *MigrationManager) {
		m.disconnectFunc = disconnectFunc
	}
}

// WithSkipMissing skips targets whose migrations folder does not exist instead of failing them.
func WithSkipMissing(skip bool) ManagerOption {
	return func(m *MigrationManager) {
		m.skipMissing = skip
	}
}

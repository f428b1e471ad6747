package dbschema

import (
	"context"
	"errors"
	"fmt"
	"github.com/Maksumys/dbschema/internal/connector"
	"github.com/Maksumys/dbschema/internal/models"
	"github.com/Maksumys/dbschema/internal/repository"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"
	"log/slog"
	"os"
	"sort"
	"sync"
)

type (
	Target = models.Target
	Engine = models.Engine
)

const (
	EngineMySQL      = models.EngineMySQL
	EnginePostgreSQL = models.EnginePostgreSQL
)

// ConnectFunc opens the session used for one target.
type ConnectFunc func(ctx context.Context, tag string, target Target) (*gorm.DB, error)

type DisconnectFunc func(db *gorm.DB)

// NewMigrationsManager создает экземпляр управляющего миграциями (выступает в качестве фасада).
// Цели регистрируются через RegisterTarget, подключение по умолчанию выбирается по движку цели.
func NewMigrationsManager(opts ...ManagerOption) (*MigrationManager, error) {
	manager := MigrationManager{
		logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		targets: make(map[string]Target),
	}

	for _, opt := range opts {
		opt(&manager)
	}

	if manager.connectFunc == nil {
		manager.connectFunc = func(ctx context.Context, tag string, target Target) (*gorm.DB, error) {
			return connector.Open(ctx, tag, target, manager.logger)
		}
	}
	if manager.disconnectFunc == nil {
		manager.disconnectFunc = connector.Close
	}

	return &manager, nil
}

type MigrationManager struct {
	logger         *slog.Logger
	targets        map[string]Target
	connectFunc    ConnectFunc
	disconnectFunc DisconnectFunc
	skipMissing    bool

	mutex sync.Mutex
}

// RegisterTarget проверяет и сохраняет описание базы под тегом. Ошибка конфигурации
// или неизвестный движок делают запуск невозможным, поэтому возвращаются сразу.
func (m *MigrationManager) RegisterTarget(tag string, target Target) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if tag == "" {
		return fmt.Errorf("%w: empty database tag", ErrConfig)
	}

	target = target.WithDefaults()
	if err := target.Validate(); err != nil {
		return fmt.Errorf("database %s: %w", tag, err)
	}

	m.targets[tag] = target
	return nil
}

func (m *MigrationManager) GetTarget(tag string) (Target, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	target, ok := m.targets[tag]
	return target, ok
}

// Tags returns the registered tags in processing order.
func (m *MigrationManager) Tags() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.sortedTags()
}

func (m *MigrationManager) sortedTags() []string {
	tags := make([]string, 0, len(m.targets))
	for tag := range m.targets {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// selectTags returns every tag when tag is empty, otherwise only tag.
func (m *MigrationManager) selectTags(tag string) ([]string, error) {
	if tag == "" {
		if len(m.targets) == 0 {
			return nil, fmt.Errorf("%w: no databases registered", ErrConfig)
		}
		return m.sortedTags(), nil
	}

	if _, ok := m.targets[tag]; !ok {
		return nil, fmt.Errorf("%w: unknown database tag %s", ErrConfig, tag)
	}
	return []string{tag}, nil
}

// forEachTarget runs fn for the selected targets one after another. A failing target does
// not stop the others; their errors are returned together.
func (m *MigrationManager) forEachTarget(
	ctx context.Context,
	tag string,
	fn func(log *slog.Logger, tag string, target Target) error,
) error {
	tags, err := m.selectTags(tag)
	if err != nil {
		return err
	}

	log := m.logger.With("run", uuid.NewString())

	var result *multierror.Error
	for _, t := range tags {
		if err = ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}

		if err = fn(log.With("tag", t), t, m.targets[t]); err != nil {
			log.Error("database failed", "tag", t, "error", err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", t, err))
		}
	}

	if result != nil {
		result.ErrorFormat = formatTargetErrors
	}
	return result.ErrorOrNil()
}

// checkMigrationsRoot reports whether the target must be skipped because its folder is missing.
func (m *MigrationManager) checkMigrationsRoot(log *slog.Logger, target Target) (bool, error) {
	info, err := os.Stat(target.Path)
	if err == nil && info.IsDir() {
		return false, nil
	}

	if m.skipMissing {
		log.Info("migrations folder not found, skipping", "path", target.Path)
		return true, nil
	}
	return false, fmt.Errorf("%w: the folder `%s` does not exist", ErrNotFound, target.Path)
}

// withConnection opens the target session, pins a single server connection for the whole
// processing and releases everything afterwards.
func (m *MigrationManager) withConnection(ctx context.Context, tag string, target Target, fn func(conn *gorm.DB) error) error {
	db, err := m.connectFunc(ctx, tag, target)
	if err != nil {
		if !errors.Is(err, ErrConnection) && !errors.Is(err, ErrInvalidEngine) && !errors.Is(err, ErrConfig) {
			err = fmt.Errorf("%w: %w", ErrConnection, err)
		}
		return err
	}
	defer m.disconnectFunc(db)

	return db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return fn(tx.Session(&gorm.Session{NewDB: true}))
	})
}

type TargetStatus struct {
	Tag     string
	Skipped bool
	Applied []string
	Pending []string
}

// Status возвращает выполненные и ожидающие миграции целей, ничего не изменяя в базе.
// Хуки не запускаются.
func (m *MigrationManager) Status(ctx context.Context, tag string) ([]TargetStatus, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var statuses []TargetStatus
	err := m.forEachTarget(ctx, tag, func(log *slog.Logger, tag string, target Target) error {
		status := TargetStatus{Tag: tag}

		skip, err := m.checkMigrationsRoot(log, target)
		if err != nil {
			return err
		}
		if skip {
			status.Skipped = true
			statuses = append(statuses, status)
			return nil
		}

		err = m.withConnection(ctx, tag, target, func(conn *gorm.DB) error {
			plan, rows, err := m.planMigrate(conn, target)
			if err != nil {
				return err
			}
			for i := range rows {
				status.Applied = append(status.Applied, rows[i].Name)
			}
			sort.Strings(status.Applied)
			status.Pending = plan.Names()
			return nil
		})
		if err != nil {
			return err
		}

		statuses = append(statuses, status)
		return nil
	})

	return statuses, err
}

// InitLedger создает таблицу migrations_applied для выбранных целей. Применение
// миграций таблицу не создает, это явное действие оператора.
func (m *MigrationManager) InitLedger(ctx context.Context, tag string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.forEachTarget(ctx, tag, func(log *slog.Logger, tag string, target Target) error {
		return m.withConnection(ctx, tag, target, func(conn *gorm.DB) error {
			if repository.HasLedgerTable(conn) {
				log.Info("ledger table already exists")
				return nil
			}
			if err := repository.CreateLedgerTable(conn); err != nil {
				return fmt.Errorf("create ledger table: %w", err)
			}
			log.Info("ledger table created")
			return nil
		})
	})
}

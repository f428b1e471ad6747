package dbschema

import (
	"container/list"
	"fmt"
	"github.com/Maksumys/dbschema/internal/models"
	"github.com/Maksumys/dbschema/internal/repository"
	"gorm.io/gorm"
)

type migrationsPlan struct {
	migrationsToRun *list.List
}

func newMigrationsPlan() migrationsPlan {
	return migrationsPlan{
		migrationsToRun: list.New(),
	}
}

func (p migrationsPlan) IsEmpty() bool {
	return p.migrationsToRun.Len() == 0
}

func (p migrationsPlan) Len() int {
	return p.migrationsToRun.Len()
}

func (p migrationsPlan) PopFirst() Migration {
	first := p.migrationsToRun.Front()
	p.migrationsToRun.Remove(first)
	return first.Value.(Migration)
}

func (p migrationsPlan) Names() []string {
	names := make([]string, 0, p.migrationsToRun.Len())
	for e := p.migrationsToRun.Front(); e != nil; e = e.Next() {
		names = append(names, e.Value.(Migration).Name)
	}
	return names
}

// migratePlanner оставляет найденные миграции, которых нет в журнале, сохраняя порядок по имени.
type migratePlanner struct {
	discovered []Migration
	applied    map[string]struct{}
}

func (p *migratePlanner) MakePlan() migrationsPlan {
	plan := newMigrationsPlan()
	for _, migration := range p.discovered {
		if _, ok := p.applied[migration.Name]; ok {
			continue
		}
		plan.migrationsToRun.PushBack(migration)
	}
	return plan
}

// planMigrate reads the folder and the ledger again on every call, nothing is cached
// between runs.
func (m *MigrationManager) planMigrate(conn *gorm.DB, target Target) (migrationsPlan, []models.AppliedMigration, error) {
	discovered, err := DiscoverMigrations(target.Path)
	if err != nil {
		return migrationsPlan{}, nil, err
	}

	savedMigrations, err := repository.ListApplied(conn)
	if err != nil {
		return migrationsPlan{}, nil, err
	}

	planner := migratePlanner{
		discovered: discovered,
		applied:    repository.AppliedSet(savedMigrations),
	}
	return planner.MakePlan(), savedMigrations, nil
}

type downgradePlanner struct {
	root    string
	applied map[string]struct{}
}

func (p *downgradePlanner) MakePlan(name string) (Migration, error) {
	if _, ok := p.applied[name]; !ok {
		return Migration{}, fmt.Errorf("%w: `%s`", ErrNotApplied, name)
	}

	migration := newMigration(p.root, name)
	if !migration.HasDown() {
		return Migration{}, fmt.Errorf("%w: the file `%s` does not exist", ErrMissingDownScript, migration.DownPath)
	}
	return migration, nil
}

func (m *MigrationManager) planDowngrade(conn *gorm.DB, target Target, name string) (Migration, error) {
	savedMigrations, err := repository.ListApplied(conn)
	if err != nil {
		return Migration{}, err
	}

	planner := downgradePlanner{
		root:    target.Path,
		applied: repository.AppliedSet(savedMigrations),
	}
	return planner.MakePlan(name)
}

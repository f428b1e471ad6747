package dbschema

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
)

func TestMigratePlanner(t *testing.T) {
	root := t.TempDir()
	discovered := []Migration{newMigration(root, "a"), newMigration(root, "b"), newMigration(root, "c")}

	tests := []struct {
		name    string
		applied []string
		want    []string
	}{
		{name: "empty ledger", applied: nil, want: []string{"a", "b", "c"}},
		{name: "first applied", applied: []string{"a"}, want: []string{"b", "c"}},
		{name: "gap", applied: []string{"b"}, want: []string{"a", "c"}},
		{name: "all applied", applied: []string{"c", "a", "b"}, want: []string{}},
		{name: "unknown names in ledger", applied: []string{"zz", "a"}, want: []string{"b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied := make(map[string]struct{})
			for _, name := range tt.applied {
				applied[name] = struct{}{}
			}

			planner := migratePlanner{discovered: discovered, applied: applied}
			plan := planner.MakePlan()

			assert.Equal(t, tt.want, plan.Names())
			assert.Equal(t, len(tt.want) == 0, plan.IsEmpty())
			if !plan.IsEmpty() {
				assert.Equal(t, tt.want[0], plan.PopFirst().Name)
				assert.Equal(t, len(tt.want)-1, plan.Len())
			}
		})
	}
}

func TestDowngradePlanner(t *testing.T) {
	root := t.TempDir()
	writeMigration(t, root, "with_down", "SELECT 1;", "SELECT 2;")
	writeMigration(t, root, "without_down", "SELECT 1;", "")

	planner := downgradePlanner{
		root:    root,
		applied: map[string]struct{}{"with_down": {}, "without_down": {}},
	}

	migration, err := planner.MakePlan("with_down")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "with_down", downScript), migration.DownPath)

	_, err = planner.MakePlan("without_down")
	assert.ErrorIs(t, err, ErrMissingDownScript)

	_, err = planner.MakePlan("never")
	assert.ErrorIs(t, err, ErrNotApplied)
}

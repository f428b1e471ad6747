package dbschema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	upScript   = "up.sql"
	downScript = "down.sql"
)

// Migration is one subdirectory of a migrations root. Name is the directory name and
// defines the order of application.
type Migration struct {
	Name     string
	UpPath   string
	DownPath string
}

func newMigration(root, name string) Migration {
	return Migration{
		Name:     name,
		UpPath:   filepath.Join(root, name, upScript),
		DownPath: filepath.Join(root, name, downScript),
	}
}

func (m Migration) HasDown() bool {
	return isRegularFile(m.DownPath)
}

func (m Migration) ReadUp() (string, error) {
	return readScript(m.UpPath)
}

func (m Migration) ReadDown() (string, error) {
	if !m.HasDown() {
		return "", fmt.Errorf("%w: the file `%s` does not exist", ErrMissingDownScript, m.DownPath)
	}
	return readScript(m.DownPath)
}

// DiscoverMigrations возвращает миграции каталога root, отсортированные по имени.
// Миграцией считается подкаталог, содержащий up.sql; down.sql необязателен.
func DiscoverMigrations(root string) ([]Migration, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: the folder `%s` does not exist", ErrNotFound, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read migrations folder %s: %w", root, err)
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		migration := newMigration(root, entry.Name())
		if !isRegularFile(migration.UpPath) {
			continue
		}
		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})

	return migrations, nil
}

func readScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: the file `%s` does not exist", ErrNotFound, path)
		}
		return "", err
	}
	return string(data), nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

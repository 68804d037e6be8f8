package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Migration is one schema change of the sharing graph with its rollback
// script.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var embeddedMigrations = sync.OnceValues(func() ([]Migration, error) {
	return LoadMigrations(migrationFS, "migrations")
})

// EmbeddedMigrations returns the migrations compiled into the binary,
// ordered by version.
func EmbeddedMigrations() ([]Migration, error) {
	return embeddedMigrations()
}

// LoadMigrations reads NNNNNN_name.up.sql / NNNNNN_name.down.sql pairs from
// dir. Every up script needs a down script and versions must be unique.
// Files that are not .sql are ignored.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var out []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		base := strings.TrimSuffix(name, ".up.sql")
		versionPart, label, ok := strings.Cut(base, "_")
		if !ok || label == "" {
			return nil, fmt.Errorf("migration %s: want NNNNNN_name.up.sql", name)
		}
		version, err := strconv.Atoi(versionPart)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: version must be a positive number", name)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration %s: version %d already used by %s", name, version, prev)
		}
		seen[version] = name

		up, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", base, err)
		}

		out = append(out, Migration{
			Version:    version,
			Name:       label,
			UpScript:   string(up),
			DownScript: string(down),
		})
	}

	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out, nil
}

func findMigration(migrations []Migration, version int) (Migration, bool) {
	i := slices.IndexFunc(migrations, func(m Migration) bool { return m.Version == version })
	if i < 0 {
		return Migration{}, false
	}
	return migrations[i], true
}

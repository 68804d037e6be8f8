package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"innercircle/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records one applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

// MigrationState is a migration together with whether it has been applied.
type MigrationState struct {
	Migration
	Applied   bool
	AppliedAt time.Time
}

// Migrator applies and rolls back a fixed, ordered set of migrations and
// keeps track of them in migration_logs.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB, migrations []Migration) *Migrator {
	return &Migrator{db: db, migrations: migrations}
}

// NewEmbeddedMigrator returns a Migrator over the migrations compiled into
// the binary.
func NewEmbeddedMigrator(db *gorm.DB) (*Migrator, error) {
	migrations, err := EmbeddedMigrations()
	if err != nil {
		return nil, err
	}
	return NewMigrator(db, migrations), nil
}

func (m *Migrator) logs(ctx context.Context) ([]MigrationLog, error) {
	var logs []MigrationLog
	err := m.db.WithContext(ctx).Order("version ASC").Find(&logs).Error
	if err != nil {
		if isMissingTableError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migration_logs: %w", err)
	}
	return logs, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// Up applies every pending migration in version order, each in its own
// transaction, and returns the ones it applied. It refuses to run when
// migration_logs names versions this binary does not know.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return nil, fmt.Errorf("ensure migration_logs: %w", err)
	}

	logs, err := m.logs(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.checkKnown(logs); err != nil {
		return nil, err
	}

	done := make(map[int]bool, len(logs))
	for _, l := range logs {
		done[l.Version] = true
	}

	var applied []Migration
	for _, mig := range m.migrations {
		if done[mig.Version] {
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return fmt.Errorf("apply %s: %w", mig, err)
			}
			return tx.Create(&MigrationLog{Version: mig.Version, Name: mig.Name}).Error
		})
		if err != nil {
			return applied, err
		}
		middleware.Logger.Info("migration applied", slog.String("migration", mig.String()))
		applied = append(applied, mig)
	}
	return applied, nil
}

// Down runs the rollback script of an applied migration and forgets it.
func (m *Migrator) Down(ctx context.Context, version int) error {
	mig, ok := findMigration(m.migrations, version)
	if !ok {
		return fmt.Errorf("migration %06d not found", version)
	}

	logs, err := m.logs(ctx)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(logs, func(l MigrationLog) bool { return l.Version == version }) {
		return fmt.Errorf("migration %s has not been applied", mig)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.DownScript).Error; err != nil {
			return fmt.Errorf("roll back %s: %w", mig, err)
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
	if err != nil {
		return err
	}
	middleware.Logger.Info("migration rolled back", slog.String("migration", mig.String()))
	return nil
}

// Status lists every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	logs, err := m.logs(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.checkKnown(logs); err != nil {
		return nil, err
	}

	at := make(map[int]time.Time, len(logs))
	for _, l := range logs {
		at[l.Version] = l.AppliedAt
	}
	states := make([]MigrationState, 0, len(m.migrations))
	for _, mig := range m.migrations {
		t, ok := at[mig.Version]
		states = append(states, MigrationState{Migration: mig, Applied: ok, AppliedAt: t})
	}
	return states, nil
}

func (m *Migrator) checkKnown(logs []MigrationLog) error {
	var unknown []string
	for _, l := range logs {
		if _, ok := findMigration(m.migrations, l.Version); !ok {
			unknown = append(unknown, fmt.Sprintf("%06d", l.Version))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("migration_logs has versions unknown to this build: %s", strings.Join(unknown, ", "))
}

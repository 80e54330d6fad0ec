// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

// NewTestDB opens a private in-memory SQLite database with every table
// migrated. The database lives until the test ends.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db := open(t, fmt.Sprintf("file:%s?mode=memory&cache=shared", name), 1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error
	return db
}

// NewFileTestDB opens a migrated SQLite file in a temporary directory behind
// a pool of conns connections, so concurrent callers really do write in
// parallel. Every connection waits on a locked database instead of failing.
func NewFileTestDB(t testing.TB, conns int) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	return open(t, "file:"+path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", conns)
}

func open(t testing.TB, dsn string, conns int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)

	if err := config.NewSingleConnection(db).Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// NewTestConnections wraps NewTestDB as writer/reader connections.
func NewTestConnections(t testing.TB) *config.DatabaseConnections {
	t.Helper()
	return config.NewSingleConnection(NewTestDB(t))
}

// SeedTenant inserts an active tenant.
func SeedTenant(t testing.TB, db *gorm.DB, name string) *domain.Tenant {
	t.Helper()

	tenant := &domain.Tenant{Name: name, Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-")), IsActive: true}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tenant
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123"

// chdirTemp moves into an empty directory so no stray .env file is loaded.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, DriverPostgres)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.ReadTimeout)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != "5432" {
		t.Errorf("Database = %+v, want localhost:5432", cfg.Database)
	}
	if cfg.Database.MaxConns != 20 || cfg.Database.MinConns != 2 {
		t.Errorf("pool sizes = %d/%d, want 20/2", cfg.Database.MaxConns, cfg.Database.MinConns)
	}
	if cfg.DefaultLocale != "fr" {
		t.Errorf("DefaultLocale = %q, want fr", cfg.DefaultLocale)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without JWT_SECRET")
	}
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", "short")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a short JWT_SECRET")
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORE_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted an unknown driver")
	}
}

func TestLoad_SQLiteDriverNormalized(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORE_DRIVER", " SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoreDriver != DriverSQLite {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, DriverSQLite)
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", testSecret)
	// godotenv never overrides variables that are already set, so PORT must
	// be absent from the process environment for the file value to win.
	if err := os.Unsetenv("PORT"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("PORT") })
	if err := os.WriteFile(filepath.Join(".", ".env"), []byte("PORT=9191\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Port)
	}
}

func TestLoad_RejectsPoolInversion(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DB_MAX_CONNS", "1")
	t.Setenv("DB_MIN_CONNS", "4")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted DB_MAX_CONNS < DB_MIN_CONNS")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

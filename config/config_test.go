package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COMMAND_PREFIX", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("SYNC_BATCH_SIZE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CommandPrefix != "ab!" {
		t.Errorf("CommandPrefix = %q, want ab!", cfg.CommandPrefix)
	}
	if cfg.DBDsn == "" {
		t.Errorf("expected default DB_DSN, got empty")
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.SyncBatchSize != 100 {
		t.Errorf("SyncBatchSize = %d, want 100", cfg.SyncBatchSize)
	}
	if cfg.CompressCRF != 28 {
		t.Errorf("CompressCRF = %d, want 28", cfg.CompressCRF)
	}
}

func TestLoadBatchSizeBounds(t *testing.T) {
	t.Setenv("SYNC_BATCH_SIZE", "250")
	if _, err := Load(); err == nil {
		t.Errorf("expected error for SYNC_BATCH_SIZE above Discord page limit")
	}
	t.Setenv("SYNC_BATCH_SIZE", "25")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SyncBatchSize != 25 {
		t.Errorf("SyncBatchSize = %d, want 25", cfg.SyncBatchSize)
	}
}

func TestValidateDiscordReady(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "tok")
	cfg, _ := Load()
	if err := cfg.ValidateDiscordReady(); err != nil {
		t.Errorf("expected valid discord config, got %v", err)
	}
	t.Setenv("DISCORD_TOKEN", "")
	cfg, _ = Load()
	if err := cfg.ValidateDiscordReady(); err == nil {
		t.Errorf("expected error when missing DISCORD_TOKEN")
	}
}

func TestValidateR2Ready(t *testing.T) {
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "bucket")
	t.Setenv("R2_PUBLIC_DOMAIN", "https://cdn.example.com")
	cfg, _ := Load()
	if err := cfg.ValidateR2Ready(); err != nil {
		t.Errorf("expected valid r2 config, got %v", err)
	}
	t.Setenv("R2_BUCKET_NAME", "")
	cfg, _ = Load()
	if err := cfg.ValidateR2Ready(); err == nil {
		t.Errorf("expected error when missing R2_BUCKET_NAME")
	}
}

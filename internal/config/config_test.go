package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Name != "tidyflow" {
		t.Errorf("server name = %q", cfg.Server.Name)
	}
	if cfg.Session.PrimaryFile != "agent.R" {
		t.Errorf("primary file = %q, want agent.R", cfg.Session.PrimaryFile)
	}
	if cfg.Session.StateDirName != ".tidyflow" {
		t.Errorf("state dir = %q, want .tidyflow", cfg.Session.StateDirName)
	}
	if cfg.Session.LibDirName != "R_libs" {
		t.Errorf("lib dir = %q, want R_libs", cfg.Session.LibDirName)
	}
	if cfg.Run.ScriptTimeout != 120*time.Second {
		t.Errorf("script timeout = %v, want 120s", cfg.Run.ScriptTimeout)
	}
	if cfg.Run.ExpressionTimeout != 60*time.Second {
		t.Errorf("expression timeout = %v, want 60s", cfg.Run.ExpressionTimeout)
	}
}

func TestLoadUsesDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.PrimaryFile != "agent.R" {
		t.Errorf("primary file = %q, want agent.R", cfg.Session.PrimaryFile)
	}
	if cfg.Run.ScriptTimeout != 120*time.Second {
		t.Errorf("script timeout = %v, want 120s", cfg.Run.ScriptTimeout)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TIDYFLOW_SESSION_PRIMARY_FILE", "main.R")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.PrimaryFile != "main.R" {
		t.Errorf("primary file = %q, want env override main.R", cfg.Session.PrimaryFile)
	}
}

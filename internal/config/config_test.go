package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.Warp || cfg.RAMExpansion || cfg.DisableAudio || cfg.AutoloadSrec || cfg.BreakOnStart {
		t.Fatalf("expected all bool flags false by default, got %+v", cfg)
	}
	if cfg.Charset != CharsetUS {
		t.Fatalf("expected default charset US, got %v", cfg.Charset)
	}
	if cfg.AutoloadFile != "" {
		t.Fatalf("expected no autoload file by default, got %q", cfg.AutoloadFile)
	}
}

func TestParseFlagsAndPositional(t *testing.T) {
	cfg, err := Parse([]string{"--warp", "--charset", "DE", "-e", "program.bas"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !cfg.Warp || !cfg.RAMExpansion {
		t.Fatalf("expected warp and ram-expansion set, got %+v", cfg)
	}
	if cfg.Charset != CharsetDE {
		t.Fatalf("expected charset DE, got %v", cfg.Charset)
	}
	if cfg.AutoloadFile != "program.bas" {
		t.Fatalf("expected positional autoload file, got %q", cfg.AutoloadFile)
	}
}

func TestParseRejectsUnknownCharset(t *testing.T) {
	if _, err := Parse([]string{"--charset", "zz"}); err == nil {
		t.Fatal("expected an error for an unknown charset, got nil")
	}
}

func TestParseRejectsConflictingROMOptions(t *testing.T) {
	if _, err := Parse([]string{"--ram-expansion", "--option-rom", "x.rom"}); err == nil {
		t.Fatal("expected an error combining --ram-expansion and --option-rom, got nil")
	}
}

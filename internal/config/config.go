// Package config parses the emulator's command-line surface (spec
// §6). Grounded on original_source/main.c's getopt_long table
// ("hbwaesm:c:r:o:p:t:" plus the positional autoload file), using
// pflag for long-form GNU-style flags in place of the original's
// single-letter getopt, the way the rest of this module prefers the
// ecosystem's flag library over hand-rolled argument parsing.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Charset selects the console's national character set (spec §6's DIP
// switch equivalent; original_source's console_charset_t).
type Charset int

const (
	CharsetUS Charset = iota
	CharsetFR
	CharsetDE
	CharsetGB
	CharsetDK
	CharsetSE
	CharsetIT
	CharsetES
)

var charsetNames = map[string]Charset{
	"us": CharsetUS, "fr": CharsetFR, "de": CharsetDE, "gb": CharsetGB,
	"dk": CharsetDK, "se": CharsetSE, "it": CharsetIT, "es": CharsetES,
}

// Config is the fully-parsed, validated set of startup options.
type Config struct {
	BreakOnStart  bool
	Warp          bool
	RAMExpansion  bool
	DisableAudio  bool
	AutoloadSrec  bool
	ConsoleMode   int
	Charset       Charset
	ROMDir        string
	OptionROM     string
	PrinterOut    string
	TTYDevice     string
	AutoloadFile  string // positional arg; "" when none given
}

// Parse reads args (typically os.Args[1:]) into a Config, matching
// original_source/main.c's flag semantics: -e and -o are mutually
// exclusive (both claim the 0x6000 window), and a positional filename
// becomes the autoload program (S-record under -s, otherwise BASIC
// text).
func Parse(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("hx20", pflag.ContinueOnError)

	cfg := &Config{ROMDir: "."}
	var charsetFlag string

	fs.BoolVarP(&cfg.BreakOnStart, "break", "b", false, "drop into the debugger before the first instruction")
	fs.BoolVarP(&cfg.Warp, "warp", "w", false, "run without wall-clock pacing")
	fs.BoolVarP(&cfg.RAMExpansion, "ram-expansion", "e", false, "install the RAM expansion at 0x6000")
	fs.BoolVarP(&cfg.DisableAudio, "no-audio", "a", false, "disable the piezo audio sink")
	fs.BoolVarP(&cfg.AutoloadSrec, "autoload-srec", "s", false, "treat the autoload file as an S-record image, not BASIC text")
	fs.IntVarP(&cfg.ConsoleMode, "console-mode", "m", 0, "console rendering mode")
	fs.StringVarP(&charsetFlag, "charset", "c", "us", "national charset: us, fr, de, gb, dk, se, it, es")
	fs.StringVarP(&cfg.ROMDir, "rom-dir", "r", cfg.ROMDir, "directory holding the fixed ROM images")
	fs.StringVarP(&cfg.OptionROM, "option-rom", "o", "", "load a raw option ROM at 0x6000 (no CRC check)")
	fs.StringVarP(&cfg.PrinterOut, "printer-out", "p", "", "file to receive micro-printer output")
	fs.StringVarP(&cfg.TTYDevice, "tty", "t", "", "host TTY device to bridge the external serial port to")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	charset, ok := charsetNames[normalizeCharset(charsetFlag)]
	if !ok {
		return nil, fmt.Errorf("config: unknown charset %q", charsetFlag)
	}
	cfg.Charset = charset

	if cfg.RAMExpansion && cfg.OptionROM != "" {
		return nil, fmt.Errorf("config: --ram-expansion and --option-rom both target 0x6000; use only one")
	}

	if rest := fs.Args(); len(rest) > 0 {
		cfg.AutoloadFile = rest[0]
	}

	return cfg, nil
}

func normalizeCharset(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

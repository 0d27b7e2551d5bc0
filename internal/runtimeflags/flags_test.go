package runtimeflags

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestBindParsesOverrides(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts := Bind(fs)

	if err := fs.Parse([]string{"--arena-size", "2048", "--max-buses", "8", "--simulated-time"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if opts.ArenaSize != 2048 {
		t.Errorf("ArenaSize = %d, want 2048", opts.ArenaSize)
	}
	if opts.MaxBuses != 8 {
		t.Errorf("MaxBuses = %d, want 8", opts.MaxBuses)
	}
	if !opts.SimulatedTime {
		t.Error("SimulatedTime = false, want true")
	}
}

func TestBindDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts := Bind(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.ArenaSize != 1<<20 {
		t.Errorf("default ArenaSize = %d, want %d", opts.ArenaSize, 1<<20)
	}
	if opts.SimulatedTime {
		t.Error("default SimulatedTime = true, want false")
	}
}

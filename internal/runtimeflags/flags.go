// Package runtimeflags binds CLI-tunable runtime limits to pflag, for
// embedding hosts that want to expose them as command-line flags. The
// runtime core never parses os.Args itself; this package is opt-in and
// free-standing.
package runtimeflags

import "github.com/spf13/pflag"

// Options mirrors the construction knobs a host may want to expose on
// its own command line.
type Options struct {
	ArenaSize     uint64
	MaxBuses      int
	PollTimeoutMs int64
	SimulatedTime bool
}

// Bind registers the runtime's tunables on fs using sensible defaults,
// returning an Options the caller reads after fs.Parse.
func Bind(fs *pflag.FlagSet) *Options {
	opts := &Options{}
	fs.Uint64Var(&opts.ArenaSize, "arena-size", 1<<20, "stack arena budget in bytes")
	fs.IntVar(&opts.MaxBuses, "max-buses", 64, "maximum number of topic buses")
	fs.Int64Var(&opts.PollTimeoutMs, "poll-timeout-ms", 100, "reactor poll timeout in milliseconds when idle")
	fs.BoolVar(&opts.SimulatedTime, "simulated-time", false, "use the simulated timer backend instead of wall-clock")
	return opts
}

// BindDefault binds to pflag.CommandLine, the package-level flag set most
// single-binary hosts use.
func BindDefault() *Options {
	return Bind(pflag.CommandLine)
}

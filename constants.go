package actor

import "github.com/ehrlich-b/actorcore/internal/constants"

// Re-exported compile-time limits. See internal/constants for the
// authoritative definitions every pool and table is sized against.
const (
	MaxActors         = constants.MaxActors
	MaxMessageSize    = constants.MaxMessageSize
	MessageHeaderSize = constants.MessageHeaderSize
	MaxSelectSources  = constants.MaxSelectSources
	MaxBusSubscribers = constants.MaxBusSubscribers
	DefaultStackSize  = constants.DefaultStackSize
	ArenaSize         = constants.ArenaSize
	PollTimeout       = constants.PollTimeout

	TagRuntimeBit = constants.TagRuntimeBit
	TagMask       = constants.TagMask
)

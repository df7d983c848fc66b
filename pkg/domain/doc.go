// Package domain holds the core data model of the conversational workflow
// engine: nodes and their typed configs, connections, actions, sessions, and
// the lifecycle event union streamed to observers.
//
// The package has no dependencies on the runtime or any adapter, so every
// other package can share these types freely.
package domain

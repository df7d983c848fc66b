// Package ports declares the driven-side interfaces of the engine: durable
// stores, the CRM collaborator, the AI judgment and generation collaborators,
// and distributed locking. Adapters under pkg/adapters implement them; the
// engine core depends only on these contracts.
//
// The package also ships reusable contract-test suites so every adapter can
// prove it honors the interface semantics.
package ports

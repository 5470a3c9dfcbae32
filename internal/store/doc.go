// Package store defines the persistence interfaces of the configuration
// registry. The service layer talks only to these interfaces; the postgres
// and memory packages under internal/platform implement them.
//
// Implementations must provide the following guarantees:
//   - ConfigStore.Create is an atomic insert-if-absent on the config key.
//   - InstanceStore.Upsert is atomic per (config, environment, group) triple
//     and never leaves two rows for one triple.
//   - Reads never observe a partially written value.
package store

// Package service implements the configuration registry: the config
// catalog, the environment directory, value resolution, the audit log, and
// the Registry facade that applies identity policy in front of them.
//
// Expected failures are returned as *DetailError values wrapping one of the
// sentinel errors in this package, so callers can test them with errors.Is
// and show DetailError.Message to end users. Anything else is wrapped in a
// *RegistryError.
package service

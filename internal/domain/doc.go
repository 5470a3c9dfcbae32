// Package domain contains the core entities of the configuration registry:
// projects, configs, environments, per-environment config instances and the
// operation log. It is independent of storage and transport.
package domain

// Package registry is the catalog of reusable units contributed by modules.
//
// Modules register their ops, resources, graphs, executors and loggers at
// startup. Jobs look units up by kind and name and bind them to their own
// configuration. Optional HCL manifests describe the schema a unit is
// expected to expose; Validate keeps the Go units and the manifests in sync
// and checks that every registered schema is well formed.
package registry

// Package unit defines the five kinds of configurable unit a job is built
// from: ops, resources, graphs, executors and loggers.
//
// Every kind carries a name, a configuration schema and an execution
// behavior, and implements binding.Configurable. Binding a unit returns a
// unit of the same kind with the same behavior; only its configuration
// contract and resolution path change.
package unit

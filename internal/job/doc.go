// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package job assembles configurable units into an executable job and runs
// it.
//
// A Builder collects ops, graphs, resources, loggers and at most one
// executor. Build flattens graphs into their member ops, addressed as
// `graph.member`, claims every name in the job's namespaces and checks the
// dependency graph for unknown references and cycles. Bound and hand-authored
// units are treated the same way; the job only ever sees the unit
// interfaces.
//
// Run takes the raw run configuration, rejects entries that do not belong to
// any node, validates every node's outer configuration up front and then
// hands one task per node to the executor's runner. Each task resolves its
// own unit's configuration at the moment it runs. Resources are created
// before the ops that use them and destroyed after the run in reverse order
// of creation.
package job

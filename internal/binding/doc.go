// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package binding fixes or re-derives the configuration of a configurable
// unit at assembly time, producing a new unit that exposes its own
// configuration contract.
//
// A binding is either direct or mapped:
//
//   - Direct: a literal value that already satisfies the unit's schema. It is
//     validated immediately and returned verbatim at resolution time. The
//     bound unit takes no configuration of its own.
//
//   - Mapped: a transform from an outer value to the inner value, plus an
//     outer schema (empty when omitted). The transform runs at resolution
//     time, after the outer value passed validation; its output is then
//     validated against the inner schema.
//
// Bound units are immutable and can be bound again, building a chain of
// layers that resolve outermost first.
//
// Three entry points share one constructor:
//
//	op.Configured(cfg, binding.WithName("eu_session"))       // method
//	binding.Configured(op, cfg, binding.WithName("eu"))      // standalone
//	binding.For(op, schema.New(schema.Int())).Func(fn)       // decorator
package binding

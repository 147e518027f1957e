// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package schema describes the configuration contract of a configurable unit
// and validates configuration values against it.
//
// A Schema is a tree of Fields. Leaves are typed primitives (string, number,
// int, bool) or "any"; inner nodes are objects, lists and maps. Every field may
// carry a description, a default value and an optional flag. A field is
// required when it is neither optional nor defaulted.
//
// Values are cty.Values (github.com/zclconf/go-cty), the same representation
// the HCL toolchain produces, so a schema written as an HCL manifest and a
// value decoded from an HCL or YAML run configuration meet without an extra
// translation layer.
//
// Validation is strict about primitive types: a string is never coerced into a
// number or a bool. Validate reports every problem it finds, not only the
// first, and each problem names the offending field path together with the
// expected and actual shape.
package schema

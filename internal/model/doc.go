// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go representation of a pyslotgen manifest. Its
// core purpose is to turn the raw HCL of a `.pyslots.hcl` file into a
// strongly-typed, in-memory description of the implementation blocks the
// generator expands.
//
// # Core Concepts
//
//   - Manifest: The root container for one file. It names the Go package the
//     generated code belongs to and aggregates its impl and class blocks.
//
//   - ImplBlock: The members attached to one Go type, plus the raw attribute
//     list the option parser consumes.
//
//   - Item: A closed variant over the members of a block: a Method, a Const or
//     an Other item that the generator passes through untouched.
//
//   - Attribute: One annotation on a block or member, in either attribute form
//     (`cfg = "linux"`) or block form (`pyo3 { crate = "..." }`). Attributes
//     keep their source ranges so every diagnostic can point at the exact
//     occurrence that caused it.
//
// Why keep attributes raw?
//
// The manifest parser only checks the shape of the file. Deciding what an
// attribute means (an option, a gate, a lint suppression) belongs to later
// stages, which may also rewrite the list, exactly as they would rewrite
// annotations on a source definition.
package model

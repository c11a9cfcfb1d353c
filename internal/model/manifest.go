// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the types of a parsed manifest.
//
// Why a closed Item variant?
//
// Every member of an implementation block must land in exactly one output
// table, or be explicitly excluded. Making Item a sealed interface with three
// implementations lets the generator switch over it exhaustively and treat the
// third case, Other, as a deliberate pass-through instead of a silent
// fallthrough.
package model

import (
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/hashicorp/hcl/v2"
)

// Manifest is the content of one manifest file.
type Manifest struct {
	Package       string
	Impls         []*ImplBlock
	Classes       []*ClassDef
	FSInformation *FSInfo
}

// ImplBlock is one `impl` block: the members attached to a Go type.
type ImplBlock struct {
	// SelfType is the Go type expression of the receiver, e.g. "*Vector".
	SelfType  string
	TypeRange hcl.Range
	DefRange  hcl.Range

	// Trait and TypeParams are recorded so the generator can reject them.
	Trait      *Attribute
	TypeParams *Attribute

	Attrs []*Attribute
	Items []Item

	FSInformation *FSInfo
}

// TypeName returns the receiver type without pointer indirection.
func (b *ImplBlock) TypeName() string {
	return strings.TrimPrefix(b.SelfType, "*")
}

// IsPointer reports whether the receiver is a pointer type.
func (b *ImplBlock) IsPointer() bool {
	return strings.HasPrefix(b.SelfType, "*")
}

// HasTypeParams reports whether the block declares type parameters, either
// in its label or through a type_params attribute.
func (b *ImplBlock) HasTypeParams() bool {
	return b.TypeParams != nil || strings.ContainsAny(b.SelfType, "[]")
}

// Item is one member of an implementation block.
type Item interface {
	itemNode()
	ItemName() string
	ItemRange() hcl.Range
}

// Method is a `method` member.
type Method struct {
	Name      string
	Attrs     []*Attribute
	NameRange hcl.Range
	DefRange  hcl.Range

	// Decl is the full Go declaration of a library-authored method. It is nil
	// for methods that bind to user code.
	Decl jen.Code
}

// Const is a `const` member.
type Const struct {
	Name      string
	Attrs     []*Attribute
	NameRange hcl.Range
	DefRange  hcl.Range
}

// Other is any other member kind, such as a nested type declaration.
type Other struct {
	Kind     string
	Name     string
	Body     hcl.Body
	DefRange hcl.Range
}

func (*Method) itemNode() {}
func (*Const) itemNode()  {}
func (*Other) itemNode()  {}

func (m *Method) ItemName() string { return m.Name }
func (c *Const) ItemName() string  { return c.Name }
func (o *Other) ItemName() string  { return o.Name }

func (m *Method) ItemRange() hcl.Range { return m.DefRange }
func (c *Const) ItemRange() hcl.Range  { return c.DefRange }
func (o *Other) ItemRange() hcl.Range  { return o.DefRange }

// ClassDef is a `class` block describing a simple enum type whose protocol
// slots default to library implementations.
type ClassDef struct {
	Name     string
	Variants []Variant
	Defaults ClassDefaults
	DefRange hcl.Range

	FSInformation *FSInfo
}

// Variant maps an external variant name to the Go constant holding it.
type Variant struct {
	Name  string
	Ident string
	Range hcl.Range
}

// ClassDefaults selects which library defaults a class receives.
type ClassDefaults struct {
	Repr    bool `hcl:"repr,optional"`
	Int     bool `hcl:"int,optional"`
	Richcmp bool `hcl:"richcmp,optional"`
}

// AllClassDefaults enables every library default.
func AllClassDefaults() ClassDefaults {
	return ClassDefaults{Repr: true, Int: true, Richcmp: true}
}

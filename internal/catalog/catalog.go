// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package catalog holds the fixed set of SQL patches the tool can apply.
// Entries are declared once at package level and are never mutated; every
// accessor hands out copies so callers cannot alter the registry.
package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Lookup when no patch has the requested name.
var ErrNotFound = errors.New("patch not found")

// Patch is a named set of SQL statements plus the tables they touch.
type Patch struct {
	// Name is the unique key shown to the user.
	Name string
	// Description explains what the patch changes.
	Description string
	// BackupTables lists the tables snapshotted before the patch runs.
	BackupTables []string
	// Statements run strictly in order; a failure stops the sequence.
	Statements []string
}

func (p Patch) clone() Patch {
	p.BackupTables = append([]string(nil), p.BackupTables...)
	p.Statements = append([]string(nil), p.Statements...)
	return p
}

// Lookup returns a copy of the patch with the given name.
func Lookup(name string) (Patch, error) {
	for _, p := range patches {
		if p.Name == name {
			return p.clone(), nil
		}
	}
	return Patch{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Names returns patch names in declaration order.
func Names() []string {
	out := make([]string, len(patches))
	for i, p := range patches {
		out[i] = p.Name
	}
	return out
}

// All returns copies of every patch in declaration order.
func All() []Patch {
	out := make([]Patch, len(patches))
	for i, p := range patches {
		out[i] = p.clone()
	}
	return out
}

// Tables returns every table named by any patch, deduplicated, in first-seen
// order. It is the allow-list for identifiers interpolated into SQL.
func Tables() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range patches {
		for _, t := range p.BackupTables {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

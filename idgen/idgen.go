// SPDX-License-Identifier: GPL-3.0-or-later

// Package idgen contains identifier sources for simulation entities.
//
// A simulation context owns exactly one [Source] and passes it to every
// call site creating nodes, interfaces, edges, packets, and events, so
// that two simulations never share counters and tests can obtain
// predictable identifiers using [NewSequence].
package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// Source generates unique identifiers.
type Source interface {
	// NewID returns a new identifier, unique within the source.
	NewID() string
}

// Sequence is a deterministic [Source] returning prefix1, prefix2, etc.
//
// Construct using [NewSequence].
//
// This type IS NOT goroutine safe.
type Sequence struct {
	// next is the next value to emit.
	next uint64

	// prefix is prepended to each identifier.
	prefix string
}

// NewSequence creates a new [*Sequence] starting at one.
func NewSequence(prefix string) *Sequence {
	return &Sequence{next: 1, prefix: prefix}
}

// Ensure [*Sequence] implements [Source].
var _ Source = &Sequence{}

// NewID implements [Source].
func (s *Sequence) NewID() string {
	value := s.next
	s.next++
	return s.prefix + strconv.FormatUint(value, 10)
}

// UUID is a [Source] returning random version 4 UUIDs.
//
// The zero value is ready to use.
type UUID struct{}

// Ensure [UUID] implements [Source].
var _ Source = UUID{}

// NewID implements [Source].
func (UUID) NewID() string {
	return uuid.NewString()
}

// SPDX-License-Identifier: GPL-3.0-or-later

package idgen_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rbmk-project/protosim/idgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	t.Run("emits prefixed increasing values", func(t *testing.T) {
		seq := idgen.NewSequence("n")
		assert.Equal(t, "n1", seq.NewID())
		assert.Equal(t, "n2", seq.NewID())
		assert.Equal(t, "n3", seq.NewID())
	})

	t.Run("independent sequences keep independent counters", func(t *testing.T) {
		left, right := idgen.NewSequence("x"), idgen.NewSequence("x")
		assert.Equal(t, left.NewID(), right.NewID())
	})
}

func TestUUID(t *testing.T) {
	src := idgen.UUID{}
	first, second := src.NewID(), src.NewID()
	assert.NotEqual(t, first, second)
	_, err := uuid.Parse(first)
	require.NoError(t, err)
}

// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler_test

import (
	"testing"

	"github.com/rbmk-project/protosim/packet"
	"github.com/rbmk-project/protosim/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue(t *testing.T) {
	t.Run("equal times keep insertion order", func(t *testing.T) {
		var q scheduler.EventQueue
		for _, ev := range []*packet.Event{
			{ID: "five", Time: 5},
			{ID: "two-first", Time: 2},
			{ID: "two-second", Time: 2},
			{ID: "eight", Time: 8},
		} {
			q.Push(ev)
		}
		require.Equal(t, 4, q.Len())

		var got []string
		for {
			ev, ok := q.Pop()
			if !ok {
				break
			}
			got = append(got, ev.ID)
		}
		assert.Equal(t, []string{"two-first", "two-second", "five", "eight"}, got)
		assert.Equal(t, 0, q.Len())
	})

	t.Run("peek and clear", func(t *testing.T) {
		var q scheduler.EventQueue
		_, ok := q.Peek()
		assert.False(t, ok)

		q.Push(&packet.Event{ID: "b", Time: 3})
		q.Push(&packet.Event{ID: "a", Time: 1})
		ev, ok := q.Peek()
		require.True(t, ok)
		assert.Equal(t, "a", ev.ID)
		assert.Equal(t, 2, q.Len())

		events := q.Events()
		events[0] = nil
		ev, _ = q.Peek()
		assert.Equal(t, "a", ev.ID, "Events returns a copy")

		q.Clear()
		_, ok = q.Pop()
		assert.False(t, ok)
	})
}

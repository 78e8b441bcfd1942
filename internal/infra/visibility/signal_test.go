package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal_SetNotifiesOnChangeOnly(t *testing.T) {
	s := NewSignal(true)
	var seen []bool
	s.Subscribe(func(v bool) { seen = append(seen, v) })

	s.Set(true) // no change
	s.Set(false)
	s.Set(false) // no change
	s.Set(true)

	assert.Equal(t, []bool{false, true}, seen)
	assert.True(t, s.Visible())
}

func TestSignal_DisposerStopsDelivery(t *testing.T) {
	s := NewSignal(true)
	calls := 0
	cancel := s.Subscribe(func(bool) { calls++ })

	s.Set(false)
	cancel()
	cancel() // disposing twice is fine
	s.Set(true)

	assert.Equal(t, 1, calls)
}

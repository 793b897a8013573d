package canvas

import (
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagesOf(as []Assignment) []int {
	out := make([]int, 0, len(as))
	for _, a := range as {
		out = append(out, a.PageIndex)
	}
	return out
}

func TestPool_AssignKeepsVisibleSlots(t *testing.T) {
	p := NewPool(3)

	first := p.Assign([]int{0, 1, 2})
	assert.Equal(t, []int{0, 1, 2}, pagesOf(first))
	for _, a := range first {
		a.Slot.Prepare(a.PageIndex, 0, 10, 10)
	}
	slot1, ok := p.SlotFor(1)
	require.True(t, ok)
	token1 := slot1.Token()

	second := p.Assign([]int{1, 2, 3})
	assert.Equal(t, []int{3}, pagesOf(second))

	again, ok := p.SlotFor(1)
	require.True(t, ok)
	assert.Same(t, slot1, again)
	assert.Equal(t, token1, slot1.Token())

	_, ok = p.SlotFor(0)
	assert.False(t, ok)
}

func TestPool_RecyclingInvalidatesToken(t *testing.T) {
	p := NewPool(1)
	a := p.Assign([]int{0})
	require.Len(t, a, 1)
	token := a[0].Slot.Prepare(0, 0, 10, 10)

	b := p.Assign([]int{5})
	require.Len(t, b, 1)
	assert.Same(t, a[0].Slot, b[0].Slot)

	ran := a[0].Slot.Draw(token, func(*Canvas, *gg.Context) {})
	assert.False(t, ran)
}

func TestPool_HidesUnusedSlots(t *testing.T) {
	p := NewPool(2)
	for _, a := range p.Assign([]int{0, 1}) {
		a.Slot.Prepare(a.PageIndex, 0, 10, 10)
	}

	p.Assign([]int{0})

	shown := 0
	for _, s := range p.Slots() {
		c, _ := s.Snapshot()
		if c.Display {
			shown++
		}
	}
	assert.Equal(t, 1, shown)
}

func TestPool_MorePagesThanSlots(t *testing.T) {
	p := NewPool(2)
	got := p.Assign([]int{4, 5, 6})
	assert.Equal(t, []int{4, 5}, pagesOf(got))
}

func TestPool_Reset(t *testing.T) {
	p := NewPool(2)
	p.Assign([]int{0, 1})
	p.Reset()

	assert.Len(t, p.Assign([]int{0, 1}), 2)
}

func TestPageLabel(t *testing.T) {
	assert.Equal(t, "旧 第 2 / 9 页", PageLabel(LocaleZH, "old", 2, 9))
	assert.Equal(t, "新 第 1 / 1 页", PageLabel(LocaleZH, "new", 1, 1))
	assert.Equal(t, "New page 3 / 4", PageLabel(LocaleEN, "new", 3, 4))
}

func TestLoadLabelFace_FallsBackToEnglish(t *testing.T) {
	face, locale, err := LoadLabelFace("", LocaleZH)
	require.NoError(t, err)
	assert.NotNil(t, face)
	assert.Equal(t, LocaleEN, locale)

	_, _, err = LoadLabelFace("/no/such/font.ttf", LocaleZH)
	assert.Error(t, err)
}

package canvas

import (
	"image"
	"image/draw"
	"sync"

	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/fogleman/gg"
)

// DrawnBox records one difference rectangle painted on a canvas.
type DrawnBox struct {
	X, Y, Width, Height float64
	Side                models.Side
	DiffIndex           int
}

// Canvas is an in-memory page surface positioned inside a pane.
type Canvas struct {
	PageIndex int
	Top       float64
	Width     int
	Height    int
	Display   bool
	Label     string
	Boxes     []DrawnBox
	dc        *gg.Context
}

// Slot is one pooled canvas plus the generation token that guards it against
// stale asynchronous draws.
type Slot struct {
	mu     sync.Mutex
	index  int
	token  uint64
	canvas Canvas
}

func newSlot(index int) *Slot {
	return &Slot{index: index, canvas: Canvas{PageIndex: -1}}
}

// Index is the slot's position in the pool.
func (s *Slot) Index() int {
	return s.index
}

// Token returns the current generation.
func (s *Slot) Token() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Prepare claims the slot for a page: it bumps the token, resizes and clears
// the surface and returns the new token.
func (s *Slot) Prepare(pageIndex int, top float64, width, height int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s.canvas = Canvas{
		PageIndex: pageIndex,
		Top:       top,
		Width:     width,
		Height:    height,
		Display:   true,
		dc:        gg.NewContext(width, height),
	}
	return s.token
}

// Draw runs fn on the surface only if token is still current. It reports
// whether fn ran.
func (s *Slot) Draw(token uint64, fn func(c *Canvas, dc *gg.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token || s.canvas.dc == nil {
		return false
	}
	fn(&s.canvas, s.canvas.dc)
	return true
}

// Release hides the slot and invalidates any draw in flight.
func (s *Slot) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.canvas.Display = false
	s.canvas.PageIndex = -1
}

// Snapshot copies the slot's visible state. The image is a copy.
func (s *Slot) Snapshot() (Canvas, *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.canvas
	c.dc = nil
	c.Boxes = append([]DrawnBox(nil), s.canvas.Boxes...)
	if s.canvas.dc == nil {
		return c, nil
	}
	src := s.canvas.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return c, dst
}

// Assignment pairs a slot with the page it must render.
type Assignment struct {
	Slot      *Slot
	PageIndex int
}

// Pool is a fixed set of slots recycled as the visible window moves. Pool
// bookkeeping is confined to the caller's loop; slots themselves are safe for
// concurrent draws.
type Pool struct {
	slots  []*Slot
	byPage map[int]*Slot
}

// NewPool creates size slots.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{byPage: make(map[int]*Slot, size)}
	for i := 0; i < size; i++ {
		p.slots = append(p.slots, newSlot(i))
	}
	return p
}

// Size is the number of slots.
func (p *Pool) Size() int {
	return len(p.slots)
}

// Slots returns every slot in pool order.
func (p *Pool) Slots() []*Slot {
	return p.slots
}

// SlotFor returns the slot currently holding pageIndex.
func (p *Pool) SlotFor(pageIndex int) (*Slot, bool) {
	s, ok := p.byPage[pageIndex]
	return s, ok
}

// Assign keeps slots whose page is still visible, recycles the rest and
// returns the pages that need rendering. Pages beyond the pool size are
// ignored.
func (p *Pool) Assign(visiblePages []int) []Assignment {
	wanted := make(map[int]bool, len(visiblePages))
	for _, page := range visiblePages {
		wanted[page] = true
	}

	var free []*Slot
	inUse := make(map[*Slot]bool, len(p.byPage))
	for page, slot := range p.byPage {
		if wanted[page] {
			inUse[slot] = true
			continue
		}
		delete(p.byPage, page)
	}
	for _, slot := range p.slots {
		if !inUse[slot] {
			free = append(free, slot)
		}
	}

	var out []Assignment
	for _, page := range visiblePages {
		if _, ok := p.byPage[page]; ok {
			continue
		}
		if len(free) == 0 {
			break
		}
		slot := free[0]
		free = free[1:]
		slot.Release()
		p.byPage[page] = slot
		out = append(out, Assignment{Slot: slot, PageIndex: page})
	}
	for _, slot := range free {
		if slot.canvasShown() {
			slot.Release()
		}
	}
	return out
}

// Reset releases every slot so the next Assign re-renders all visible pages.
func (p *Pool) Reset() {
	for _, slot := range p.slots {
		slot.Release()
	}
	p.byPage = make(map[int]*Slot, len(p.slots))
}

func (s *Slot) canvasShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Display
}

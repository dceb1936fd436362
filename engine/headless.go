package engine

// Headless is a Platform without a window, for dry runs and tests.
type Headless struct {
	Width  int
	Height int
	Title  string

	closed bool
	polls  int
}

func NewHeadless(width, height int) *Headless {
	return &Headless{Width: width, Height: height}
}

func (h *Headless) PollEvents()                    { h.polls++ }
func (h *Headless) ShouldClose() bool              { return h.closed }
func (h *Headless) RequestClose()                  { h.closed = true }
func (h *Headless) SetTitle(title string)          { h.Title = title }
func (h *Headless) GetFramebufferSize() (int, int) { return h.Width, h.Height }

// Polls is the number of PollEvents calls so far.
func (h *Headless) Polls() int { return h.polls }

var _ Platform = (*Headless)(nil)

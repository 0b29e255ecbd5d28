// AngelaMos | 2026
// controller.go

// Package palette implements the command palette: a keyboard driven cursor
// over the entitlement-filtered directory search results.
package palette

import (
	"slices"
	"strings"

	"github.com/carterperez-dev/templates/resource-directory/internal/catalog"
	"github.com/carterperez-dev/templates/resource-directory/internal/entitlement"
)

type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

type Key int

const (
	KeyArrowDown Key = iota
	KeyArrowUp
	KeyEnter
	KeyEscape
	KeyToggle
)

func ParseKey(s string) (Key, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrowdown", "down":
		return KeyArrowDown, true
	case "arrowup", "up":
		return KeyArrowUp, true
	case "enter":
		return KeyEnter, true
	case "escape", "esc":
		return KeyEscape, true
	case "mod+k", "meta+k", "ctrl+k", "toggle":
		return KeyToggle, true
	default:
		return 0, false
	}
}

type Navigation struct {
	ResourceID string
	Type       catalog.ResourceType
	URL        string
}

// Snapshot is a consistent copy of the controller state: results and
// selection always come from the same recompute.
type Snapshot struct {
	State    State
	Query    string
	Searched bool
	Results  []catalog.Resource
	Selected int
	Epoch    uint64
}

// Controller is not safe for concurrent use; callers serialize access.
type Controller struct {
	catalog  *catalog.Catalog
	viewer   entitlement.Viewer
	state    State
	query    string
	results  []catalog.Resource
	selected int
	epoch    uint64
}

func NewController(c *catalog.Catalog, v entitlement.Viewer) *Controller {
	if c == nil {
		c = catalog.Empty()
	}
	return &Controller{
		catalog: c,
		viewer:  v,
		state:   StateClosed,
		results: []catalog.Resource{},
	}
}

func (c *Controller) Open() {
	c.state = StateOpen
	c.epoch++
	c.query = ""
	c.recompute()
}

func (c *Controller) Close() {
	c.state = StateClosed
	c.epoch++
	c.query = ""
	c.recompute()
}

func (c *Controller) Toggle() {
	if c.state == StateOpen {
		c.Close()
		return
	}
	c.Open()
}

// SetQuery replaces the query and the results in one step and moves the
// cursor back to the first result. It has no effect while closed.
func (c *Controller) SetQuery(q string) bool {
	if c.state != StateOpen {
		return false
	}
	c.query = q
	c.recompute()
	return true
}

func (c *Controller) SetViewer(v entitlement.Viewer) {
	c.viewer = v
	c.recompute()
}

// ApplyCatalog installs a freshly fetched catalog, unless the palette was
// opened or closed since epoch was read.
func (c *Controller) ApplyCatalog(epoch uint64, cat *catalog.Catalog) bool {
	if epoch != c.epoch || cat == nil {
		return false
	}
	c.catalog = cat
	c.recompute()
	return true
}

func (c *Controller) HandleKey(k Key) (Navigation, bool) {
	if k == KeyToggle {
		c.Toggle()
		return Navigation{}, false
	}

	if c.state != StateOpen {
		return Navigation{}, false
	}

	n := len(c.results)

	switch k {
	case KeyArrowDown:
		c.selected = (c.selected + 1) % max(n, 1)
	case KeyArrowUp:
		if n == 0 {
			c.selected = 0
		} else {
			c.selected = (c.selected - 1 + n) % n
		}
	case KeyEnter:
		if n == 0 {
			return Navigation{}, false
		}
		target := c.results[c.selected]
		c.Close()
		return Navigation{
			ResourceID: target.ID,
			Type:       target.Type,
			URL:        target.URL,
		}, true
	case KeyEscape:
		c.Close()
	}

	return Navigation{}, false
}

func (c *Controller) recompute() {
	c.results = catalog.Search(c.catalog, c.query, c.viewer)
	c.selected = 0
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Selected() int {
	return c.selected
}

func (c *Controller) Results() []catalog.Resource {
	return slices.Clone(c.results)
}

func (c *Controller) Epoch() uint64 {
	return c.epoch
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:    c.state,
		Query:    c.query,
		Searched: catalog.Searchable(c.query),
		Results:  slices.Clone(c.results),
		Selected: c.selected,
		Epoch:    c.epoch,
	}
}

package presentation

import "net/url"

// MenuQueryParam carries the mobile menu state between requests.
const MenuQueryParam = "menu"

type MenuState int

const (
	MenuClosed MenuState = iota
	MenuOpen
)

func (s MenuState) String() string {
	if s == MenuOpen {
		return "open"
	}
	return "closed"
}

// ParseMenuState reads the state from a query value. Anything but "open" is
// closed.
func ParseMenuState(v string) MenuState {
	if v == MenuOpen.String() {
		return MenuOpen
	}
	return MenuClosed
}

// MobileMenu is the two-state menu of narrow layouts. It starts closed and has
// no terminal state.
type MobileMenu struct {
	state MenuState
}

func NewMobileMenu(initial MenuState) *MobileMenu {
	return &MobileMenu{state: initial}
}

// ToggleButton flips between closed and open.
func (m *MobileMenu) ToggleButton() {
	if m.state == MenuOpen {
		m.state = MenuClosed
		return
	}
	m.state = MenuOpen
}

// NavigationActivated closes an open menu. It is a no-op when closed.
func (m *MobileMenu) NavigationActivated() {
	m.state = MenuClosed
}

func (m *MobileMenu) State() MenuState {
	return m.state
}

func (m *MobileMenu) IsOpen() bool {
	return m.state == MenuOpen
}

// ToggleHref is where the menu button leads: currentPath carrying the state
// the menu would have after ToggleButton.
func (m *MobileMenu) ToggleHref(currentPath string) string {
	next := NewMobileMenu(m.state)
	next.ToggleButton()
	if !next.IsOpen() {
		return currentPath
	}
	q := url.Values{}
	q.Set(MenuQueryParam, next.State().String())
	return currentPath + "?" + q.Encode()
}

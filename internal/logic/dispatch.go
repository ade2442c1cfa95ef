package logic

import (
	"fmt"
	"time"
)

// Action is a logical operator input resolved from a touch point.
type Action string

const (
	ActionNone      Action = ""
	ActionTare      Action = "TARE"
	ActionStore     Action = "STORE"
	ActionReset     Action = "RESET"
	ActionCalibrate Action = "CALIBRATE"
	ActionDecimal   Action = "."
	ActionClear     Action = "C"
	ActionEnter     Action = "E"
)

// DigitAction returns the keypad action for digit d (0-9).
func DigitAction(d int) Action {
	return Action(string(rune('0' + d)))
}

// IsDigit reports whether a is one of the keypad digits.
func (a Action) IsDigit() bool {
	return len(a) == 1 && a[0] >= '0' && a[0] <= '9'
}

// Char returns the keypad character for single-character actions.
func (a Action) Char() byte {
	if len(a) != 1 {
		return 0
	}
	return a[0]
}

// Point is a touch location in screen coordinates.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned button area. It is open: points lying on any
// edge are outside.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether p lies strictly inside r.
func (r Rect) Contains(p Point) bool {
	return p.X > r.X && p.X < r.X+r.W && p.Y > r.Y && p.Y < r.Y+r.H
}

// Overlaps reports whether the interiors of r and o intersect.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Region binds a rectangle to the action it triggers.
type Region struct {
	Rect   Rect
	Action Action
	Label  string
}

// Layout is the static set of hit regions for each mode.
type Layout struct {
	Normal []Region
	Keypad []Region
}

// Button and keypad geometry of the 480x320 panel.
const (
	ButtonW = 100
	ButtonH = 40
	ButtonY = 200

	KeypadX       = 240
	KeypadY       = 40
	KeyW          = 60
	KeyH          = 40
	KeySpacing    = 10
	ClearKeyWidth = KeyW*3 + KeySpacing*2
)

var keypadKeys = [4][3]Action{
	{"1", "2", "3"},
	{"4", "5", "6"},
	{"7", "8", "9"},
	{ActionDecimal, "0", ActionEnter},
}

// DefaultLayout returns the button row for normal mode and the keypad for
// calibration mode.
func DefaultLayout() Layout {
	l := Layout{
		Normal: []Region{
			{Rect: Rect{X: 10, Y: ButtonY, W: ButtonW, H: ButtonH}, Action: ActionTare, Label: "Tare"},
			{Rect: Rect{X: 120, Y: ButtonY, W: ButtonW, H: ButtonH}, Action: ActionStore, Label: "Store"},
			{Rect: Rect{X: 230, Y: ButtonY, W: ButtonW, H: ButtonH}, Action: ActionReset, Label: "Reset"},
			{Rect: Rect{X: 340, Y: ButtonY, W: ButtonW, H: ButtonH}, Action: ActionCalibrate, Label: "Calib"},
		},
	}
	for row, keys := range keypadKeys {
		for col, a := range keys {
			l.Keypad = append(l.Keypad, Region{
				Rect: Rect{
					X: KeypadX + col*(KeyW+KeySpacing),
					Y: KeypadY + row*(KeyH+KeySpacing),
					W: KeyW,
					H: KeyH,
				},
				Action: a,
				Label:  string(a),
			})
		}
	}
	l.Keypad = append(l.Keypad, Region{
		Rect:   Rect{X: KeypadX, Y: KeypadY + 4*(KeyH+KeySpacing), W: ClearKeyWidth, H: KeyH},
		Action: ActionClear,
		Label:  "C",
	})
	return l
}

// Regions returns the hit regions active in mode.
func (l Layout) Regions(mode Mode) []Region {
	if mode == ModeCalibrating {
		return l.Keypad
	}
	return l.Normal
}

// Dispatch returns the action whose region contains p, or ActionNone.
func (l Layout) Dispatch(p Point, mode Mode) Action {
	for _, r := range l.Regions(mode) {
		if r.Rect.Contains(p) {
			return r.Action
		}
	}
	return ActionNone
}

// Validate returns an error if two regions of the same mode overlap.
func (l Layout) Validate() error {
	for _, mode := range []Mode{ModeNormal, ModeCalibrating} {
		regions := l.Regions(mode)
		for i := range regions {
			for j := i + 1; j < len(regions); j++ {
				if regions[i].Rect.Overlaps(regions[j].Rect) {
					return fmt.Errorf("%s layout: %q overlaps %q", mode, regions[i].Label, regions[j].Label)
				}
			}
		}
	}
	return nil
}

// Debouncer enforces a minimum interval between dispatched actions so a held
// finger does not trigger repeatedly.
type Debouncer struct {
	interval time.Duration
	last     time.Time
	armed    bool
}

// NewDebouncer creates a Debouncer with the given settle interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Ready reports whether a new action may be dispatched at now.
func (d *Debouncer) Ready(now time.Time) bool {
	return !d.armed || now.Sub(d.last) >= d.interval
}

// Mark records that an action was dispatched at now.
func (d *Debouncer) Mark(now time.Time) {
	d.last = now
	d.armed = true
}

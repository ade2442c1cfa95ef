package logic

// MaxEntryLen is the widest value the keypad field can show.
const MaxEntryLen = 10

// EntryBuffer is the operator's in-progress keypad value. It only ever holds
// digits and at most one decimal point, and never more than MaxEntryLen characters.
type EntryBuffer struct {
	buf        [MaxEntryLen]byte
	n          int
	hasDecimal bool
}

// AppendDigit adds '0'..'9'. Returns false if the key was ignored.
func (e *EntryBuffer) AppendDigit(c byte) bool {
	if c < '0' || c > '9' || e.n == MaxEntryLen {
		return false
	}
	e.buf[e.n] = c
	e.n++
	return true
}

// AppendDecimal adds '.' unless one is already present.
func (e *EntryBuffer) AppendDecimal() bool {
	if e.hasDecimal || e.n == MaxEntryLen {
		return false
	}
	e.buf[e.n] = '.'
	e.n++
	e.hasDecimal = true
	return true
}

// Clear empties the buffer.
func (e *EntryBuffer) Clear() {
	*e = EntryBuffer{}
}

// Len returns the number of characters entered.
func (e *EntryBuffer) Len() int {
	return e.n
}

// Empty reports whether nothing has been entered.
func (e *EntryBuffer) Empty() bool {
	return e.n == 0
}

func (e *EntryBuffer) String() string {
	return string(e.buf[:e.n])
}

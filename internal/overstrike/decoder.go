package overstrike

// State is the position of the decoder inside an emphasis run
type State int

const (
	Normal State = iota
	ULExpectChar
	ULGotCharExpectBS
	ULGotBSExpectChar
	BOExpectChar
	BOGotCharExpectBS
	BOGotBSExpectSame
)

const (
	backspace = 0x08
	del       = 0x7f

	// DefaultCeiling lets every byte above DEL through, so UTF-8 text survives.
	DefaultCeiling byte = 0xff

	// LegacyCeiling replaces everything above '~' with '.'.
	LegacyCeiling byte = 0x7e
)

// Decoder turns a line of glyph/backspace/glyph triads into text tokens
// bracketed by bold and underline markers. Markers are always emitted in
// matching, non-overlapping pairs.
type Decoder struct {
	state     State
	pendingBS bool // Normal saw a backspace after a glyph
	tentative bool // the last glyph of an open run is not yet part of a triad
	ceiling   byte
	out       Builder
}

// NewDecoder creates a decoder replacing bytes above ceiling with '.'
func NewDecoder(ceiling byte) *Decoder {
	return &Decoder{ceiling: ceiling}
}

// State returns the current decoder state
func (d *Decoder) State() State {
	return d.state
}

// Reset discards any partial line
func (d *Decoder) Reset() {
	d.state = Normal
	d.pendingBS = false
	d.tentative = false
	d.out.Take()
}

// Len returns the number of tokens produced so far for this line
func (d *Decoder) Len() int {
	return d.out.Len()
}

// Feed consumes one byte of the current line. Newlines and NULs end a line
// and must go through Finish instead.
func (d *Decoder) Feed(c byte) {
	if c != backspace {
		c = d.mapByte(c)
	}

	switch d.state {
	case Normal:
		d.normal(c)

	case BOExpectChar:
		if c == backspace {
			d.state = BOGotBSExpectSame
			d.tentative = false
			return
		}
		d.out.PushText(c)
		d.state = BOGotCharExpectBS

	case BOGotCharExpectBS:
		if c == backspace {
			d.state = BOGotBSExpectSame
			d.tentative = true
			return
		}
		d.closeRun(BOEnd, true)
		d.normal(c)

	case BOGotBSExpectSame:
		if last, ok := d.out.Last(); ok && last.Kind == Text && last.Ch == c {
			d.state = BOExpectChar
			return
		}
		d.breakRun(BOEnd, c)

	case ULExpectChar:
		if c == backspace {
			d.state = ULGotBSExpectChar
			d.tentative = false
			return
		}
		d.out.PushText(c)
		d.state = ULGotCharExpectBS

	case ULGotCharExpectBS:
		if c == backspace {
			d.state = ULGotBSExpectChar
			d.tentative = true
			return
		}
		d.closeRun(ULEnd, true)
		d.normal(c)

	case ULGotBSExpectChar:
		last, _ := d.out.Last()
		switch {
		case c == backspace:
			// repeated backspace, still waiting for the second glyph
		case c == '_':
			// glyph BS underscore
			d.state = ULExpectChar
		case d.tentative && last.Ch == '_':
			// underscore BS glyph
			d.out.Pop()
			d.out.PushText(c)
			d.state = ULExpectChar
		default:
			d.breakRun(ULEnd, c)
		}
	}
}

// Finish closes any open run and returns the decoded line
func (d *Decoder) Finish() *Line {
	switch d.state {
	case BOExpectChar:
		d.out.Push(Token{Kind: BOEnd})
	case BOGotCharExpectBS:
		d.closeRun(BOEnd, true)
	case BOGotBSExpectSame:
		d.closeRun(BOEnd, d.tentative)
	case ULExpectChar:
		d.out.Push(Token{Kind: ULEnd})
	case ULGotCharExpectBS:
		d.closeRun(ULEnd, true)
	case ULGotBSExpectChar:
		d.closeRun(ULEnd, d.tentative)
	}

	line := &Line{Tokens: d.out.Take()}
	d.Reset()
	return line
}

func (d *Decoder) normal(c byte) {
	if c == backspace {
		if last, ok := d.out.Last(); ok && last.Kind == Text {
			d.pendingBS = true
		}
		return
	}

	if !d.pendingBS {
		d.out.PushText(c)
		return
	}

	d.pendingBS = false
	prev, _ := d.out.Pop()
	switch {
	case c == prev.Ch:
		d.out.Push(Token{Kind: BOStart})
		d.out.PushText(c)
		d.state = BOExpectChar
	case c == '_':
		d.out.Push(Token{Kind: ULStart})
		d.out.PushText(prev.Ch)
		d.state = ULExpectChar
	case prev.Ch == '_':
		d.out.Push(Token{Kind: ULStart})
		d.out.PushText(c)
		d.state = ULExpectChar
	default:
		// Overprinted distinct glyphs: the last one wins.
		d.out.PushText(c)
	}
}

// closeRun ends the open run. A tentative glyph is moved outside the run.
func (d *Decoder) closeRun(end Kind, tentative bool) {
	if tentative {
		g, _ := d.out.Pop()
		d.out.Push(Token{Kind: end})
		d.out.Push(g)
	} else {
		d.out.Push(Token{Kind: end})
	}
	d.state = Normal
	d.tentative = false
}

// breakRun handles a glyph,BS pair whose second glyph does not continue the
// run. A tentative glyph leaves the run and is reclassified by Normal together
// with its backspace; a committed one just closes the run.
func (d *Decoder) breakRun(end Kind, c byte) {
	if d.tentative {
		d.closeRun(end, true)
		d.pendingBS = true
	} else {
		d.closeRun(end, false)
	}
	d.normal(c)
}

func (d *Decoder) mapByte(c byte) byte {
	if c == del {
		return '?'
	}
	if c > d.ceiling {
		return '.'
	}
	return c
}

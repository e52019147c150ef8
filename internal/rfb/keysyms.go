package rfb

import "fmt"

// namedKeysyms maps the X11 keysym values for non-printable keys that
// commonly appear in a captured session to a readable name. This is a
// minimal catalog (spec.md §4.13 / SPEC_FULL.md §4.13): RFB carries raw
// X11 keysyms and a complete keysymdef table runs to thousands of
// entries, far beyond what replaying a capture's typed text needs.
// Unlisted keysyms outside the printable ASCII range fall back to a
// "<0xNNNN>" placeholder.
var namedKeysyms = map[uint32]string{
	0xff08: "<BackSpace>",
	0xff09: "<Tab>",
	0xff0d: "<Return>",
	0xff1b: "<Escape>",
	0xff50: "<Home>",
	0xff51: "<Left>",
	0xff52: "<Up>",
	0xff53: "<Right>",
	0xff54: "<Down>",
	0xff55: "<Page_Up>",
	0xff56: "<Page_Down>",
	0xff57: "<End>",
	0xff63: "<Insert>",
	0xffe1: "<Shift_L>",
	0xffe2: "<Shift_R>",
	0xffe3: "<Control_L>",
	0xffe4: "<Control_R>",
	0xffe9: "<Alt_L>",
	0xffea: "<Alt_R>",
	0xffff: "<Delete>",
}

// KeysymName renders an X11 keysym as typed text: printable ASCII
// keysyms (which share their code point, per the X11 keysym
// specification) render as the literal character; known non-printable
// keys render as a bracketed name; anything else falls back to a
// bracketed hex placeholder.
func KeysymName(keysym uint32) string {
	if keysym >= 0x20 && keysym <= 0x7e {
		return string(rune(keysym))
	}
	if name, ok := namedKeysyms[keysym]; ok {
		return name
	}
	return fmt.Sprintf("<0x%04x>", keysym)
}

package keyboard

// scancodeSet1 maps PS/2 scancode-set-1 make-codes to the character they
// produce under a US QWERTY layout. Break codes (make-code | 0x80) and
// unmapped codes decode to (0, false). This is a direct reimplementation,
// not a port of a library: no Go scancode-decoding package appears
// anywhere in the retrieval pack (the original Rust source leans on the
// pc-keyboard crate, for which there is no Go analogue here).
var scancodeSet1 = map[byte]rune{
	0x02: '1', 0x03: '2', 0x04: '3', 0x05: '4', 0x06: '5',
	0x07: '6', 0x08: '7', 0x09: '8', 0x0A: '9', 0x0B: '0',
	0x0C: '-', 0x0D: '=',

	0x10: 'q', 0x11: 'w', 0x12: 'e', 0x13: 'r', 0x14: 't',
	0x15: 'y', 0x16: 'u', 0x17: 'i', 0x18: 'o', 0x19: 'p',
	0x1A: '[', 0x1B: ']',

	0x1E: 'a', 0x1F: 's', 0x20: 'd', 0x21: 'f', 0x22: 'g',
	0x23: 'h', 0x24: 'j', 0x25: 'k', 0x26: 'l', 0x27: ';',
	0x28: '\'',

	0x2C: 'z', 0x2D: 'x', 0x2E: 'c', 0x2F: 'v', 0x30: 'b',
	0x31: 'n', 0x32: 'm', 0x33: ',', 0x34: '.', 0x35: '/',

	0x39: ' ',  // space
	0x1C: '\n', // enter
}

const breakBit = 0x80

// decodeScancode1 decodes one scancode-set-1 byte. It returns ok=false for
// break codes (key release) and for codes with no mapped character.
func decodeScancode1(scancode byte) (ch rune, ok bool) {
	if scancode&breakBit != 0 {
		return 0, false
	}
	ch, ok = scancodeSet1[scancode]
	return ch, ok
}

// EncodeASCII returns the scancode-set-1 make-code that decodes to ch, for
// callers feeding HandleInterrupt from a real keyboard/terminal that only
// hands them ASCII (cmd/mazkernel's -interactive mode).
func EncodeASCII(ch byte) (scancode byte, ok bool) {
	for code, r := range scancodeSet1 {
		if byte(r) == ch {
			return code, true
		}
	}
	return 0, false
}

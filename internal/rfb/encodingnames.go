package rfb

import "fmt"

// Encoding is an RFB pixel/pseudo encoding identifier, per spec.md §4.7
// and grounded on original_source/lib/struct/constants.py's Encoding
// enum. The named constants cover the encodings this decoder handles plus
// those it rejects or logs by name; EncodingName knows exactly these and
// renders any other id as UNKNOWN.
type Encoding int32

const (
	EncodingRaw                 Encoding = 0
	EncodingCopyRect             Encoding = 1
	EncodingRRE                 Encoding = 2
	EncodingCoRRE                Encoding = 4
	EncodingHextile              Encoding = 5
	EncodingZlib                 Encoding = 6
	EncodingTight                Encoding = 7
	EncodingZlibHex              Encoding = 8
	EncodingZRLE                 Encoding = 16
	EncodingJPEG                 Encoding = 21
	EncodingOpenH264             Encoding = 50
	EncodingTightPNG             Encoding = -260
	EncodingDesktopSize          Encoding = -223
	EncodingLastRect             Encoding = -224
	EncodingCursor               Encoding = -239
	EncodingXCursor              Encoding = -240
	EncodingDesktopName          Encoding = -307
	EncodingExtendedDesktopSize  Encoding = -308
	EncodingFence                Encoding = -312
	EncodingContinuousUpdates    Encoding = -313
	EncodingCursorWithAlpha      Encoding = -314
	EncodingExtendedClipboard    Encoding = -1063131698
)

var encodingNames = map[Encoding]string{
	EncodingRaw:                "RAW",
	EncodingCopyRect:           "COPYRECT",
	EncodingRRE:                "RRE",
	EncodingCoRRE:              "CORRE",
	EncodingHextile:            "HEXTILE",
	EncodingZlib:               "ZLIB",
	EncodingTight:              "TIGHT",
	EncodingZlibHex:            "ZLIBHEX",
	EncodingZRLE:               "ZRLE",
	EncodingJPEG:               "JPEG",
	EncodingOpenH264:           "OPEN_H264",
	EncodingTightPNG:           "TIGHT_PNG",
	EncodingDesktopSize:        "PSEUDO_DESKTOPSIZE",
	EncodingLastRect:           "PSEUDO_LASTRECT",
	EncodingCursor:             "PSEUDO_CURSOR",
	EncodingXCursor:            "PSEUDO_X_CURSOR",
	EncodingDesktopName:        "PSEUDO_DESKTOPNAME",
	EncodingExtendedDesktopSize: "PSEUDO_EXTENDEDDESKTOPSIZE",
	EncodingFence:              "PSEUDO_FENCE",
	EncodingContinuousUpdates:  "PSEUDO_CONTINUOUSUPDATES",
	EncodingCursorWithAlpha:    "PSEUDO_CURSOR_WITH_ALPHA",
	EncodingExtendedClipboard:  "PSEUDO_EXTENDED_CLIPBOARD",
}

// EncodingName renders an encoding id as a readable name, falling back
// to its numeric value for anything not in the catalog.
func EncodingName(e Encoding) string {
	if name, ok := encodingNames[e]; ok {
		return fmt.Sprintf("%s (%d)", name, int32(e))
	}
	return fmt.Sprintf("UNKNOWN (%d)", int32(e))
}

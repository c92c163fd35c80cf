package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Configuration: the annotation or the environment is wrong.
	CfgInfo              Code = 1000
	CfgMalformedDate     Code = 1001
	CfgMonthOutOfRange   Code = 1002
	CfgExpiryNotAfter    Code = 1003
	CfgMissingDate       Code = 1004
	CfgUnknownArgument   Code = 1005
	CfgDuplicateArgument Code = 1006
	CfgBadArgumentSyntax Code = 1007
	CfgUnattached        Code = 1008
	CfgInvalidOverride   Code = 1009

	// Expiry outcomes.
	ExpInfo       Code = 2000
	ExpPastReview Code = 2001
	ExpExpired    Code = 2002

	// IO and Go parse failures of scanned files.
	IOInfo          Code = 3000
	IOLoadFileError Code = 3001
	IOParseError    Code = 3002
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	CfgInfo:              "Configuration information",
	CfgMalformedDate:     "Malformed date",
	CfgMonthOutOfRange:   "Month out of range",
	CfgExpiryNotAfter:    "Expiration date not after review date",
	CfgMissingDate:       "Missing review or expiration date",
	CfgUnknownArgument:   "Unknown annotation argument",
	CfgDuplicateArgument: "Duplicate annotation argument",
	CfgBadArgumentSyntax: "Invalid annotation argument syntax",
	CfgUnattached:        "Annotation not attached to a declaration",
	CfgInvalidOverride:   "Invalid date override",
	ExpInfo:              "Expiry information",
	ExpPastReview:        "Past review date",
	ExpExpired:           "Expired code",
	IOInfo:               "IO information",
	IOLoadFileError:      "Failed to load file",
	IOParseError:         "Failed to parse Go source",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("EXP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// IsConfig reports whether c belongs to the configuration family.
func (c Code) IsConfig() bool {
	return c >= CfgInfo && c < ExpInfo
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

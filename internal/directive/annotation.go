// Package directive finds //bestbefore: annotations in Go source and ties
// each one to the code unit it documents.
//
// An annotation is a line comment that starts exactly with "//bestbefore:"
// (no space, like //go: directives). It is attached to:
//
//   - the package clause, when part of the file's package doc;
//   - a func, method, type, const or var declaration (or a single spec of a
//     grouped declaration), when part of its doc comment;
//   - the statement on the line immediately below it, inside a function body.
//
// Anything else is reported as an unattached annotation.
package directive

import (
	"go/token"
	"strings"
)

// Prefix marks a bestbefore directive comment.
const Prefix = "//bestbefore:"

// UnitKind is the kind of code unit an annotation is attached to.
type UnitKind uint8

const (
	UnitUnknown UnitKind = iota
	UnitPackage
	UnitFunc
	UnitMethod
	UnitType
	UnitConst
	UnitVar
	UnitBlock
	UnitStatement
)

func (k UnitKind) String() string {
	switch k {
	case UnitPackage:
		return "package"
	case UnitFunc:
		return "function"
	case UnitMethod:
		return "method"
	case UnitType:
		return "type"
	case UnitConst:
		return "const"
	case UnitVar:
		return "var"
	case UnitBlock:
		return "block"
	case UnitStatement:
		return "statement"
	}
	return "unknown"
}

// Annotation is one directive attached to a code unit.
type Annotation struct {
	// Pos and End delimit the directive comment itself.
	Pos token.Pos
	End token.Pos
	// Position is Pos resolved against the file set.
	Position token.Position
	// UnitPos is where the annotated unit starts.
	UnitPos token.Pos
	Kind    UnitKind
	// Subject is a display name such as "function Legacy" or "type Old".
	Subject string
	// Raw is the comment text after Prefix.
	Raw string
}

// Problem is a directive that could not be attached to a unit.
type Problem struct {
	Pos      token.Pos
	Position token.Position
	Raw      string
	Message  string
}

// IsDirective reports whether a raw comment text is a bestbefore directive.
func IsDirective(text string) bool {
	return strings.HasPrefix(text, Prefix)
}

func directiveArgs(text string) string {
	return strings.TrimSpace(strings.TrimPrefix(text, Prefix))
}

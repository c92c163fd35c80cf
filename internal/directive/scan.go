package directive

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"
)

type target struct {
	kind    UnitKind
	subject string
	pos     token.Pos
}

// Scan returns the annotations of file and the directives it could not
// attach. src is the content file was parsed from; when nil, trailing
// directives (code before them on the same line) are not detected.
func Scan(fset *token.FileSet, file *ast.File, src []byte) ([]Annotation, []Problem) {
	if file == nil || len(file.Comments) == 0 {
		return nil, nil
	}

	docs := collectDocTargets(file)
	var stmts map[int]target

	var (
		annotations []Annotation
		problems    []Problem
	)
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			if !IsDirective(c.Text) {
				continue
			}
			raw := directiveArgs(c.Text)

			t, ok := docs[cg]
			if !ok {
				if !ownLine(fset, src, c.Pos()) {
					problems = append(problems, Problem{
						Pos:      c.Pos(),
						Position: fset.Position(c.Pos()),
						Raw:      raw,
						Message:  "bestbefore annotation must be on its own line above the annotated code",
					})
					continue
				}
				if stmts == nil {
					stmts = collectStmtTargets(fset, file)
				}
				t, ok = stmts[fset.Position(cg.End()).Line+1]
			}
			if !ok {
				problems = append(problems, Problem{
					Pos:      c.Pos(),
					Position: fset.Position(c.Pos()),
					Raw:      raw,
					Message:  "bestbefore annotation is not attached to a declaration or statement",
				})
				continue
			}

			annotations = append(annotations, Annotation{
				Pos:      c.Pos(),
				End:      c.End(),
				Position: fset.Position(c.Pos()),
				UnitPos:  t.pos,
				Kind:     t.kind,
				Subject:  t.subject,
				Raw:      raw,
			})
		}
	}
	return annotations, problems
}

func collectDocTargets(file *ast.File) map[*ast.CommentGroup]target {
	docs := make(map[*ast.CommentGroup]target)
	if file.Doc != nil {
		docs[file.Doc] = target{kind: UnitPackage, subject: "package " + file.Name.Name, pos: file.Package}
	}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Doc != nil {
				kind, subject := funcSubject(d)
				docs[d.Doc] = target{kind: kind, subject: subject, pos: d.Pos()}
			}
		case *ast.GenDecl:
			kind := genKind(d.Tok)
			if d.Doc != nil {
				docs[d.Doc] = target{kind: kind, subject: genSubject(d), pos: d.Pos()}
			}
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					if s.Doc != nil {
						docs[s.Doc] = target{kind: kind, subject: kind.String() + " " + s.Name.Name, pos: s.Pos()}
					}
				case *ast.ValueSpec:
					if s.Doc != nil {
						docs[s.Doc] = target{kind: kind, subject: kind.String() + " " + joinNames(s.Names), pos: s.Pos()}
					}
				}
			}
		}
	}
	return docs
}

// collectStmtTargets maps a line to the first statement starting on it.
func collectStmtTargets(fset *token.FileSet, file *ast.File) map[int]target {
	stmts := make(map[int]target)
	add := func(list []ast.Stmt, owner string) {
		for _, st := range list {
			line := fset.Position(st.Pos()).Line
			if _, taken := stmts[line]; taken {
				continue
			}
			kind, label := stmtLabel(st)
			stmts[line] = target{kind: kind, subject: label + " in " + owner, pos: st.Pos()}
		}
	}

	for _, decl := range file.Decls {
		owner := "function literal"
		if fd, ok := decl.(*ast.FuncDecl); ok {
			_, owner = funcSubject(fd)
		}
		ast.Inspect(decl, func(n ast.Node) bool {
			switch b := n.(type) {
			case *ast.BlockStmt:
				add(b.List, owner)
			case *ast.CaseClause:
				add(b.Body, owner)
			case *ast.CommClause:
				add(b.Body, owner)
			}
			return true
		})
	}
	return stmts
}

func funcSubject(fd *ast.FuncDecl) (UnitKind, string) {
	if fd.Recv != nil && len(fd.Recv.List) > 0 {
		return UnitMethod, "method (" + types.ExprString(fd.Recv.List[0].Type) + ")." + fd.Name.Name
	}
	return UnitFunc, "function " + fd.Name.Name
}

func genKind(tok token.Token) UnitKind {
	switch tok {
	case token.TYPE:
		return UnitType
	case token.CONST:
		return UnitConst
	case token.VAR:
		return UnitVar
	}
	return UnitUnknown
}

func genSubject(d *ast.GenDecl) string {
	var names []string
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			names = append(names, s.Name.Name)
		case *ast.ValueSpec:
			for _, n := range s.Names {
				names = append(names, n.Name)
			}
		case *ast.ImportSpec:
			return "import declaration"
		}
	}
	const maxNames = 3
	if len(names) > maxNames {
		names = append(names[:maxNames], "...")
	}
	return d.Tok.String() + " " + strings.Join(names, ", ")
}

func joinNames(idents []*ast.Ident) string {
	names := make([]string, 0, len(idents))
	for _, id := range idents {
		names = append(names, id.Name)
	}
	return strings.Join(names, ", ")
}

func stmtLabel(st ast.Stmt) (UnitKind, string) {
	switch st.(type) {
	case *ast.BlockStmt:
		return UnitBlock, "block"
	case *ast.IfStmt:
		return UnitStatement, "if statement"
	case *ast.ForStmt, *ast.RangeStmt:
		return UnitStatement, "loop"
	case *ast.SwitchStmt, *ast.TypeSwitchStmt:
		return UnitStatement, "switch statement"
	case *ast.SelectStmt:
		return UnitStatement, "select statement"
	case *ast.DeclStmt:
		return UnitStatement, "declaration"
	}
	return UnitStatement, "statement"
}

func ownLine(fset *token.FileSet, src []byte, pos token.Pos) bool {
	if src == nil {
		return true
	}
	tf := fset.File(pos)
	if tf == nil {
		return true
	}
	off := tf.Offset(pos)
	start := tf.Offset(tf.LineStart(tf.Line(pos)))
	if start < 0 || off > len(src) || start > off {
		return true
	}
	for _, b := range src[start:off] {
		if b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}

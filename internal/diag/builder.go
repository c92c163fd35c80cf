package diag

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
		Notes:    nil,
	}
}

func NewError(code Code, primary Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary Location, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}

func (d Diagnostic) WithSubject(subject string) Diagnostic {
	d.Subject = subject
	return d
}

package watcher

import "regexp"

// Pattern is a compiled path expression. A pattern that failed to compile is
// kept with its error and never matches.
type Pattern struct {
	expr string
	re   *regexp.Regexp
	err  error
}

func CompilePattern(expr string) Pattern {
	re, err := regexp.Compile(expr)
	return Pattern{expr: expr, re: re, err: err}
}

func (p Pattern) String() string {
	return p.expr
}

func (p Pattern) Err() error {
	return p.err
}

// Match reports whether the expression occurs anywhere in path. Anchors in
// the expression itself still apply.
func (p Pattern) Match(path string) bool {
	if p.re == nil {
		return false
	}

	return p.re.MatchString(path)
}

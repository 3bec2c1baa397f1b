package segment

import (
	"regexp"
	"strings"
)

// symbols maps LaTeX command words to the character used when math is
// rendered as plain text.
var symbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "rho": "ρ", "sigma": "σ", "tau": "τ", "upsilon": "υ", "phi": "φ",
	"varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ", "Pi": "Π",
	"Sigma": "Σ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",

	"sum": "∑", "prod": "∏", "int": "∫", "iint": "∬", "oint": "∮",
	"infty": "∞", "partial": "∂", "nabla": "∇", "pm": "±", "mp": "∓",
	"times": "×", "div": "÷", "cdot": "·", "ast": "∗", "circ": "∘",
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "equiv": "≡", "sim": "∼", "simeq": "≃", "propto": "∝",
	"in": "∈", "notin": "∉", "subset": "⊂", "subseteq": "⊆", "supset": "⊃",
	"supseteq": "⊇", "cup": "∪", "cap": "∩", "emptyset": "∅", "forall": "∀",
	"exists": "∃", "neg": "¬", "land": "∧", "lor": "∨", "wedge": "∧", "vee": "∨",
	"to": "→", "rightarrow": "→", "leftarrow": "←", "Rightarrow": "⇒",
	"Leftarrow": "⇐", "leftrightarrow": "↔", "Leftrightarrow": "⇔", "implies": "⇒",
	"iff": "⇔", "mapsto": "↦", "ldots": "…", "cdots": "⋯", "dots": "…",
	"degree": "°", "angle": "∠", "perp": "⊥", "parallel": "∥",
	"quad": " ", "qquad": "  ", ",": " ", ";": " ", "!": "",
}

// functions are command words rendered as their own name.
var functions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"arcsin": true, "arccos": true, "arctan": true, "sinh": true, "cosh": true,
	"tanh": true, "log": true, "ln": true, "exp": true, "lim": true, "max": true,
	"min": true, "sup": true, "inf": true, "det": true, "gcd": true, "deg": true,
	"arg": true, "mod": true,
}

// structural commands that take arguments or change style.
var structural = map[string]bool{
	"frac": true, "dfrac": true, "tfrac": true, "sqrt": true, "binom": true,
	"text": true, "textbf": true, "textit": true, "mathrm": true, "mathbf": true,
	"mathit": true, "mathbb": true, "mathcal": true, "operatorname": true,
	"left": true, "right": true, "big": true, "Big": true, "bigg": true,
	"begin": true, "end": true, "hat": true, "bar": true, "vec": true, "dot": true,
	"ddot": true, "tilde": true, "overline": true, "underline": true,
	"displaystyle": true, "boxed": true,
}

// IsKnownCommand reports whether name is a LaTeX command word this
// package understands.
func IsKnownCommand(name string) bool {
	_, ok := symbols[name]
	return ok || functions[name] || structural[name]
}

var (
	envWrapRe   = regexp.MustCompile(`\\(?:begin|end)\{[A-Za-z]+\*?\}`)
	spaceRunRe  = regexp.MustCompile(`[ \t]+`)
	alignMarkRe = regexp.MustCompile(`\s*&\s*`)
)

// MathText renders LaTeX source as readable plain text for output formats
// without math typesetting: \frac{a}{b} becomes (a)/(b), \sqrt{x} becomes
// √(x), Greek letters and operators become Unicode. Rows are joined
// with "; ".
func MathText(src string) string {
	return strings.Join(MathRows(src), "; ")
}

// MathRows is MathText split at the source's \\ row breaks. Renderers
// lay out one line per row.
func MathRows(src string) []string {
	s := strings.TrimSpace(src)
	s = envWrapRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `\\`, "\n")
	s = alignMarkRe.ReplaceAllString(s, " ")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(convert(line))
		if line != "" {
			lines = append(lines, spaceRunRe.ReplaceAllString(line, " "))
		}
	}
	return lines
}

// convert rewrites one line of LaTeX. It recurses into brace groups.
func convert(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\':
			name, n := commandAt(s[i:])
			i += n
			b.WriteString(command(name, s, &i))
		case c == '{':
			group, n := braceGroup(s[i:])
			b.WriteString(convert(group))
			i += n
		case c == '}':
			i++
		case c == '^' || c == '_':
			i++
			arg := nextArg(s, &i)
			b.WriteString(script(c, convert(arg)))
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// commandAt returns the command word at s[0] == '\\' and how many bytes it
// spans. Single non-letter commands like \, are returned as-is.
func commandAt(s string) (string, int) {
	j := 1
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	if j == 1 {
		if len(s) > 1 {
			return s[1:2], 2
		}
		return "", 1
	}
	return s[1:j], j
}

func command(name string, s string, i *int) string {
	switch name {
	case "frac", "dfrac", "tfrac":
		num := convert(nextArg(s, i))
		den := convert(nextArg(s, i))
		return wrapTerm(num) + "/" + wrapTerm(den)
	case "binom":
		n := convert(nextArg(s, i))
		k := convert(nextArg(s, i))
		return "C(" + n + ", " + k + ")"
	case "sqrt":
		skipSpace(s, i)
		var index string
		if *i < len(s) && s[*i] == '[' {
			if end := strings.IndexByte(s[*i:], ']'); end > 0 {
				index = convert(s[*i+1 : *i+end])
				*i += end + 1
			}
		}
		arg := convert(nextArg(s, i))
		if index != "" {
			return script('^', index) + "√(" + arg + ")"
		}
		return "√(" + arg + ")"
	case "text", "textbf", "textit", "mathrm", "mathbf", "mathit", "mathbb",
		"mathcal", "operatorname", "boxed", "underline", "displaystyle":
		if name == "displaystyle" {
			return ""
		}
		return convert(nextArg(s, i))
	case "hat", "bar", "vec", "dot", "ddot", "tilde", "overline":
		return convert(nextArg(s, i))
	case "left", "right", "big", "Big", "bigg":
		// The delimiter that follows is kept; a \left. is dropped.
		if *i < len(s) && s[*i] == '.' {
			*i++
		}
		return ""
	case "{", "}", "$", "%", "#", "&", "_":
		return name
	case "|":
		return "‖"
	}
	if sym, ok := symbols[name]; ok {
		return sym
	}
	if functions[name] {
		return name + " "
	}
	return name
}

// nextArg consumes one argument: a brace group or a single character.
func nextArg(s string, i *int) string {
	skipSpace(s, i)
	if *i >= len(s) {
		return ""
	}
	if s[*i] == '{' {
		group, n := braceGroup(s[*i:])
		*i += n
		return group
	}
	if s[*i] == '\\' {
		_, n := commandAt(s[*i:])
		arg := s[*i : *i+n]
		*i += n
		return arg
	}
	arg := s[*i : *i+1]
	*i++
	return arg
}

// braceGroup returns the content of the balanced group at s[0] == '{' and
// the number of bytes consumed. An unbalanced group runs to the end.
func braceGroup(s string) (string, int) {
	depth := 0
	for j := 0; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:j], j + 1
			}
		}
	}
	return s[1:], len(s)
}

func skipSpace(s string, i *int) {
	for *i < len(s) && s[*i] == ' ' {
		*i++
	}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶', '7': '⁷',
	'8': '⁸', '9': '⁹', '+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾', 'n': 'ⁿ',
	'i': 'ⁱ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆', '7': '₇',
	'8': '₈', '9': '₉', '+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎',
}

// script writes a super- or subscript with Unicode characters when every
// rune has one, falling back to ^(x) or _(x).
func script(marker byte, arg string) string {
	table := superscripts
	if marker == '_' {
		table = subscripts
	}
	var b strings.Builder
	for _, r := range arg {
		m, ok := table[r]
		if !ok {
			if len([]rune(arg)) == 1 {
				return string(marker) + arg
			}
			return string(marker) + "(" + arg + ")"
		}
		b.WriteRune(m)
	}
	return b.String()
}

func wrapTerm(s string) string {
	return "(" + strings.TrimSpace(s) + ")"
}

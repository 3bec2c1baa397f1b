package pdfrender

import "strings"

// The core PDF fonts only cover cp1252. Symbols that math rendering and
// chat text commonly produce are spelled out instead of being dropped.
var latinizer = strings.NewReplacer(
	"α", "alpha", "β", "beta", "γ", "gamma", "δ", "delta", "ε", "epsilon",
	"ζ", "zeta", "η", "eta", "θ", "theta", "ϑ", "theta", "ι", "iota",
	"κ", "kappa", "λ", "lambda", "μ", "mu", "ν", "nu", "ξ", "xi", "π", "pi",
	"ρ", "rho", "σ", "sigma", "τ", "tau", "υ", "upsilon", "φ", "phi",
	"χ", "chi", "ψ", "psi", "ω", "omega",
	"Γ", "Gamma", "Δ", "Delta", "Θ", "Theta", "Λ", "Lambda", "Ξ", "Xi",
	"Π", "Pi", "Σ", "Sigma", "Φ", "Phi", "Ψ", "Psi", "Ω", "Omega",

	"∑", "sum ", "∏", "prod ", "∫", "int ", "∬", "iint ", "∮", "oint ",
	"∞", "inf", "∂", "d", "∇", "nabla ", "∓", "-/+", "∗", "*", "∘", "o",
	"≤", "<=", "≥", ">=", "≠", "!=", "≈", "~=", "≡", "==", "∼", "~", "≃", "~=",
	"∝", " prop ", "∈", " in ", "∉", " not in ", "⊂", " subset ", "⊆", " subseteq ",
	"⊃", " supset ", "⊇", " supseteq ", "∪", " U ", "∩", " n ", "∅", "{}",
	"∀", "for all ", "∃", "exists ", "∧", "^", "∨", "v",
	"→", "->", "←", "<-", "⇒", "=>", "⇐", "<=", "↔", "<->", "⇔", "<=>", "↦", "|->",
	"⋯", "...", "∠", "angle ", "⊥", " perp ", "∥", "||", "‖", "||", "√", "sqrt",

	"⁰", "^0", "⁴", "^4", "⁵", "^5", "⁶", "^6", "⁷", "^7", "⁸", "^8", "⁹", "^9",
	"⁺", "^+", "⁻", "^-", "⁼", "^=", "⁽", "^(", "⁾", ")", "ⁿ", "^n", "ⁱ", "^i",
	"₀", "_0", "₁", "_1", "₂", "_2", "₃", "_3", "₄", "_4", "₅", "_5", "₆", "_6",
	"₇", "_7", "₈", "_8", "₉", "_9", "₊", "_+", "₋", "_-", "₌", "_=", "₍", "_(", "₎", ")",

	"\u2009", " ", "\u202f", " ", "\u200b", "",
)

func latinize(s string) string {
	for _, r := range s {
		if r > 0xff {
			return latinizer.Replace(s)
		}
	}
	return s
}

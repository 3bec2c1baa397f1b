package segment

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"display brackets", `before \[x^2\] after`, "before $$x^2$$ after"},
		{"inline parens", `area \(\pi r^2\) here`, `area $\pi r^2$ here`},
		{"multiline display", "\\[\na + b\n\\]", "$$\na + b\n$$"},
		{"doubly escaped display", `\\[\\frac{1}{2}\\]`, `$$\frac{1}{2}$$`},
		{"doubly escaped inline", `\\(\\alpha\\)`, `$\alpha$`},
		{"escaped dollar kept", `costs \$5 and \(x_1\)`, `costs \$5 and $x_1$`},
		{"fence untouched", "```\n\\[raw\\]\n```", "```\n\\[raw\\]\n```"},
		{"inline code untouched", "use `\\(x\\)` literally", "use `\\(x\\)` literally"},
		{"plain text", "nothing to do", "nothing to do"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`mixed \[a\] and \(b_1\) and $$c$$`,
		"```go\nfmt.Println(`\\(x\\)`)\n```\n\\(y^2\\)",
		`\\[\\sum_{i=1}^n i\\]`,
		`price \$10 with $x^2$`,
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTokenize_Kinds(t *testing.T) {
	segs := Tokenize("Intro $x^2$ then\n```go\nfmt.Println(1)\n```\nand $$\\frac{a}{b}$$ done `code`")

	want := []struct {
		kind    Kind
		content string
	}{
		{KindText, "Intro "},
		{KindInlineMath, "x^2"},
		{KindText, " then\n"},
		{KindCode, "fmt.Println(1)"},
		{KindText, "\nand "},
		{KindDisplayMath, `\frac{a}{b}`},
		{KindText, " done "},
		{KindCode, "code"},
	}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segs), segs)
	}
	for i, w := range want {
		if segs[i].Kind != w.kind || segs[i].Content != w.content {
			t.Errorf("segment %d: expected %s %q, got %s %q", i, w.kind, w.content, segs[i].Kind, segs[i].Content)
		}
	}
	if segs[3].Lang != "go" || !segs[3].Fenced {
		t.Errorf("expected fenced go block, got lang=%q fenced=%v", segs[3].Lang, segs[3].Fenced)
	}
	if segs[7].Fenced {
		t.Error("expected inline code to be unfenced")
	}
}

func TestTokenize_UnclosedDisplayMath(t *testing.T) {
	segs := Tokenize("$$x^2 + y^2")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(segs), segs)
	}
	if segs[0].Kind != KindDisplayMath {
		t.Errorf("expected display-math, got %s", segs[0].Kind)
	}
	if segs[0].Content != "x^2 + y^2" {
		t.Errorf("expected %q, got %q", "x^2 + y^2", segs[0].Content)
	}
}

func TestTokenize_UnclosedDelimitersStayLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"backtick", "an `unmatched backtick"},
		{"fence", "```go\nstill streaming"},
		{"currency", "costs $5 and $10 total"},
		{"lone dollar", "just $ sign"},
		{"escaped dollar", `price \$x^2\$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Tokenize(tt.in)
			if len(segs) != 1 || segs[0].Kind != KindText {
				t.Fatalf("expected one text segment, got %+v", segs)
			}
			if segs[0].Content != tt.in {
				t.Errorf("expected %q, got %q", tt.in, segs[0].Content)
			}
		})
	}
}

func TestTokenize_Environment(t *testing.T) {
	in := "See:\n\\begin{align}a &= b \\\\ c &= d\\end{align}\nok"
	segs := Tokenize(in)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[1].Kind != KindDisplayMath {
		t.Fatalf("expected display-math, got %s", segs[1].Kind)
	}
	if !strings.HasPrefix(segs[1].Content, `\begin{align}`) || !strings.HasSuffix(segs[1].Content, `\end{align}`) {
		t.Errorf("expected environment kept whole, got %q", segs[1].Content)
	}

	segs = Tokenize("\\begin{matrix} 1 & 2")
	if len(segs) != 1 || segs[0].Kind != KindDisplayMath {
		t.Errorf("expected unclosed environment to become display math, got %+v", segs)
	}
}

func TestTokenize_Coverage(t *testing.T) {
	inputs := []string{
		"plain text only",
		"a $x_1$ b $$y$$ c",
		"```python\nprint(1)\n```\ntail",
		"| a | `b` |\n|---|---|\n| $c^2$ | d |",
		`mixed \(p\) and \[q\] with \$ kept`,
		"",
	}
	for _, in := range inputs {
		norm := Normalize(in)
		got := Join(Tokenize(norm))
		if got != norm {
			t.Errorf("coverage broken for %q: expected %q, got %q", in, norm, got)
		}
	}
}

func TestWrapBareMath_DisplayLine(t *testing.T) {
	segs := WrapBareMath(Tokenize("Result:\n\\frac{a}{b} = \\sqrt{c}\nnext line"))
	var found bool
	for _, s := range segs {
		if s.Kind == KindDisplayMath {
			found = true
			if s.Content != `\frac{a}{b} = \sqrt{c}` {
				t.Errorf("expected whole line as math, got %q", s.Content)
			}
		}
	}
	if !found {
		t.Fatalf("expected a display-math segment, got %+v", segs)
	}
	if Join(segs) != "Result:\n$$\\frac{a}{b} = \\sqrt{c}$$\nnext line" {
		t.Errorf("unexpected join: %q", Join(segs))
	}
}

func TestWrapBareMath_InlineInProse(t *testing.T) {
	segs := WrapBareMath(Tokenize(`The angle \theta_1 is measured against the horizontal axis`))
	var inline []string
	for _, s := range segs {
		if s.Kind == KindInlineMath {
			inline = append(inline, s.Content)
		}
	}
	if len(inline) != 1 || inline[0] != `\theta_1` {
		t.Errorf("expected one inline expression %q, got %v", `\theta_1`, inline)
	}
}

func TestWrapBareMath_TableLineStaysInline(t *testing.T) {
	segs := WrapBareMath(Tokenize(`| \alpha | 2 |`))
	for _, s := range segs {
		if s.Kind == KindDisplayMath {
			t.Fatalf("table row must not become display math: %+v", segs)
		}
	}
	if Join(segs) != `| $\alpha$ | 2 |` {
		t.Errorf("unexpected join: %q", Join(segs))
	}
}

func TestWrapBareMath_NoCommands(t *testing.T) {
	in := []Segment{{Kind: KindText, Content: `a path like C:\temp\files`}}
	out := WrapBareMath(in)
	if len(out) != 1 || out[0].Content != in[0].Content {
		t.Errorf("expected text untouched, got %+v", out)
	}
}

func TestWrapBareMath_FragmentBesideInlineCode(t *testing.T) {
	segs := WrapBareMath(Tokenize("Compute the value `x` as \\sqrt{2} now"))
	for _, s := range segs {
		if s.Kind == KindDisplayMath {
			t.Fatalf("line fragment must not become display math: %+v", segs)
		}
	}
	if Join(segs) != "Compute the value `x` as $\\sqrt{2}$ now" {
		t.Errorf("unexpected join: %q", Join(segs))
	}

	segs = WrapBareMath(Tokenize("Given `x`:\n\\frac{a}{b}\nend"))
	var display []string
	for _, s := range segs {
		if s.Kind == KindDisplayMath {
			display = append(display, s.Content)
		}
	}
	if len(display) != 1 || display[0] != `\frac{a}{b}` {
		t.Errorf("expected the whole second line as display math, got %+v", segs)
	}
}

func TestWrapBareMath_LineAfterFenceIsWhole(t *testing.T) {
	segs := WrapBareMath(Tokenize("```\ncode\n```\n\\alpha + \\beta"))
	last := segs[len(segs)-1]
	if last.Kind != KindDisplayMath || last.Content != `\alpha + \beta` {
		t.Errorf("expected display math after the fence, got %+v", segs)
	}
}

func TestMathText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`\frac{a}{b}`, "(a)/(b)"},
		{`\sqrt{x}`, "√(x)"},
		{`x^2 + y^2`, "x² + y²"},
		{`\alpha + \beta`, "α + β"},
		{`\text{if } x \leq 0`, "if x ≤ 0"},
		{`\left( a \right)`, "( a )"},
		{`a_{12}`, "a₁₂"},
		{`\begin{cases} 1 \\ 2 \end{cases}`, "1; 2"},
	}
	for _, tt := range tests {
		got := MathText(tt.in)
		if got != tt.want {
			t.Errorf("MathText(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestMathRows(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`\text{a; b}`, []string{"a; b"}},
		{`a \\ b`, []string{"a", "b"}},
		{`\begin{aligned} x &= 1 \\ y &= 2 \end{aligned}`, []string{"x = 1", "y = 2"}},
	}
	for _, tt := range tests {
		if got := MathRows(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("MathRows(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestLooksLikeMath(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"x^2", true},
		{`\pi`, true},
		{"a1", true},
		{"5 and ", false},
		{"hello", false},
	}
	for _, tt := range tests {
		if got := LooksLikeMath(tt.in); got != tt.want {
			t.Errorf("LooksLikeMath(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

package doctree

import "github.com/dgallion1/msgexport/internal/richtext"

// Document is the block model of one chat message, ready for rendering.
type Document struct {
	Title  string  // First heading, used as document metadata
	Blocks []Block // In reading order
}

// Kind tags a Block.
type Kind int

const (
	KindHeading Kind = iota
	KindParagraph
	KindBullet
	KindTable
	KindSpacer
	KindCode
	KindMath
)

// Block is one layout unit. Renderers switch on the concrete type.
type Block interface {
	Kind() Kind
}

// Heading is a level 1..3 heading. Its spans are always bold.
type Heading struct {
	Level    int
	Spans    []richtext.Span
	Centered bool
}

// Paragraph is one line of body text.
type Paragraph struct {
	Spans    []richtext.Span
	Centered bool
}

// BulletItem is one list entry; renderers draw the bullet glyph.
type BulletItem struct {
	Spans []richtext.Span
}

// Table holds cell text as written, emphasis markers included.
type Table struct {
	Header []string
	Rows   [][]string // Each row has len(Header) cells
}

// Spacer is vertical space from a blank line.
type Spacer struct{}

// CodeBlock is a fenced code block.
type CodeBlock struct {
	Lang  string
	Lines []string
}

// MathBlock is display math.
type MathBlock struct {
	Source string   // LaTeX as written
	Text   string   // Plain-text rendering of Source
	Rows   []string // Text split at the source's row breaks
}

func (*Heading) Kind() Kind    { return KindHeading }
func (*Paragraph) Kind() Kind  { return KindParagraph }
func (*BulletItem) Kind() Kind { return KindBullet }
func (*Table) Kind() Kind      { return KindTable }
func (*Spacer) Kind() Kind     { return KindSpacer }
func (*CodeBlock) Kind() Kind  { return KindCode }
func (*MathBlock) Kind() Kind  { return KindMath }

// Columns returns the number of columns in the table.
func (t *Table) Columns() int { return len(t.Header) }

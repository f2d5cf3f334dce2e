package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Options controls page geometry. All values are millimetres, font sizes are points.
type Options struct {
	PageWidth    float64
	PageHeight   float64
	TopMargin    float64
	BottomMargin float64
	LeftMargin   float64
	RightMargin  float64
	LabelX       float64
	ValueX       float64
	LineHeight   float64
	FontSize     float64
}

// DefaultOptions is an A4 portrait page.
func DefaultOptions() Options {
	return Options{
		PageWidth:    210,
		PageHeight:   297,
		TopMargin:    20,
		BottomMargin: 20,
		LeftMargin:   15,
		RightMargin:  15,
		LabelX:       15,
		ValueX:       75,
		LineHeight:   7,
		FontSize:     10,
	}
}

// Layout is a top to bottom text cursor over an fpdf document.
// Pages are added explicitly; fpdf's own page breaking is disabled.
type Layout struct {
	pdf  *fpdf.Fpdf
	opts Options
	y    float64
	tr   func(string) string
}

// NewLayout starts a document with one empty page.
func NewLayout(opts Options) *Layout {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: opts.PageWidth, Ht: opts.PageHeight},
	})
	pdf.SetMargins(opts.LeftMargin, opts.TopMargin, opts.RightMargin)
	pdf.SetAutoPageBreak(false, 0)

	l := &Layout{
		pdf:  pdf,
		opts: opts,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
	}
	l.newPage()
	l.regular()
	return l
}

// Y returns the current cursor position from the top of the page.
func (l *Layout) Y() float64 {
	return l.y
}

// PageCount returns the number of pages so far.
func (l *Layout) PageCount() int {
	return l.pdf.PageCount()
}

func (l *Layout) newPage() {
	l.pdf.AddPage()
	l.y = l.opts.TopMargin
}

func (l *Layout) bottom() float64 {
	return l.opts.PageHeight - l.opts.BottomMargin
}

func (l *Layout) printableWidth() float64 {
	return l.opts.PageWidth - l.opts.LeftMargin - l.opts.RightMargin
}

func (l *Layout) regular() {
	l.pdf.SetFont("Helvetica", "", l.opts.FontSize)
}

func (l *Layout) bold(size float64) {
	l.pdf.SetFont("Helvetica", "B", size)
}

// ensureLine starts a new page when one more line would cross the bottom margin.
func (l *Layout) ensureLine() {
	if l.y+l.opts.LineHeight > l.bottom() {
		l.newPage()
	}
}

func (l *Layout) centered(text string) {
	w := l.pdf.GetStringWidth(text)
	x := (l.opts.PageWidth - w) / 2
	if x < l.opts.LeftMargin {
		x = l.opts.LeftMargin
	}
	l.pdf.Text(x, l.y, text)
}

// Header writes the institution name and document title centred at the top.
func (l *Layout) Header(institution, title string) {
	l.y += l.opts.LineHeight
	l.bold(16)
	l.centered(l.tr(institution))
	l.y += l.opts.LineHeight + 2

	l.bold(13)
	l.centered(l.tr(title))
	l.y += 3
	l.pdf.Line(l.opts.LeftMargin, l.y, l.opts.PageWidth-l.opts.RightMargin, l.y)
	l.y += l.opts.LineHeight

	l.regular()
}

// Section starts a titled block. A page is added first when the cursor is already past the bottom margin.
func (l *Layout) Section(title string) {
	if l.y > l.bottom() {
		l.newPage()
	}
	l.ensureLine()

	l.y += 2
	l.bold(12)
	l.pdf.Text(l.opts.LeftMargin, l.y, l.tr(title))
	l.y += l.opts.LineHeight
	l.regular()
}

// Field writes one label/value row and advances a single line.
func (l *Layout) Field(label, value string) {
	l.ensureLine()

	l.bold(l.opts.FontSize)
	l.pdf.Text(l.opts.LabelX, l.y, l.tr(label+":"))
	l.regular()
	l.pdf.Text(l.opts.ValueX, l.y, l.tr(orDash(value)))
	l.y += l.opts.LineHeight
}

// WrappedField writes a label with a value wrapped inside the value column.
func (l *Layout) WrappedField(label, value string) {
	l.ensureLine()

	l.bold(l.opts.FontSize)
	l.pdf.Text(l.opts.LabelX, l.y, l.tr(label+":"))
	l.regular()

	width := l.opts.PageWidth - l.opts.RightMargin - l.opts.ValueX
	for i, line := range l.split(orDash(value), width) {
		if i > 0 {
			l.ensureLine()
		}
		l.pdf.Text(l.opts.ValueX, l.y, line)
		l.y += l.opts.LineHeight
	}
}

// Paragraph writes text wrapped to the printable width.
func (l *Layout) Paragraph(text string) {
	for _, line := range l.split(text, l.printableWidth()) {
		l.ensureLine()
		l.pdf.Text(l.opts.LeftMargin, l.y, line)
		l.y += l.opts.LineHeight
	}
}

// CenteredParagraph writes wrapped text with every line centred.
func (l *Layout) CenteredParagraph(text string) {
	for _, line := range l.split(text, l.printableWidth()) {
		l.ensureLine()
		l.centered(line)
		l.y += l.opts.LineHeight
	}
}

// Table writes a header row and data rows at fixed column widths. Cells are truncated to fit.
func (l *Layout) Table(headers []string, widths []float64, rows [][]string) {
	l.ensureLine()
	l.bold(l.opts.FontSize)
	l.row(headers, widths)
	l.regular()
	for _, r := range rows {
		l.ensureLine()
		l.row(r, widths)
	}
}

func (l *Layout) row(cells []string, widths []float64) {
	x := l.opts.LeftMargin
	for i, w := range widths {
		if i < len(cells) {
			l.pdf.Text(x, l.y, l.fit(l.tr(cells[i]), w-2))
		}
		x += w
	}
	l.y += l.opts.LineHeight
}

// SignatureLines draws evenly spaced signature rules with captions underneath.
func (l *Layout) SignatureLines(captions ...string) {
	if len(captions) == 0 {
		return
	}
	if l.y+3*l.opts.LineHeight > l.bottom() {
		l.newPage()
	}
	l.y += 2 * l.opts.LineHeight

	slot := l.printableWidth() / float64(len(captions))
	for i, caption := range captions {
		x := l.opts.LeftMargin + float64(i)*slot
		l.pdf.Line(x+5, l.y, x+slot-5, l.y)
		l.pdf.Text(x+5, l.y+5, l.tr(caption))
	}
	l.y += l.opts.LineHeight
}

// Bytes finalises the document.
func (l *Layout) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (l *Layout) split(text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, line := range l.pdf.SplitText(latin1(para), width) {
			lines = append(lines, l.tr(line))
		}
	}
	return lines
}

var punctuation = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201c", "\"", "\u201d", "\"",
	"\u2013", "-", "\u2014", "-", "\u2026", "...",
)

// latin1 maps text onto the character range the core fonts can measure.
func latin1(s string) string {
	s = punctuation.Replace(s)
	return strings.Map(func(r rune) rune {
		if r > 0xFF {
			return '?'
		}
		return r
	}, s)
}

func (l *Layout) fit(text string, width float64) string {
	if l.pdf.GetStringWidth(text) <= width {
		return text
	}
	// text is already single-byte encoded
	for len(text) > 0 && l.pdf.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

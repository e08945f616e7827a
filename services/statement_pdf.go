package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
)

const statementFontFamily = "statement"

// GenerateStatementPDF renders a customer statement: the letterhead, the
// customer's details, one row per saved quote and the overall total.
// Hebrew is shaped only when fonts carries a TrueType face. A font maroto
// cannot use is logged and the statement is rendered with its default font.
func GenerateStatementPDF(data CustomerExport, companyLines []string, fonts FontSet) ([]byte, error) {
	out, err := renderStatement(data, companyLines, fonts)
	if err != nil && len(fonts.Regular) > 0 {
		log.Printf("statement_pdf: retrying with default font: %v", err)
		out, err = renderStatement(data, companyLines, FontSet{})
	}
	return out, err
}

func renderStatement(data CustomerExport, companyLines []string, fonts FontSet) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to generate statement: %v", r)
		}
	}()

	builder := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "{current} / {total}",
			Place:   props.LeftBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		})

	family := ""
	if len(fonts.Regular) > 0 {
		custom, err := loadStatementFonts(fonts)
		if err != nil {
			return nil, err
		}
		builder = builder.WithCustomFonts(custom).WithDefaultFont(&props.Font{Family: statementFontFamily})
		family = statementFontFamily
	}

	s := statement{m: maroto.New(builder.Build()), family: family}

	s.addHeader(data, companyLines)
	s.addTableHeader()
	for i, q := range data.Quotes {
		s.addQuoteRow(i, q)
	}
	s.addSummary(data)
	s.addFooter(data)

	doc, err := s.m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate statement: %w", err)
	}
	return doc.GetBytes(), nil
}

// loadStatementFonts registers the regular face, and the bold one when
// present, under a single family.
func loadStatementFonts(fs FontSet) ([]*entity.CustomFont, error) {
	bold := fs.Bold
	if len(bold) == 0 {
		bold = fs.Regular
	}
	return repository.New().
		AddUTF8FontFromBytes(statementFontFamily, fontstyle.Normal, fs.Regular).
		AddUTF8FontFromBytes(statementFontFamily, fontstyle.Bold, bold).
		Load()
}

type statement struct {
	m      core.Maroto
	family string
}

// txt builds a text component. Hebrew runs are reordered into visual order
// since maroto draws glyphs left to right.
func (s statement) txt(value string, style props.Text) core.Component {
	style.Family = s.family
	if ContainsHebrew(value) {
		value = VisualOrder(value, DirRTL)
	}
	return text.New(value, style)
}

var (
	statementMuted    = &props.Color{Red: 80, Green: 80, Blue: 80}
	statementHeaderBg = &props.Color{Red: 33, Green: 37, Blue: 41}
	statementAltRow   = &props.Color{Red: 248, Green: 249, Blue: 250}
	statementTotalBg  = &props.Color{Red: 240, Green: 240, Blue: 240}
)

func (s statement) addHeader(data CustomerExport, companyLines []string) {
	for i, line := range companyLines {
		style := props.Text{Size: 10, Align: align.Center, Color: statementMuted}
		height := 6.0
		if i == 0 {
			style = props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}
			height = 10
		}
		s.m.AddRows(row.New(height).Add(col.New(12).Add(s.txt(line, style))))
	}

	s.m.AddRows(row.New(4))
	s.m.AddRows(
		row.New(9).Add(
			col.New(6).Add(
				s.txt(FormatDate(data.Generated), props.Text{Size: 9, Align: align.Left, Color: statementMuted}),
			),
			col.New(6).Add(
				s.txt("ריכוז הצעות מחיר: "+data.Customer.Name, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
			),
		),
	)

	var contact []string
	for _, v := range []string{data.Customer.Phone, data.Customer.Email} {
		if strings.TrimSpace(v) != "" {
			contact = append(contact, v)
		}
	}
	if len(contact) > 0 {
		s.m.AddRows(row.New(6).Add(col.New(12).Add(
			s.txt(strings.Join(contact, " | "), props.Text{Size: 9, Align: align.Right, Color: statementMuted}),
		)))
	}
	s.m.AddRows(row.New(4))
}

// statementColumns lists the table columns from left to right, so the
// index column ends up on the right edge.
var statementColumns = []struct {
	title string
	size  int
}{
	{"סה\"כ", 2},
	{"מע\"מ", 2},
	{"סכום ביניים", 2},
	{"פריטים", 1},
	{"תאריך", 2},
	{"כותרת", 2},
	{"#", 1},
}

func (s statement) addTableHeader() {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := props.Cell{BackgroundColor: statementHeaderBg}

	r := row.New(8)
	for _, c := range statementColumns {
		r.Add(col.New(c.size).Add(s.txt(c.title, headerText)).WithStyle(&headerCell))
	}
	s.m.AddRows(r)
}

func (s statement) addQuoteRow(index int, q CustomerQuote) {
	base := props.Text{Size: 8, Align: align.Center}
	money := props.Text{Size: 8, Align: align.Left}
	title := props.Text{Size: 8, Align: align.Right}

	values := []struct {
		value string
		style props.Text
	}{
		{FormatMoney(q.Totals.Grand), money},
		{FormatMoney(q.Totals.Tax), money},
		{FormatMoney(q.Totals.Sub), money},
		{fmt.Sprintf("%d", q.ItemCount), base},
		{FormatDate(q.Date), base},
		{q.Title, title},
		{fmt.Sprintf("%d", index+1), base},
	}

	r := row.New(7)
	for i, v := range values {
		c := col.New(statementColumns[i].size).Add(s.txt(v.value, v.style))
		if index%2 == 1 {
			c = c.WithStyle(&props.Cell{BackgroundColor: statementAltRow})
		}
		r.Add(c)
	}
	s.m.AddRows(r)
}

func (s statement) addSummary(data CustomerExport) {
	s.m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: statementTotalBg}
	style := props.Text{Size: 9, Style: fontstyle.Bold}
	label := style
	label.Align = align.Right
	value := style
	value.Align = align.Left

	s.m.AddRows(
		row.New(8).Add(
			col.New(4).Add(s.txt(FormatMoney(data.GrandTotal()), value)).WithStyle(summaryCell),
			col.New(8).Add(s.txt(fmt.Sprintf("סה\"כ %d הצעות", len(data.Quotes)), label)).WithStyle(summaryCell),
		),
	)
}

func (s statement) addFooter(data CustomerExport) {
	s.m.AddRows(row.New(6))
	s.m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				s.txt("הופק בתאריך "+FormatDate(data.Generated), props.Text{
					Size:  7,
					Align: align.Right,
					Color: &props.Color{Red: 140, Green: 140, Blue: 140},
				}),
			),
		),
	)
}

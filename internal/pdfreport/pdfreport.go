// Package pdfreport lays out the ground check PDF: header, info table, TPH
// photo grid, optional notes and signature, footer.
package pdfreport

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/spge/groundcheck/internal/dataurl"
	"github.com/spge/groundcheck/internal/groundcheck"
)

const (
	margin      = 20.0
	photoSize   = 60.0
	photoColumn = 80.0
	rowHeight   = photoSize + 14
)

type rgb struct{ r, g, b int }

var (
	orangePrimary = rgb{0xEA, 0x58, 0x0C}
	orangeLight   = rgb{0xFE, 0xD7, 0xAA}
	orangeDark    = rgb{0xC2, 0x41, 0x0C}
	grayDark      = rgb{0x33, 0x33, 0x33}
	grayFooter    = rgb{0x80, 0x80, 0x80}
)

type builder struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	seq   int
	width float64
}

// Generate writes the report for task to w.
func Generate(task *groundcheck.Task, w io.Writer, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(fmt.Sprintf("GroundCheck_%s_%s", task.DivisionCode, task.ForemanCode), true)
	pdf.SetSubject("Laporan Ground Check - SPGE Groundcheck System", true)
	pdf.SetCreator("SGS", true)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	b := &builder{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), width: pageW - 2*margin}

	b.header()
	b.info(task, now)
	b.photos(task.Attachments)
	if notes := strings.TrimSpace(task.Notes); notes != "" {
		b.section("Catatan (NB) - Nama Pemanen Buah Mentah")
		b.body()
		pdf.MultiCell(b.width, 5, b.tr(notes), "", "L", false)
		pdf.Ln(8)
	}
	if task.HasSignature() {
		b.signature(task)
	}
	b.footer(now)

	return pdf.Output(w)
}

func (b *builder) color(c rgb) { b.pdf.SetTextColor(c.r, c.g, c.b) }

func (b *builder) body() {
	b.pdf.SetFont("Helvetica", "", 10)
	b.color(grayDark)
}

func (b *builder) header() {
	pdf := b.pdf
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 24)
	b.color(orangePrimary)
	pdf.CellFormat(b.width, 12, "SGS", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	b.color(grayDark)
	pdf.CellFormat(b.width, 8, "SPGE Groundcheck System", "", 1, "C", false, 0, "")
	pdf.CellFormat(b.width, 8, "Laporan Ground Check - QC Buah", "", 1, "C", false, 0, "")
	pdf.Ln(10)
}

func (b *builder) info(task *groundcheck.Task, now time.Time) {
	created := task.CreatedAt
	if created.IsZero() {
		created = now
	}
	rows := [][2]string{
		{"Tanggal", created.Format("02 January 2006, 15:04")},
		{"Nama Krani", orDash(task.ClerkName)},
		{"Divisi", "Divisi " + orDash(task.DivisionCode)},
		{"Kemandoran", "Kemandoran " + orDash(task.ForemanCode)},
	}

	pdf := b.pdf
	pdf.SetDrawColor(0xD3, 0xD3, 0xD3)
	pdf.SetFillColor(orangeLight.r, orangeLight.g, orangeLight.b)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		b.color(grayDark)
		pdf.CellFormat(40, 9, b.tr(row[0]), "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(100, 9, b.tr(row[1]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

func (b *builder) section(title string) {
	b.pdf.SetFont("Helvetica", "B", 14)
	b.color(orangeDark)
	b.pdf.CellFormat(b.width, 10, b.tr(title), "", 1, "L", false, 0, "")
}

func (b *builder) photos(attachments []groundcheck.Attachment) {
	pdf := b.pdf
	b.section("Dokumentasi TPH")
	if len(attachments) == 0 {
		b.body()
		pdf.CellFormat(b.width, 6, "Tidak ada dokumentasi TPH", "", 1, "L", false, 0, "")
		pdf.Ln(6)
		return
	}

	_, pageH := pdf.GetPageSize()
	for i := 0; i < len(attachments); i += 2 {
		if pdf.GetY()+rowHeight > pageH-margin {
			pdf.AddPage()
		}
		top := pdf.GetY()
		for j := 0; j < 2 && i+j < len(attachments); j++ {
			b.photoCell(attachments[i+j], margin+float64(j)*photoColumn, top)
		}
		pdf.SetY(top + rowHeight)
	}
	pdf.Ln(6)
}

func (b *builder) photoCell(a groundcheck.Attachment, x, y float64) {
	pdf := b.pdf
	caption := fmt.Sprintf("TPH %d", a.TPHNumber)

	if !a.HasPhoto() {
		b.body()
		pdf.SetXY(x, y)
		pdf.CellFormat(photoColumn, 6, caption+" - Tidak ada foto", "", 0, "C", false, 0, "")
		return
	}

	name, opts, ok := b.register(a.PhotoData)
	if !ok {
		b.body()
		pdf.SetXY(x, y)
		pdf.CellFormat(photoColumn, 6, caption+" - Gagal memuat", "", 0, "C", false, 0, "")
		return
	}

	pdf.ImageOptions(name, x+(photoColumn-photoSize)/2, y, photoSize, photoSize, false, opts, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	b.color(grayDark)
	pdf.SetXY(x, y+photoSize+2)
	pdf.CellFormat(photoColumn, 6, caption, "", 0, "C", false, 0, "")
}

// register decodes an image data URL into the document. Undecodable images
// are reported rather than poisoning the whole PDF.
func (b *builder) register(src string) (string, fpdf.ImageOptions, bool) {
	_, data, err := dataurl.Decode(src)
	if err != nil {
		return "", fpdf.ImageOptions{}, false
	}

	var opts fpdf.ImageOptions
	switch dataurl.Sniff(data) {
	case "image/jpeg":
		opts.ImageType = "JPG"
	case "image/png":
		opts.ImageType = "PNG"
	default:
		return "", fpdf.ImageOptions{}, false
	}
	b.seq++
	name := fmt.Sprintf("img%d", b.seq)
	b.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if b.pdf.Error() != nil {
		b.pdf.ClearError()
		return "", fpdf.ImageOptions{}, false
	}
	return name, opts, true
}

func (b *builder) signature(task *groundcheck.Task) {
	pdf := b.pdf
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+60 > pageH-margin {
		pdf.AddPage()
	}
	pdf.Ln(10)
	b.section("Tanda Tangan Digital")

	left := margin + (b.width-60)/2
	if name, opts, ok := b.register(task.Signature); ok {
		pdf.ImageOptions(name, left, pdf.GetY(), 60, 30, true, opts, 0, "")
	} else {
		b.body()
		pdf.CellFormat(b.width, 6, "Gagal memuat", "", 1, "C", false, 0, "")
	}

	b.body()
	pdf.CellFormat(b.width, 6, strings.Repeat("_", 30), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(b.width, 6, b.tr(orDash(task.ClerkName)), "", 1, "C", false, 0, "")
}

func (b *builder) footer(now time.Time) {
	pdf := b.pdf
	pdf.Ln(16)
	pdf.SetFont("Helvetica", "", 8)
	b.color(grayFooter)
	pdf.CellFormat(b.width, 4, strings.Repeat("_", 60), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.CellFormat(b.width, 4, "Dibuat secara digital melalui SGS - SPGE Groundcheck System", "", 1, "C", false, 0, "")
	pdf.CellFormat(b.width, 4, b.tr(fmt.Sprintf("© %d SPGE", now.Year())), "", 1, "C", false, 0, "")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

package workbook

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
	"github.com/shakinm/xlsReader/helpers"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// BIFF record ids decoded by the record scan.
const (
	recFormula    = 0x0006
	recEOF        = 0x000A
	recDateMode   = 0x0022
	recCodePage   = 0x0042
	recBoundSheet = 0x0085
	recMulRK      = 0x00BD
	recRString    = 0x00D6
	recXF         = 0x00E0
	recNumber     = 0x0203
	recLabel      = 0x0204
	recBoolErr    = 0x0205
	recString     = 0x0207
	recRK         = 0x027E
	recFormat     = 0x041E
	recBOF        = 0x0809
)

const biff8Version = 0x0600

var (
	errNoWorkbookStream = errors.New("no Workbook stream in OLE container")
	errNotBIFF          = errors.New("workbook stream does not start with a BOF record")
)

// biffErrors maps BOOLERR and formula error codes to their display text.
var biffErrors = map[byte]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
	0x2B: "#GETTING_DATA",
}

// biffBook is the part of a BIFF workbook the record scan understands:
// sheet names and offsets, number formats and the date system. Cell values
// other than shared strings are decoded per sheet by scanSheet.
type biffBook struct {
	stream   []byte
	biff8    bool
	date1904 bool
	charset  encoding.Encoding // byte strings before BIFF8
	xfFormat []int             // number format id by XF index
	formats  map[int]string    // custom number formats by id
	sheets   []biffSheet
}

type biffSheet struct {
	name   string
	offset int
}

// sheetValues holds the decoded cells of one sheet by row, then column.
type sheetValues struct {
	cells  map[int]map[int]string
	maxRow int
}

// workbookStream extracts the BIFF stream from an OLE compound file.
// BIFF8 writes it as "Workbook", BIFF5 as "Book".
func workbookStream(data []byte) ([]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var book *mscfb.File
	for _, f := range doc.File {
		if len(f.Path) > 0 {
			continue
		}
		switch f.Name {
		case "Workbook":
			book = f
		case "Book":
			if book == nil {
				book = f
			}
		}
	}
	if book == nil {
		return nil, errNoWorkbookStream
	}
	return io.ReadAll(book)
}

// scanBIFF reads the workbook globals substream.
func scanBIFF(stream []byte) (*biffBook, error) {
	b := &biffBook{
		stream:  stream,
		charset: charmap.Windows1252,
		formats: make(map[int]string),
	}

	rec, pos, err := readRecord(stream, 0)
	if err != nil || rec.id != recBOF || len(rec.data) < 2 {
		return nil, errNotBIFF
	}
	b.biff8 = binary.LittleEndian.Uint16(rec.data) == biff8Version

globals:
	for {
		rec, pos, err = readRecord(stream, pos)
		if err != nil {
			return nil, fmt.Errorf("workbook globals: %w", err)
		}

		switch rec.id {
		case recEOF:
			break globals
		case recDateMode:
			b.date1904 = len(rec.data) >= 2 && binary.LittleEndian.Uint16(rec.data) == 1
		case recCodePage:
			if len(rec.data) >= 2 {
				if cs := codePage(binary.LittleEndian.Uint16(rec.data)); cs != nil {
					b.charset = cs
				}
			}
		case recXF:
			if len(rec.data) >= 4 {
				b.xfFormat = append(b.xfFormat, int(binary.LittleEndian.Uint16(rec.data[2:])))
			}
		case recFormat:
			if id, format, ok := b.parseFormat(rec.data); ok {
				b.formats[id] = format
			}
		case recBoundSheet:
			if len(rec.data) < 8 {
				return nil, errors.New("short BOUNDSHEET record")
			}
			b.sheets = append(b.sheets, biffSheet{
				name:   b.byteString(rec.data[7:], int(rec.data[6])),
				offset: int(binary.LittleEndian.Uint32(rec.data)),
			})
		}
	}

	return b, nil
}

// scanSheet decodes every cell of sheet i except shared strings.
func (b *biffBook) scanSheet(i int) (*sheetValues, error) {
	rec, pos, err := readRecord(b.stream, b.sheets[i].offset)
	if err != nil || rec.id != recBOF {
		return nil, errNotBIFF
	}

	v := &sheetValues{cells: make(map[int]map[int]string), maxRow: -1}
	depth := 1
	var pending []int // row and column of a formula waiting for its STRING record

	for depth > 0 {
		rec, pos, err = readRecord(b.stream, pos)
		if err != nil {
			return nil, err
		}

		switch rec.id {
		case recBOF:
			depth++
			continue
		case recEOF:
			depth--
			continue
		}
		// Embedded chart substreams carry no cells of this sheet.
		if depth > 1 {
			continue
		}

		d := rec.data
		switch rec.id {
		case recNumber:
			if row, col, xf, ok := cellHeader(d, 14); ok {
				v.set(row, col, b.number(xf, math.Float64frombits(binary.LittleEndian.Uint64(d[6:]))))
			}
		case recRK:
			if row, col, xf, ok := cellHeader(d, 10); ok {
				v.set(row, col, b.number(xf, rkValue(binary.LittleEndian.Uint32(d[6:]))))
			}
		case recMulRK:
			if len(d) < 12 {
				continue
			}
			row := int(binary.LittleEndian.Uint16(d))
			first := int(binary.LittleEndian.Uint16(d[2:]))
			for k := 0; k < (len(d)-6)/6; k++ {
				off := 4 + 6*k
				xf := int(binary.LittleEndian.Uint16(d[off:]))
				v.set(row, first+k, b.number(xf, rkValue(binary.LittleEndian.Uint32(d[off+2:]))))
			}
		case recLabel, recRString:
			if row, col, _, ok := cellHeader(d, 8); ok {
				v.set(row, col, b.cellString(d[6:]))
			}
		case recBoolErr:
			if row, col, _, ok := cellHeader(d, 8); ok {
				v.set(row, col, boolErrText(d[6], d[7] == 1))
			}
		case recFormula:
			pending = nil
			row, col, xf, ok := cellHeader(d, 14)
			if !ok {
				continue
			}
			result := d[6:14]
			if result[6] != 0xFF || result[7] != 0xFF {
				v.set(row, col, b.number(xf, math.Float64frombits(binary.LittleEndian.Uint64(result))))
				continue
			}
			switch result[0] {
			case 0:
				pending = []int{row, col}
			case 1:
				v.set(row, col, boolErrText(result[2], false))
			case 2:
				v.set(row, col, boolErrText(result[2], true))
			}
			// 3 is an empty string result: the cell stays missing.
		case recString:
			if pending != nil {
				v.set(pending[0], pending[1], b.cellString(d))
				pending = nil
			}
		}
	}

	return v, nil
}

func (v *sheetValues) set(row, col int, s string) {
	if s == "" {
		return
	}
	if v.cells[row] == nil {
		v.cells[row] = make(map[int]string)
	}
	v.cells[row][col] = s
	if row > v.maxRow {
		v.maxRow = row
	}
}

// fill writes the decoded cells of row over cols, growing it as needed.
func (v *sheetValues) fill(row int, cols []string) []string {
	for col, s := range v.cells[row] {
		for len(cols) <= col {
			cols = append(cols, "")
		}
		cols[col] = s
	}
	return cols
}

// number renders a numeric cell, as a date when its XF carries a date format.
func (b *biffBook) number(xf int, f float64) string {
	var layout string
	switch b.dateKind(xf) {
	case dateOnly:
		layout = "2006-01-02"
	case timeOnly:
		layout = "15:04:05"
	case dateOnly | timeOnly:
		layout = "2006-01-02 15:04:05"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return helpers.TimeFromExcelTime(f, b.date1904).Round(time.Second).Format(layout)
}

type dateKind int

const (
	dateOnly dateKind = 1 << iota
	timeOnly
)

func (b *biffBook) dateKind(xf int) dateKind {
	if xf < 0 || xf >= len(b.xfFormat) {
		return 0
	}
	id := b.xfFormat[xf]
	switch {
	case id >= 14 && id <= 17, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return dateOnly
	case id >= 18 && id <= 21, id >= 45 && id <= 47:
		return timeOnly
	case id == 22:
		return dateOnly | timeOnly
	}
	if format, ok := b.formats[id]; ok {
		return classifyFormat(format)
	}
	return 0
}

// classifyFormat looks for date and time tokens in the first section of a
// number format, skipping quoted literals, escapes and bracketed modifiers.
func classifyFormat(format string) dateKind {
	var kind dateKind
	for i := 0; i < len(format); i++ {
		switch format[i] {
		case ';':
			return kind
		case '"':
			for i++; i < len(format) && format[i] != '"'; i++ {
			}
		case '\\', '_', '*':
			i++
		case '[':
			start := i
			for ; i < len(format) && format[i] != ']'; i++ {
			}
			// [h], [mm] and [ss] are elapsed time; anything else is a color or locale.
			if inner := format[start+1 : min(i, len(format))]; inner != "" && isElapsed(inner) {
				kind |= timeOnly
			}
		case 'y', 'Y', 'd', 'D':
			kind |= dateOnly
		case 'h', 'H', 's', 'S':
			kind |= timeOnly
		}
	}
	return kind
}

func isElapsed(s string) bool {
	for _, c := range s {
		switch c {
		case 'h', 'H', 'm', 'M', 's', 'S':
		default:
			return false
		}
	}
	return true
}

// parseFormat decodes a FORMAT record into its id and format string.
func (b *biffBook) parseFormat(d []byte) (int, string, bool) {
	if b.biff8 {
		if len(d) < 5 {
			return 0, "", false
		}
		cch := int(binary.LittleEndian.Uint16(d[2:]))
		return int(binary.LittleEndian.Uint16(d)), unicodeString(d[4:], cch), true
	}
	if len(d) < 3 {
		return 0, "", false
	}
	return int(binary.LittleEndian.Uint16(d)), b.decode(d[3:], int(d[2])), true
}

// cellString decodes the string body of LABEL and STRING records: a
// two-byte length followed by the characters.
func (b *biffBook) cellString(d []byte) string {
	if len(d) < 2 {
		return ""
	}
	cch := int(binary.LittleEndian.Uint16(d))
	if b.biff8 {
		return unicodeString(d[2:], cch)
	}
	return b.decode(d[2:], cch)
}

// byteString decodes a string whose length was read from a one-byte field.
func (b *biffBook) byteString(d []byte, cch int) string {
	if b.biff8 {
		return unicodeString(d, cch)
	}
	return b.decode(d, cch)
}

// decode reads cch bytes in the workbook code page.
func (b *biffBook) decode(d []byte, cch int) string {
	if cch > len(d) {
		cch = len(d)
	}
	s, err := b.charset.NewDecoder().Bytes(d[:cch])
	if err != nil {
		return string(d[:cch])
	}
	return string(s)
}

// unicodeString decodes a BIFF8 string body: an option byte, optional rich
// text and phonetic headers, then cch characters stored either compressed
// (the low byte of each UTF-16 unit) or as UTF-16LE.
func unicodeString(d []byte, cch int) string {
	if len(d) == 0 {
		return ""
	}
	flags := d[0]
	d = d[1:]
	if flags&0x08 != 0 && len(d) >= 2 {
		d = d[2:]
	}
	if flags&0x04 != 0 && len(d) >= 4 {
		d = d[4:]
	}

	if flags&0x01 == 0 {
		if cch > len(d) {
			cch = len(d)
		}
		runes := make([]rune, cch)
		for i, c := range d[:cch] {
			runes[i] = rune(c)
		}
		return string(runes)
	}

	if 2*cch > len(d) {
		cch = len(d) / 2
	}
	units := make([]uint16, cch)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(d[2*i:])
	}
	return string(utf16.Decode(units))
}

func boolErrText(v byte, isErr bool) string {
	if !isErr {
		if v != 0 {
			return "TRUE"
		}
		return "FALSE"
	}
	if s, ok := biffErrors[v]; ok {
		return s
	}
	return "#ERR" + strconv.Itoa(int(v))
}

// rkValue decodes an RK number: a 30-bit signed integer or the high bits of
// an IEEE double, optionally scaled by 1/100.
func rkValue(rk uint32) float64 {
	var f float64
	if rk&0x02 != 0 {
		f = float64(int32(rk) >> 2)
	} else {
		f = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}
	if rk&0x01 != 0 {
		f /= 100
	}
	return f
}

// cellHeader reads the row, column and XF index every cell record starts
// with, provided the record holds at least size bytes.
func cellHeader(d []byte, size int) (row, col, xf int, ok bool) {
	if len(d) < size {
		return 0, 0, 0, false
	}
	return int(binary.LittleEndian.Uint16(d)),
		int(binary.LittleEndian.Uint16(d[2:])),
		int(binary.LittleEndian.Uint16(d[4:])),
		true
}

type biffRecord struct {
	id   uint16
	data []byte
}

// readRecord returns the record at pos and the position of the next one.
func readRecord(stream []byte, pos int) (biffRecord, int, error) {
	if pos < 0 || pos+4 > len(stream) {
		return biffRecord{}, 0, io.ErrUnexpectedEOF
	}
	id := binary.LittleEndian.Uint16(stream[pos:])
	end := pos + 4 + int(binary.LittleEndian.Uint16(stream[pos+2:]))
	if end > len(stream) {
		return biffRecord{}, 0, io.ErrUnexpectedEOF
	}
	return biffRecord{id: id, data: stream[pos+4 : end]}, end, nil
}

// codePage maps a CODEPAGE record value to a decoder for byte strings.
func codePage(cp uint16) encoding.Encoding {
	switch cp {
	case 437:
		return charmap.CodePage437
	case 850:
		return charmap.CodePage850
	case 1250:
		return charmap.Windows1250
	case 1251:
		return charmap.Windows1251
	case 1252, 0x8000:
		return charmap.Windows1252
	case 1253:
		return charmap.Windows1253
	case 1254:
		return charmap.Windows1254
	case 1255:
		return charmap.Windows1255
	case 1256:
		return charmap.Windows1256
	case 1257:
		return charmap.Windows1257
	case 1258:
		return charmap.Windows1258
	}
	return nil
}

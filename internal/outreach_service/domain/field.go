package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FieldKind tags the value type of an imported side field.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
	FieldDate   FieldKind = "date"
)

// Field is one side column captured from a spreadsheet import, classified
// once at import time so display and export never re-parse strings.
type Field struct {
	Key    string    `json:"key"`
	Kind   FieldKind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Number float64   `json:"number,omitempty"`
	Date   time.Time `json:"date,omitempty"`
}

// Header keyword sets, matched case-insensitively by substring. The Brazilian
// spellings come first because that is what the spreadsheets this tool sees
// actually contain.
var (
	nameHeaderKeywords     = []string{"nome", "name"}
	phoneHeaderKeywords    = []string{"telefone", "phone", "celular", "whatsapp", "mobile"}
	dateHeaderKeywords     = []string{"data", "date"}
	volumeHeaderKeywords   = []string{"volume", "valor", "value", "amount", "preço", "preco", "price"}
	followUpHeaderKeywords = []string{"follow", "acompanhamento"}
)

func headerMatches(header string, keywords []string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, kw := range keywords {
		if strings.Contains(h, kw) {
			return true
		}
	}
	return false
}

// IsNameHeader reports whether a column header names the contact-name column.
func IsNameHeader(header string) bool { return headerMatches(header, nameHeaderKeywords) }

// IsPhoneHeader reports whether a column header names the phone column.
func IsPhoneHeader(header string) bool { return headerMatches(header, phoneHeaderKeywords) }

// IsDateHeader reports whether a column holds date values.
func IsDateHeader(header string) bool { return headerMatches(header, dateHeaderKeywords) }

// IsVolumeHeader reports whether a column holds currency/volume values.
func IsVolumeHeader(header string) bool { return headerMatches(header, volumeHeaderKeywords) }

// IsFollowUpHeader reports whether a column is the legacy follow-up column,
// which is dropped on export in favor of the synthesized status column.
func IsFollowUpHeader(header string) bool { return headerMatches(header, followUpHeaderKeywords) }

// serialDateEpoch is the xlsx serial-day epoch (serial 1 = 1900-01-01,
// including the historical leap-year bug, hence 1899-12-30).
var serialDateEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// SerialToDate converts an xlsx serial day count to a calendar date.
func SerialToDate(serial float64) time.Time {
	return serialDateEpoch.AddDate(0, 0, int(serial))
}

var ptBRNumberPattern = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+(,\d+)?$`)

// ParseNumber parses a numeric cell value, accepting plain decimals as well
// as pt-BR formatted amounts like "1.234,56" or "R$ 1.234,56".
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if ptBRNumberPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ClassifyField builds a typed side field from a raw cell value.
// Date-keyword headers accept xlsx serial day counts and dd/mm/yyyy strings;
// anything numeric becomes a number; everything else stays text.
func ClassifyField(key, raw string) Field {
	raw = strings.TrimSpace(raw)
	if IsDateHeader(key) {
		if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
			return Field{Key: key, Kind: FieldDate, Date: SerialToDate(serial)}
		}
		for _, layout := range []string{"02/01/2006", "2/1/2006"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return Field{Key: key, Kind: FieldDate, Date: t}
			}
		}
	}
	if n, ok := ParseNumber(raw); ok {
		return Field{Key: key, Kind: FieldNumber, Number: n}
	}
	return Field{Key: key, Kind: FieldText, Text: raw}
}

// DisplayValue renders the field the way it appears on exports: dates as
// dd/mm/yyyy, numbers with their natural precision, text verbatim.
func (f Field) DisplayValue() string {
	switch f.Kind {
	case FieldDate:
		return f.Date.Format("02/01/2006")
	case FieldNumber:
		return strconv.FormatFloat(f.Number, 'f', -1, 64)
	default:
		return f.Text
	}
}

// FormatBRL renders a number as pt-BR currency, e.g. "R$ 1.234,56".
func FormatBRL(n float64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	whole := strconv.FormatFloat(n, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(whole, ".")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	out := "R$ " + b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// Package csvimport lee archivos CSV de movimientos para la importación masiva.
// Columnas: item_id,type,quantity,unit_price,note,batch,expiry (encabezado obligatorio,
// orden libre; item_id, type y quantity son obligatorias).
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// Charsets soportados. Vacío o "auto": UTF-8 si el archivo es UTF-8 válido, si no Windows-1252.
const (
	CharsetAuto        = "auto"
	CharsetUTF8        = "utf-8"
	CharsetISO88591    = "iso-8859-1"
	CharsetWindows1252 = "windows-1252"
)

// MaxFileSize tamaño máximo aceptado.
const MaxFileSize = 5 << 20

var requiredColumns = []string{"item_id", "type", "quantity"}

// ErrInvalidFile archivo ilegible (charset, encabezado o tamaño).
var ErrInvalidFile = errors.New("archivo CSV inválido")

// Parse decodifica el archivo en filas de importación. Los errores de formato de una fila
// quedan en ImportRow.ParseErrors; solo un archivo ilegible devuelve error.
func Parse(r io.Reader, charset string) ([]appinv.ImportRow, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("leer archivo: %w", err)
	}
	if len(raw) > MaxFileSize {
		return nil, fmt.Errorf("%w: supera %d bytes", ErrInvalidFile, MaxFileSize)
	}
	text, err := decode(raw, charset)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: encabezado: %v", ErrInvalidFile, err)
	}
	cols := indexColumns(header)
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: falta la columna %q", ErrInvalidFile, c)
		}
	}

	var rows []appinv.ImportRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rows = append(rows, appinv.ImportRow{Line: perr.StartLine, ParseErrors: []string{perr.Err.Error()}})
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(record) {
			continue
		}
		rows = append(rows, parseRecord(line, record, cols))
	}
	return rows, nil
}

func decode(raw []byte, charset string) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", CharsetAuto:
		if utf8.Valid(raw) {
			return raw, nil
		}
		enc = charmap.Windows1252
	case CharsetUTF8, "utf8":
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("%w: no es UTF-8 válido", ErrInvalidFile)
		}
		return raw, nil
	case CharsetISO88591, "latin1", "iso8859-1":
		enc = charmap.ISO8859_1
	case CharsetWindows1252, "cp1252":
		enc = charmap.Windows1252
	default:
		return nil, fmt.Errorf("%w: charset no soportado %q", ErrInvalidFile, charset)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decodificar %s: %v", ErrInvalidFile, charset, err)
	}
	return out, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func parseRecord(line int, record []string, cols map[string]int) appinv.ImportRow {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := appinv.ImportRow{Line: line}
	in := &row.Input
	in.ItemID = field("item_id")
	in.Type = strings.ToUpper(field("type"))
	in.Note = field("note")
	in.BatchNumber = field("batch")

	if in.ItemID == "" {
		row.ParseErrors = append(row.ParseErrors, "item_id vacío")
	}
	if q, err := strconv.ParseInt(field("quantity"), 10, 64); err != nil {
		row.ParseErrors = append(row.ParseErrors, fmt.Sprintf("cantidad inválida: %q", field("quantity")))
	} else {
		in.Quantity = q
	}
	if s := field("unit_price"); s != "" {
		p, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil {
			row.ParseErrors = append(row.ParseErrors, fmt.Sprintf("precio unitario inválido: %q", s))
		} else {
			in.UnitPrice = &p
		}
	}
	if s := field("expiry"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			row.ParseErrors = append(row.ParseErrors, fmt.Sprintf("fecha de vencimiento inválida: %q", s))
		} else {
			in.ExpiryDate = &t
		}
	}
	return row
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("formato de fecha no reconocido")
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

package export

import (
	"bufio"
	"io"
	"strings"
)

// WriteCSV writes one header line and one line per row, newline separated,
// with text columns always quoted and embedded quotes doubled. Other columns
// are quoted only when they hold a comma, quote or line break.
func WriteCSV(w io.Writer, d Dataset) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(d.Headers(), ","))
	for _, row := range d.Rows {
		bw.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				bw.WriteByte(',')
			}
			if i < len(d.columns) && d.columns[i].quoted {
				bw.WriteString(quote(cell))
			} else if strings.ContainsAny(cell, ",\"\r\n") {
				bw.WriteString(quote(cell))
			} else {
				bw.WriteString(cell)
			}
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchcmp

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/benchtrack/benchtrack/benchunit"
	"github.com/benchtrack/benchtrack/catch2fmt"
	"github.com/benchtrack/benchtrack/extract"
)

// ToText renders t as an aligned table. Warnings are collected into
// numbered footnotes below the table.
func (t *Table) ToText(w io.Writer) error {
	var warningList []string
	warningSet := make(map[string]int)
	footnotes := func(msgs []error) string {
		var notes []string
		for _, msg := range msgs {
			s := msg.Error()
			i, ok := warningSet[s]
			if !ok {
				i = len(warningList)
				warningSet[s] = i
				warningList = append(warningList, s)
			}
			notes = append(notes, superscript(i+1))
		}
		return strings.Join(notes, " ")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\tvs base\t\t\n", "", commitLabel(t.Prev, "previous"), commitLabel(t.Curr, "current"))
	for _, row := range t.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Name, formatResult(row.Prev, row.Base), formatResult(row.Curr, row.Value),
			formatRatio(row.HasRatio, row.Ratio), regressionMark(row.Regression), footnotes(row.Warnings))
	}
	if len(t.Rows) > 1 {
		s := t.Summary
		var base, value string
		if s.HasSummary {
			base, value = benchunit.FormatSeconds(s.Base), benchunit.FormatSeconds(s.Value)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\t%s\n", t.SummaryLabel, base, value, formatRatio(s.HasRatio, s.Ratio), footnotes(s.Warnings))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if n := len(t.Regressions()); n > 0 {
		if _, err := fmt.Fprintf(w, "! %d regression(s) above %gx\n", n, t.Threshold); err != nil {
			return err
		}
	}
	for i, msg := range warningList {
		if _, err := fmt.Fprintf(w, "%s %s\n", superscript(i+1), msg); err != nil {
			return err
		}
	}
	return nil
}

// ToCSV renders t in CSV format. Warnings are written in text format
// to the "warnings" Writer, prefixed with spreadsheet-style cell
// references.
func (t *Table) ToCSV(w, warnings io.Writer) error {
	o := csv.NewWriter(w)
	rowNum := 1
	emit := func(row []string, msgs []error) {
		for _, msg := range msgs {
			fmt.Fprintf(warnings, "%s%d: %s\n", cellName(len(row)-1), rowNum, msg)
		}
		o.Write(row)
		rowNum++
	}

	emit([]string{"name", "previous sec", "current sec", "vs base", "regression"}, nil)
	for _, row := range t.Rows {
		emit([]string{
			row.Name,
			csvValue(row.Prev != nil, row.Base),
			csvValue(row.Curr != nil, row.Value),
			formatRatio(row.HasRatio, row.Ratio),
			fmt.Sprint(row.Regression),
		}, row.Warnings)
	}
	s := t.Summary
	emit([]string{
		t.SummaryLabel,
		csvValue(s.HasSummary, s.Base),
		csvValue(s.HasSummary, s.Value),
		formatRatio(s.HasRatio, s.Ratio),
		"",
	}, s.Warnings)

	o.Flush()
	return o.Error()
}

func csvValue(ok bool, v float64) string {
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

// cellName returns the spreadsheet-style name of column x.
func cellName(x int) string {
	name := []byte{byte('A' + x%26)}
	for x /= 26; x > 0; x /= 26 {
		name = append([]byte{byte('A' + (x-1)%26)}, name...)
	}
	return string(name)
}

func formatRatio(ok bool, ratio float64) string {
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%+.2f%%", (ratio-1)*100)
}

func regressionMark(r bool) string {
	if r {
		return "!"
	}
	return ""
}

// formatResult formats the mean of r, given in seconds, with its
// standard deviation as a percentage of the mean.
func formatResult(r *catch2fmt.Result, sec float64) string {
	if r == nil {
		return "~"
	}
	out := benchunit.FormatSeconds(sec)
	dev, ok := benchunit.Seconds(r.Range, string(r.RangeUnit))
	if ok && sec > 0 {
		out += fmt.Sprintf(" ± %.0f%%", dev/sec*100)
	}
	return out
}

func commitLabel(rep *extract.Report, def string) string {
	if rep == nil || rep.Commit == nil || rep.Commit.ID == "" {
		return def
	}
	id := rep.Commit.ID
	if len(id) > 7 {
		id = id[:7]
	}
	return id
}

var superDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

func superscript(i int) string {
	if i == 0 {
		return string(superDigits[0])
	}

	var buf [20]rune
	pos := len(buf)
	for i > 0 && pos > 0 {
		pos--
		buf[pos] = superDigits[i%10]
		i /= 10
	}
	return string(buf[pos:])
}

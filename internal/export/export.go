// Package export serializes recovered records to the scanner's output
// formats: a JSON record list, a plain-text listing, and a bookmark HTML
// document importable by Chrome and Firefox.
package export

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/dgnsrekt/onetab_rescue/internal/types"
)

// WriteRecords writes the record list as an indented JSON array.
func WriteRecords(path string, records []types.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteText writes one "url - title" line per record.
func WriteText(path string, records []types.Record) error {
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%s - %s\n", r.URL, r.Title)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// TextPath derives the plain-text companion path from the JSON output path.
func TextPath(jsonPath string) string {
	if strings.HasSuffix(jsonPath, ".json") {
		return strings.TrimSuffix(jsonPath, ".json") + ".txt"
	}
	return jsonPath + ".txt"
}

// WriteBookmarks writes the records as a NETSCAPE-Bookmark-file-1 document,
// one heading per distinct group. Groups and the records within them keep
// first-seen order, so the HTML mirrors the scan output exactly.
func WriteBookmarks(path string, records []types.Record) error {
	var order []string
	grouped := make(map[string][]types.Record)
	for _, r := range records {
		group := r.Group
		if group == "" {
			group = types.UnknownGroup
		}
		if _, ok := grouped[group]; !ok {
			order = append(order, group)
		}
		grouped[group] = append(grouped[group], r)
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3>Recovered OneTab URLs</H3>
    <DL><p>
`)
	for _, group := range order {
		fmt.Fprintf(&b, "        <DT><H3>%s</H3>\n        <DL><p>\n", html.EscapeString(group))
		for _, r := range grouped[group] {
			title := r.Title
			if title == "" {
				title = r.URL
			}
			fmt.Fprintf(&b, "            <DT><A HREF=\"%s\">%s</A>\n",
				html.EscapeString(r.URL), html.EscapeString(title))
		}
		b.WriteString("        </DL><p>\n")
	}
	b.WriteString("    </DL><p>\n</DL><p>\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

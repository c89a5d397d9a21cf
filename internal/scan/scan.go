// Package scan recovers OneTab records from a directory of LevelDB data and
// log files. The files are treated as opaque byte blobs: printable text is
// pulled out by the extract package and scraped with regular expressions and
// opportunistic JSON decoding. Anything that fails to decode is skipped; the
// scan is best-effort by design.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dgnsrekt/onetab_rescue/internal/extract"
	"github.com/dgnsrekt/onetab_rescue/internal/types"
)

// Failure indicators for the scan as a whole. All are advisory: the caller
// reports them to the operator and exits cleanly.
var (
	ErrMissingDir = errors.New("storage directory does not exist")
	ErrNoFiles    = errors.New("no .ldb or .log files found")
	ErrNoRecords  = errors.New("no recoverable records found")
)

// stateKey is the top-level key that identifies a OneTab state fragment.
const stateKey = "tabGroups"

var (
	urlRe = regexp.MustCompile(`https?://[^\s"']+`)
	// Runs of backslashes in scraped fragments are artifacts of the storage
	// encoding; collapse them to a single escape before decoding.
	backslashRe = regexp.MustCompile(`\\+`)
)

// Scanner walks a storage directory and merges everything recoverable into
// a deduplicated record list.
type Scanner struct {
	extractor extract.Extractor
}

// New returns a Scanner using the given text extractor.
func New(ex extract.Extractor) *Scanner {
	return &Scanner{extractor: ex}
}

// Scan processes every .ldb and .log file under dir and returns the merged,
// URL-deduplicated record list. Structurally decoded records come first in
// file order, followed by bare URL matches not already captured. Per-file
// errors are logged and skipped; only a whole-scan failure is returned.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]types.Record, error) {
	slog.Info("looking for OneTab data", "dir", dir)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingDir, dir)
	}

	files, err := storeFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list storage files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	slog.Info("found database files to examine", "count", len(files))

	var structured []types.Record
	var bare []string
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slog.Info("examining file", "file", path)

		text, err := s.extractor.Text(ctx, path)
		if err != nil {
			slog.Warn("file processing failed, skipping", "file", path, "error", err)
			continue
		}

		if strings.Contains(text, stateKey) {
			slog.Info("found potential OneTab state data", "file", path)
			recs := scrapeFragments(text)
			if len(recs) > 0 {
				slog.Info("decoded state records", "file", path, "count", len(recs))
			}
			structured = append(structured, recs...)
		}

		urls := urlRe.FindAllString(text, -1)
		if len(urls) > 0 {
			slog.Info("found URL matches", "file", path, "count", len(urls))
			bare = append(bare, urls...)
		}
	}

	records := merge(structured, bare)
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// storeFiles lists the LevelDB data and log files in dir, in name order.
func storeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".ldb", ".log":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// scrapeFragments finds brace-delimited fragments around each occurrence of
// the state key and decodes the ones that turn out to be valid JSON.
// Malformed fragments are skipped.
func scrapeFragments(text string) []types.Record {
	var records []types.Record
	for _, frag := range fragments(text) {
		cleaned := backslashRe.ReplaceAllString(frag, `\`)
		if !gjson.Valid(cleaned) {
			slog.Debug("skipping malformed state fragment", "len", len(frag))
			continue
		}
		groups := gjson.Get(cleaned, stateKey)
		if !groups.IsArray() {
			continue
		}
		groups.ForEach(func(_, group gjson.Result) bool {
			name := group.Get("name").String()
			if name == "" {
				name = types.UnnamedGroup
			}
			group.Get("tabs").ForEach(func(_, tab gjson.Result) bool {
				url := tab.Get("url").String()
				if url == "" {
					return true
				}
				records = append(records, types.Record{
					URL:    url,
					Title:  tab.Get("title").String(),
					Group:  name,
					Source: types.SourceState,
				})
				return true
			})
			return true
		})
	}
	return records
}

// fragments returns the balanced brace-delimited substrings enclosing each
// occurrence of the state key. Fragments with no closing brace before the
// end of the text are dropped; corrupt data makes that common.
func fragments(text string) []string {
	var out []string
	idx := 0
	for {
		rel := strings.Index(text[idx:], `"`+stateKey+`"`)
		if rel < 0 {
			break
		}
		keyAt := idx + rel
		idx = keyAt + len(stateKey) + 2

		open := strings.LastIndexByte(text[:keyAt], '{')
		if open < 0 {
			continue
		}
		end := matchBrace(text, open)
		if end < 0 {
			continue
		}
		out = append(out, text[open:end+1])
	}
	return out
}

// matchBrace returns the index of the brace closing the one at open, or -1.
// Quoted strings are honored so braces inside URLs and titles do not skew
// the depth count.
func matchBrace(text string, open int) int {
	depth := 0
	inString := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// merge deduplicates by exact URL, keeping first-seen order. Structured
// records win over bare URL matches for the same URL.
func merge(structured []types.Record, bare []string) []types.Record {
	seen := make(map[string]struct{}, len(structured)+len(bare))
	records := make([]types.Record, 0, len(structured)+len(bare))
	for _, r := range structured {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		records = append(records, r)
	}
	for _, url := range bare {
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		records = append(records, types.Record{
			URL:    url,
			Group:  types.UnknownGroup,
			Source: types.SourceText,
		})
	}
	return records
}

package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/avelkar/subweld/internal/timecode"
)

// Parse reads SRT text into a track. The parser is deliberately lenient
// with machine-generated input: an index line with no valid timestamp line
// after it drops that block rather than failing the parse. A timestamp
// line whose start is not before its end is still a hard error.
func Parse(r io.Reader) (*Track, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	track := &Track{}
	var cur *Entry
	var hasTime bool
	var textLines []string
	lineNum := 0

	flush := func() {
		if cur != nil && hasTime && len(textLines) > 0 {
			cur.Text = strings.Join(textLines, "\n")
			track.Entries = append(track.Entries, *cur)
		}
		cur = nil
		hasTime = false
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSpace(line)

		if line == "" {
			flush()
			continue
		}

		if cur == nil {
			if index, err := strconv.Atoi(line); err == nil {
				cur = &Entry{Index: index}
			}
			// stray non-index line between blocks is ignored
			continue
		}

		if !hasTime {
			if strings.Contains(line, "-->") {
				start, end, err := parseTimeLine(line)
				if err != nil {
					// malformed timestamp line, abandon the block
					cur = nil
					continue
				}
				if start >= end {
					return nil, fmt.Errorf(
						"line %d: %w (%s)", lineNum, ErrInvalidInterval, line,
					)
				}
				cur.Start = start
				cur.End = end
				hasTime = true
				continue
			}
			if index, err := strconv.Atoi(line); err == nil {
				// index line followed by another index line: the first
				// block had no timestamp, drop it and start over
				cur = &Entry{Index: index}
				continue
			}
			cur = nil
			continue
		}

		textLines = append(textLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT input: %w", err)
	}

	return track, nil
}

func parseTimeLine(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", timecode.ErrMalformedTime, line)
	}
	start, err := timecode.ParseStamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := timecode.ParseStamp(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseFile parses an SRT file from disk.
func ParseFile(path string) (*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	track, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return track, nil
}

// Render serializes the track in its current order. Callers sort and
// reindex first; no implicit reordering happens here.
func (t *Track) Render() string {
	var sb strings.Builder
	for _, e := range t.Entries {
		sb.WriteString(strconv.Itoa(e.Index))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			timecode.FormatStamp(e.Start),
			timecode.FormatStamp(e.End)))
		sb.WriteString(e.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// WriteFile renders the track and writes it in one shot, overwriting any
// existing file at path.
func (t *Track) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(t.Render()), 0644)
}

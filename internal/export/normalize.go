package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Export is a parsed CSV export: records keyed by item id, plus the order in
// which ids first appeared in the file.
type Export struct {
	Records map[int]*Record
	Order   []int
}

// commentSuffix matches the "(Author Name - Mon DD, YYYY)" marker Pivotal
// appends to exported comment cells.
var commentSuffix = regexp.MustCompile(`(?s)^(.*)\((.+?) - ([A-Z][a-z]{2} \d{1,2}, \d{4})\)\s*$`)

// Normalize reads the export at path and reassembles one record per item id.
// Rows sharing an id are merged: repeated rows are how the export fans out
// sub-entities, so the recognized column groups (comment, task+task_status,
// review_type+reviewer+review_status, blocker+blocker_status, pull_request)
// fold into ordered sub-lists while scalar columns keep their first non-empty
// value.
func Normalize(path string) (*Export, error) {
	file, err := os.Open(path) //nolint:gosec // Export path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("export %s has no data rows", path)
	}

	headers := normalizeHeaders(rows[0])
	out := &Export{Records: make(map[int]*Record)}

	for rowNum, row := range rows[1:] {
		cell := func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}

		id, err := strconv.Atoi(strings.TrimSpace(cell(0)))
		if err != nil {
			slog.Warn("Skipping export row without a numeric id", "row", rowNum+2, "value", cell(0))
			continue
		}

		rec := out.Records[id]
		if rec == nil {
			rec = &Record{ID: id, Fields: make(map[string]string)}
			out.Records[id] = rec
			out.Order = append(out.Order, id)
		}

		foldRow(rec, headers, cell)
	}

	slog.Debug("Normalized export", "path", path, "rows", len(rows)-1, "records", len(out.Records))
	return out, nil
}

// foldRow walks the declared columns left to right, folding recognized
// repeating groups into rec's sub-lists and copying everything else as
// scalar fields.
func foldRow(rec *Record, headers []string, cell func(int) string) {
	for i := 0; i < len(headers); i++ {
		value := cell(i)

		switch headers[i] {
		case "id":
			// Join key, already parsed.
		case "comment":
			if value != "" {
				rec.Comments = append(rec.Comments, parseCommentCell(rec.ID, value))
			}
		case "task":
			var status string
			if i+1 < len(headers) && headers[i+1] == "task_status" {
				i++
				status = cell(i)
			}
			if value != "" {
				rec.Tasks = append(rec.Tasks, Task{
					Description: value,
					Complete:    strings.EqualFold(strings.TrimSpace(status), "completed"),
				})
			}
		case "review_type":
			var reviewer, status string
			if i+1 < len(headers) && headers[i+1] == "reviewer" {
				i++
				reviewer = cell(i)
			}
			if i+1 < len(headers) && headers[i+1] == "review_status" {
				i++
				status = cell(i)
			}
			if value != "" || reviewer != "" {
				rec.Reviews = append(rec.Reviews, Review{Type: value, Reviewer: reviewer, Status: status})
			}
		case "blocker":
			var status string
			if i+1 < len(headers) && headers[i+1] == "blocker_status" {
				i++
				status = cell(i)
			}
			if value != "" {
				rec.Blockers = append(rec.Blockers, Blocker{Description: value, Status: status})
			}
		case "pull_request":
			if value != "" {
				rec.PullRequests = append(rec.PullRequests, value)
			}
		case "labels":
			if value != "" && len(rec.Labels) == 0 {
				rec.Labels = splitLabels(value)
			}
		case "description":
			if value != "" && rec.Fields["description"] == "" {
				// The export indents descriptions with a single leading tab.
				rec.Fields["description"] = strings.TrimPrefix(value, "\t")
			}
		default:
			if value != "" && rec.Fields[headers[i]] == "" {
				rec.Fields[headers[i]] = value
			}
		}
	}
}

// parseCommentCell splits a comment cell into its text and the trailing
// author/date suffix. A cell without a parsable suffix keeps its full text
// with author and date absent; that is a data-quality warning, not an error.
func parseCommentCell(id int, cell string) Comment {
	m := commentSuffix.FindStringSubmatch(cell)
	if m == nil {
		slog.Warn("Comment cell has no author/date suffix", "id", id)
		return Comment{Text: cell}
	}

	return Comment{
		Text:   strings.TrimSpace(m[1]),
		Author: strings.TrimSpace(m[2]),
		Date:   m[3],
	}
}

// normalizeHeaders lowercases header names and replaces spaces with
// underscores, so "Task Status" folds the same way as "task_status".
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.ToLower(strings.TrimSpace(h))
		headers[i] = strings.ReplaceAll(h, " ", "_")
	}
	return headers
}

func splitLabels(value string) []string {
	var labels []string
	for _, label := range strings.Split(value, ",") {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// Epics returns the epic records in first-appearance order.
func (e *Export) Epics() []*Record {
	return e.filter(true)
}

// Stories returns the non-epic records in first-appearance order.
func (e *Export) Stories() []*Record {
	return e.filter(false)
}

func (e *Export) filter(epics bool) []*Record {
	var records []*Record
	for _, id := range e.Order {
		if rec := e.Records[id]; rec.IsEpic() == epics {
			records = append(records, rec)
		}
	}
	return records
}

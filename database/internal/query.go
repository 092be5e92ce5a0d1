// Package internal holds query helpers shared by the SQL catalog backends.
package internal

import (
	"strings"
	"time"

	"github.com/sagarc03/folio"
)

// TimeFormat is a fixed-width UTC layout whose text order matches time order.
const TimeFormat = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// EscapeLikePattern escapes special LIKE characters (%, _, \) to prevent SQL injection.
func EscapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

// EncodeTags stores tags as ",a,b," so a single tag can be matched with LIKE.
func EncodeTags(tags []string) string {
	kept := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || strings.Contains(tag, ",") {
			continue
		}
		kept = append(kept, tag)
	}
	if len(kept) == 0 {
		return ""
	}
	return "," + strings.Join(kept, ",") + ","
}

// DecodeTags reverses EncodeTags.
func DecodeTags(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// SearchFilter renders the WHERE clause for q. placeholder returns the
// driver's n-th bind parameter, counting from 1.
func SearchFilter(q folio.SearchQuery, placeholder func(n int) string) (string, []any) {
	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	folder := EscapeLikePattern(q.Folder)

	clauses := make([]string, 0, 1+len(q.ExcludePublicIDs)+len(q.ExcludeTags))

	if q.IncludeSubFolders {
		clauses = append(clauses, "(folder = "+bind(q.Folder)+
			" OR (folder LIKE "+bind(folder+"/%")+` ESCAPE '\'`+
			" AND folder NOT LIKE "+bind(folder+"/%/%")+` ESCAPE '\'))`)
	} else {
		clauses = append(clauses, "folder = "+bind(q.Folder))
	}

	for _, id := range q.ExcludePublicIDs {
		clauses = append(clauses, "public_id <> "+bind(id))
	}

	for _, tag := range q.ExcludeTags {
		clauses = append(clauses, "tags NOT LIKE "+bind("%,"+EscapeLikePattern(tag)+",%")+` ESCAPE '\'`)
	}

	return strings.Join(clauses, " AND "), args
}

// FolderName returns the last segment of a folder path and its parent.
func FolderName(path string) (name, parent string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return path, ""
	}
	return path[i+1:], path[:i]
}

// Ancestors lists path and every parent folder, outermost first.
func Ancestors(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for i := range parts {
		out = append(out, strings.Join(parts[:i+1], "/"))
	}
	return out
}

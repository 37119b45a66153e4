// Package normalize turns raw per-field input into clean, ordered value lists.
//
// Order and duplicates are preserved: a value repeated across rows is what
// links those rows together.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Options controls value canonicalization
type Options struct {
	// FoldCase maps values to their case-folded form so "AB77" and "ab77"
	// become the same node. Off by default: hashes and ids are case-sensitive.
	FoldCase bool `json:"fold_case"`

	// KeepBlanks keeps blank entries of value lists as "" so positions stay
	// aligned with the rows they came from. Pasted text still drops blanks.
	KeepBlanks bool `json:"keep_blanks"`
}

// Normalizer cleans field values. The zero value is ready to use.
type Normalizer struct {
	opts   Options
	folder cases.Caser
}

// New creates a normalizer with the given options
func New(opts Options) *Normalizer {
	n := &Normalizer{opts: opts}
	if opts.FoldCase {
		n.folder = cases.Fold()
	}
	return n
}

// Text splits raw pasted text (one value per line) into values
func (n *Normalizer) Text(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	return n.clean(strings.Split(raw, "\n"), false)
}

// Values cleans an already split sequence. Blank entries are dropped unless
// KeepBlanks is set, in which case they stay in place as "".
func (n *Normalizer) Values(raw []string) []string {
	return n.clean(raw, n.opts.KeepBlanks)
}

func (n *Normalizer) clean(raw []string, keepBlanks bool) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		clean, ok := n.Value(v)
		if ok || keepBlanks {
			out = append(out, clean)
		}
	}
	return out
}

// Value canonicalizes a single value. ok is false for blank input.
func (n *Normalizer) Value(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	v = norm.NFC.String(v)
	if n.opts.FoldCase {
		v = n.folder.String(v)
	}
	return v, true
}

// Fields normalizes every field of a column mapping. Raw text entries are
// split first; a field present in both maps gets its text values appended
// after its listed values.
func (n *Normalizer) Fields(values map[string][]string, text map[string]string) map[string][]string {
	out := make(map[string][]string, len(values)+len(text))
	for field, raw := range values {
		out[field] = n.Values(raw)
	}
	for field, raw := range text {
		out[field] = append(out[field], n.Text(raw)...)
	}
	return out
}

// IsEmpty reports whether no field holds a non-blank value
func IsEmpty(fields map[string][]string) bool {
	for _, values := range fields {
		for _, v := range values {
			if v != "" {
				return false
			}
		}
	}
	return true
}

package domain

import "strconv"

// MetaKeySource tags which collector produced an item. Collectors with
// engagement signals (upvotes, comments) set it to a social source name.
const (
	MetaKeySource   = "source"
	MetaKeyUpvotes  = "ups"
	MetaKeyComments = "num_comments"
)

// Known values for MetaKeySource.
const (
	MetaSourceReddit     = "reddit"
	MetaSourceGoogleNews = "googlenews"
	MetaSourceYahoo      = "yahoo"
)

// Metadata is an opaque bag of source-specific fields. Accessors never panic:
// missing or malformed values fall back to the provided default.
type Metadata map[string]any

// Int reads an integer value, tolerating float and numeric-string encodings
// left behind by JSON decoding. Malformed values return def.
func (m Metadata) Int(key string, def int) int {
	if m == nil {
		return def
	}

	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}

// String reads a string value, returning def for missing or non-string values.
func (m Metadata) String(key string, def string) string {
	if m == nil {
		return def
	}

	if v, ok := m[key].(string); ok {
		return v
	}

	return def
}

// IsSocial reports whether the item came from a social platform and therefore
// carries engagement counters.
func (m Metadata) IsSocial() bool {
	return m.String(MetaKeySource, "") == MetaSourceReddit
}

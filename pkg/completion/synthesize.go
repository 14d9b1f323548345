package completion

// Placeholder literals used when a leaf has no value.
const (
	PlaceholderDate     = "1970-01-01"
	PlaceholderDateTime = "1970-01-01T00:00:00Z"
	PlaceholderURI      = "http://example.com/"
	PlaceholderString   = "string"
)

// Synthesize picks the placeholder for a leaf with no existing value.
//
// The first enum value wins, then the date, date-time and uri formats, then
// the string and boolean types. Numbers, bare objects and anything
// unrecognized get nil. An enum mapping or sequence is copied, so the result
// never shares nodes with the schema.
func Synthesize(s *Schema) any {
	if s.Enum != nil {
		if len(s.Enum) == 0 {
			return nil
		}
		return deepCopy(s.Enum[0])
	}

	switch s.Format {
	case "date":
		return PlaceholderDate
	case "date-time":
		return PlaceholderDateTime
	case "uri":
		return PlaceholderURI
	}

	switch {
	case s.HasType("string"):
		return PlaceholderString
	case s.HasType("boolean"):
		return false
	default:
		return nil
	}
}

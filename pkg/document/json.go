package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// decodeJSON walks the go-json token stream so object key order is kept.
// The stream tokenizer skips separators without checking them, so the input
// is validated up front.
func decodeJSON(data []byte) (any, bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, nil
	}
	if !j.Valid(data) {
		// Unmarshal again to get a positioned error message.
		var discard any
		if err := j.Unmarshal(data, &discard); err != nil {
			return nil, false, fmt.Errorf("invalid JSON: %w", err)
		}
		return nil, false, errors.New("invalid JSON")
	}

	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, false, fmt.Errorf("reading JSON: %w", err)
	}
	v, err := jsonValue(dec, tok)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func jsonValue(dec *j.Decoder, tok j.Token) (any, error) {
	switch t := tok.(type) {
	case j.Delim:
		switch t {
		case '{':
			return jsonObject(dec)
		case '[':
			return jsonArray(dec)
		default:
			return nil, fmt.Errorf("unexpected JSON delimiter %q", rune(t))
		}
	case j.Number:
		return number(string(t))
	case float64:
		return normalizeFloat(t), nil
	case string, bool, nil:
		return t, nil
	default:
		return nil, fmt.Errorf("unexpected JSON token %T", tok)
	}
}

func jsonObject(dec *j.Decoder) (any, error) {
	m := orderedmap.New[string, any]()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, jsonEOF(err)
		}
		if d, ok := tok.(j.Delim); ok && d == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected JSON object key, got %v", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, jsonEOF(err)
		}
		v, err := jsonValue(dec, tok)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
}

func jsonArray(dec *j.Decoder) (any, error) {
	arr := make([]any, 0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, jsonEOF(err)
		}
		if d, ok := tok.(j.Delim); ok && d == ']' {
			return arr, nil
		}
		v, err := jsonValue(dec, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func jsonEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return errors.New("unexpected end of JSON input")
	}
	return err
}

// number converts a JSON number literal to int when it is integral and fits,
// and to BigInt when it is integral and does not.
func number(lit string) (any, error) {
	if i, err := strconv.ParseInt(lit, 10, 0); err == nil {
		return int(i), nil
	}
	if b, ok := bigInteger(lit); ok {
		return b, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON number %q: %w", lit, err)
	}
	return f, nil
}

func normalizeFloat(f float64) any {
	if f >= -(1<<53) && f <= 1<<53 && f == float64(int(f)) {
		return int(f)
	}
	return f
}

// encodeJSON marshals compactly and indents afterwards so the output of
// ordered maps' own MarshalJSON is indented like everything else.
func encodeJSON(v any) ([]byte, error) {
	compact, err := j.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := j.Indent(&buf, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting JSON: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

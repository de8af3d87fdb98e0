package common

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ParseJSON decodes a JSON string into v.
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// Reject trailing data after the first value.
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

var unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// QuoteJSONKeys adds double quotes around bare object keys.
func QuoteJSONKeys(raw string) string {
	return unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
}

// ExtractJSON strips markdown fences and surrounding prose from a model
// reply, keeping the outermost JSON value. Replies wrapped in ```json
// blocks and replies with a leading explanation both reduce to the payload.
func ExtractJSON(content string) string {
	txt := strings.TrimSpace(content)
	txt = strings.TrimPrefix(txt, "```json")
	txt = strings.TrimPrefix(txt, "```")
	txt = strings.TrimSuffix(txt, "```")
	txt = strings.TrimSpace(txt)

	objStart, objEnd := strings.Index(txt, "{"), strings.LastIndex(txt, "}")
	arrStart, arrEnd := strings.Index(txt, "["), strings.LastIndex(txt, "]")

	// Prefer an array when it encloses the first object.
	if arrStart != -1 && arrEnd > arrStart && (objStart == -1 || arrStart < objStart) {
		return txt[arrStart : arrEnd+1]
	}
	if objStart != -1 && objEnd > objStart {
		return txt[objStart : objEnd+1]
	}
	return txt
}

// ToJSON marshals v into a JSON string.
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

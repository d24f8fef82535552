package tsdb

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WritePointWithTime writes a point with an explicit timestamp. Points with
// no fields are dropped since line protocol requires at least one.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if len(fields) == 0 {
		return
	}
	c.enqueue(formatLineProtocol(measurement, tags, fields, timestamp))
}

// formatLineProtocol renders
//
//	measurement,tag1=v1,tag2=v2 field1=v1,field2=v2 timestamp_ns
//
// with tags and fields sorted by key.
func formatLineProtocol(measurement string, tags map[string]string, fields map[string]interface{}, t time.Time) string {
	var b strings.Builder
	b.WriteString(escapeMeasurement(measurement))

	for _, k := range sortedKeys(tags) {
		b.WriteByte(',')
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(escapeTag(tags[k]))
	}

	b.WriteByte(' ')
	for i, k := range sortedKeys(fields) {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(formatField(fields[k]))
	}

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(t.UnixNano(), 10))
	return b.String()
}

func formatField(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val) + "i"
	case int64:
		return strconv.FormatInt(val, 10) + "i"
	case bool:
		return strconv.FormatBool(val)
	case string:
		return strconv.Quote(val)
	default:
		return strconv.Quote(fmt.Sprint(val))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeTag escapes commas, equals signs and spaces. Newlines are stripped
// so a value cannot start a new line.
func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}

// escapeMeasurement is escapeTag without the equals sign.
func escapeMeasurement(s string) string {
	return measurementEscaper.Replace(s)
}

var (
	tagEscaper         = strings.NewReplacer("\n", "", "\r", "", " ", `\ `, ",", `\,`, "=", `\=`)
	measurementEscaper = strings.NewReplacer("\n", "", "\r", "", " ", `\ `, ",", `\,`)
)

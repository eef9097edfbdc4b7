package models

// Doc is decoded Firestore document data. Accessors never coerce between
// types: a field holding a number is not a string, and only a real boolean
// is a boolean.
type Doc map[string]interface{}

// String returns a non-empty string field.
func (d Doc) String(key string) (string, bool) {
	s, ok := d[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// StringOr returns the first non-empty string among keys, else def.
func (d Doc) StringOr(def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := d.String(k); ok {
			return s
		}
	}
	return def
}

// Bool returns a boolean field and whether it was present as a boolean.
func (d Doc) Bool(key string) (bool, bool) {
	b, ok := d[key].(bool)
	return b, ok
}

// Flag is Bool with absent treated as false.
func (d Doc) Flag(key string) bool {
	b, _ := d.Bool(key)
	return b
}

// Int returns an integral numeric field.
func (d Doc) Int(key string) (int64, bool) {
	switch v := d[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// Number returns any numeric field as float64.
func (d Doc) Number(key string) (float64, bool) {
	switch v := d[key].(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// Map returns a nested map field, or an empty Doc.
func (d Doc) Map(key string) Doc {
	switch v := d[key].(type) {
	case Doc:
		return v
	case map[string]interface{}:
		return Doc(v)
	}
	return Doc{}
}

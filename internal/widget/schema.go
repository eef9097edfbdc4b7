// internal/widget/schema.go
package widget

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func object(props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
}

func arrayOf(item map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":  "array",
		"items": item,
	}
}

// Scalar fields are optional and may be null; the decoder falls back to the
// field default.
var (
	stringType = map[string]interface{}{"type": []string{"string", "null"}}
	numberType = map[string]interface{}{"type": []string{"number", "null"}}
)

var weeklyClassSchema = object(map[string]interface{}{
	"period":    numberType,
	"subject":   stringType,
	"classroom": stringType,
	"color":     stringType,
})

var schemaDefs = map[string]map[string]interface{}{
	KeyBusRealtime: object(map[string]interface{}{
		"routes": arrayOf(object(map[string]interface{}{
			"name":         stringType,
			"nextTime":     stringType,
			"minutesUntil": numberType,
			"note":         stringType,
		})),
	}),
	KeyWeeklyFullSchedule: object(map[string]interface{}{
		"monday":    arrayOf(weeklyClassSchema),
		"tuesday":   arrayOf(weeklyClassSchema),
		"wednesday": arrayOf(weeklyClassSchema),
		"thursday":  arrayOf(weeklyClassSchema),
		"friday":    arrayOf(weeklyClassSchema),
		"saturday":  arrayOf(weeklyClassSchema),
	}),
	KeyTodaySchedule: object(map[string]interface{}{
		"weekday":       stringType,
		"date":          stringType,
		"currentPeriod": numberType,
		"classes": arrayOf(object(map[string]interface{}{
			"period":    numberType,
			"subject":   stringType,
			"classroom": stringType,
			"color":     stringType,
			"startTime": stringType,
			"endTime":   stringType,
			"duration":  numberType,
		})),
	}),
}

var schemas = mustCompile(schemaDefs)

func mustCompile(defs map[string]map[string]interface{}) map[string]*gojsonschema.Schema {
	out := make(map[string]*gojsonschema.Schema, len(defs))
	for key, def := range defs {
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def))
		if err != nil {
			panic(fmt.Sprintf("widget schema %s: %v", key, err))
		}
		out[key] = s
	}
	return out
}

// Validate checks raw against the schema registered for key.
func Validate(key, raw string) error {
	schema, ok := schemas[key]
	if !ok {
		return fmt.Errorf("no schema for key %s", key)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%s failed validation: %s", key, strings.Join(errs, "; "))
	}
	return nil
}

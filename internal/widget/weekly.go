package widget

import (
	"encoding/json"
	"fmt"
	"regexp"
)

const (
	LayoutWeekly    = "weekly_full_schedule_widget"
	LayoutWeeklyRow = "item_weekly_class"

	weeklyTitle       = "週間時間割"
	weeklyMaxPerDay   = 10
	DefaultClassColor = "#2196F3"
)

// Weekdays in display order with their labels.
var Weekdays = []struct{ Key, Label string }{
	{"monday", "月"},
	{"tuesday", "火"},
	{"wednesday", "水"},
	{"thursday", "木"},
	{"friday", "金"},
	{"saturday", "土"},
}

var hexColor = regexp.MustCompile(`^#([0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)

type weeklyClass struct {
	Period    *float64 `json:"period"`
	Subject   *string  `json:"subject"`
	Classroom *string  `json:"classroom"`
	Color     *string  `json:"color"`
}

// RenderWeekly projects a weekly_full_schedule blob.
func RenderWeekly(raw string) *View {
	v, _ := renderWeekly(raw)
	return v
}

func renderWeekly(raw string) (*View, error) {
	if raw == "" {
		return emptyWeekly(), nil
	}
	if err := Validate(KeyWeeklyFullSchedule, raw); err != nil {
		return emptyWeekly(), err
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return emptyWeekly(), fmt.Errorf("decode %s: %w", KeyWeeklyFullSchedule, err)
	}

	v := weeklyView()
	for _, day := range Weekdays {
		container, list, label := day.Key+"_container", day.Key+"_classes", day.Key+"_label"
		v.Text[label] = day.Label

		var classes []weeklyClass
		if dayRaw, ok := data[day.Key]; ok {
			if err := json.Unmarshal(dayRaw, &classes); err != nil {
				return emptyWeekly(), fmt.Errorf("decode %s.%s: %w", KeyWeeklyFullSchedule, day.Key, err)
			}
		}
		if day.Key == "saturday" && len(classes) == 0 {
			v.Visible[container] = false
			continue
		}
		v.Visible[container] = true

		rows := make([]Row, 0, min(len(classes), weeklyMaxPerDay))
		for _, c := range classes[:min(len(classes), weeklyMaxPerDay)] {
			period := intOr(c.Period, 0)
			row := newRow(LayoutWeeklyRow)
			row.Text["text_subject"] = fmt.Sprintf("[%d] %s", period, stringOr(c.Subject, ""))
			row.Text["text_room"] = stringOr(c.Classroom, "")
			row.Background["color_dot"] = ClassColor(stringOr(c.Color, DefaultClassColor))
			row.Click = &Intent{OpenSchedule: true, OpenDay: day.Label, OpenPeriod: period}
			rows = append(rows, row)
		}
		v.Lists[list] = rows
	}
	return v, nil
}

// ClassColor returns c when it is a #RRGGBB or #AARRGGBB color and the
// default class color otherwise.
func ClassColor(c string) string {
	if hexColor.MatchString(c) {
		return c
	}
	return DefaultClassColor
}

func weeklyView() *View {
	v := newView(LayoutWeekly)
	v.Text["weekly_title"] = weeklyTitle
	v.Click["widget_container"] = Intent{OpenSchedule: true}
	return v
}

func emptyWeekly() *View {
	v := weeklyView()
	v.Empty = true
	for _, day := range Weekdays {
		v.Visible[day.Key+"_container"] = false
	}
	return v
}

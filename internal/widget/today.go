package widget

import (
	"encoding/json"
	"fmt"
)

const (
	LayoutToday    = "today_schedule_widget"
	LayoutTodayRow = "item_today_class"

	todayTitle      = "今日の時間割"
	todayMaxClasses = 5
	HighlightColor  = "#E3F2FD"
)

type todayClass struct {
	Period    *float64 `json:"period"`
	Subject   *string  `json:"subject"`
	Classroom *string  `json:"classroom"`
	Color     *string  `json:"color"`
	StartTime *string  `json:"startTime"`
	EndTime   *string  `json:"endTime"`
}

type todayData struct {
	Weekday       *string      `json:"weekday"`
	Date          *string      `json:"date"`
	CurrentPeriod *float64     `json:"currentPeriod"`
	Classes       []todayClass `json:"classes"`
}

// RenderToday projects a today_schedule blob.
func RenderToday(raw string) *View {
	v, _ := renderToday(raw)
	return v
}

func renderToday(raw string) (*View, error) {
	if raw == "" {
		return emptyToday(), nil
	}
	if err := Validate(KeyTodaySchedule, raw); err != nil {
		return emptyToday(), err
	}
	var data todayData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return emptyToday(), fmt.Errorf("decode %s: %w", KeyTodaySchedule, err)
	}

	v := todayView()
	v.Text["today_weekday"] = stringOr(data.Weekday, "")
	v.Text["today_date"] = stringOr(data.Date, "")

	if len(data.Classes) == 0 {
		v.Visible["classes_container"] = false
		v.Visible["empty_message"] = true
		return v, nil
	}
	v.Visible["classes_container"] = true
	v.Visible["empty_message"] = false

	current := intOr(data.CurrentPeriod, -1)
	rows := make([]Row, 0, min(len(data.Classes), todayMaxClasses))
	for _, c := range data.Classes[:min(len(data.Classes), todayMaxClasses)] {
		period := intOr(c.Period, 0)
		row := newRow(LayoutTodayRow)
		row.Text["text_period"] = fmt.Sprintf("%d限", period)
		row.Text["text_subject"] = stringOr(c.Subject, "")

		if room := stringOr(c.Classroom, ""); room != "" {
			row.Text["text_classroom"] = room
			row.Visible["text_classroom"] = true
		} else {
			row.Visible["text_classroom"] = false
		}

		row.Text["text_time"] = TimeRange(stringOr(c.StartTime, ""), stringOr(c.EndTime, ""))
		row.Background["color_dot"] = ClassColor(stringOr(c.Color, DefaultClassColor))
		if current > 0 && period == current {
			row.Background["item_root"] = HighlightColor
		}
		row.Click = &Intent{OpenSchedule: true}
		rows = append(rows, row)
	}
	v.Lists["classes_container"] = rows
	return v, nil
}

// TimeRange is "start-end", or "" unless both ends are set.
func TimeRange(start, end string) string {
	if start == "" || end == "" {
		return ""
	}
	return start + "-" + end
}

func todayView() *View {
	v := newView(LayoutToday)
	v.Text["today_title"] = todayTitle
	v.Click["widget_container"] = Intent{OpenSchedule: true}
	return v
}

func emptyToday() *View {
	v := todayView()
	v.Empty = true
	v.Text["today_weekday"] = ""
	v.Text["today_date"] = ""
	v.Visible["classes_container"] = false
	v.Visible["empty_message"] = true
	return v
}

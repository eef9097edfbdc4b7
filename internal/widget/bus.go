package widget

import (
	"encoding/json"
	"fmt"
)

const (
	LayoutBus = "bus_realtime_widget"

	busTitle   = "学バス情報"
	busNoData  = "データなし"
	noNextTime = "--:--"
)

type busRoute struct {
	Name         *string  `json:"name"`
	NextTime     *string  `json:"nextTime"`
	MinutesUntil *float64 `json:"minutesUntil"`
	Note         *string  `json:"note"`
}

type busData struct {
	Routes []busRoute `json:"routes"`
}

var routeSlots = [2]struct{ container, name, time string }{
	{"route_1_container", "route_1_name", "route_1_time"},
	{"route_2_container", "route_2_name", "route_2_time"},
}

// RenderBus projects a bus_realtime blob. Absent or bad data renders the
// empty state.
func RenderBus(raw string) *View {
	v, _ := renderBus(raw)
	return v
}

func renderBus(raw string) (*View, error) {
	if raw == "" {
		return emptyBus(), nil
	}
	if err := Validate(KeyBusRealtime, raw); err != nil {
		return emptyBus(), err
	}
	var data busData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return emptyBus(), fmt.Errorf("decode %s: %w", KeyBusRealtime, err)
	}

	v := busView()
	for i, slot := range routeSlots {
		if i >= len(data.Routes) {
			v.Visible[slot.container] = false
			continue
		}
		r := data.Routes[i]
		v.Visible[slot.container] = true
		v.Text[slot.name] = stringOr(r.Name, "")
		v.Text[slot.time] = RouteTimeText(stringOr(r.NextTime, noNextTime), intOr(r.MinutesUntil, -1), stringOr(r.Note, ""))
	}
	v.Text["bus_footer"] = ""
	return v, nil
}

// RouteTimeText formats "HH:MM (N分後)  [note]"; the minutes part is dropped
// when minutes is negative and the note part when note is empty.
func RouteTimeText(nextTime string, minutes int, note string) string {
	info := nextTime
	if minutes >= 0 {
		info = fmt.Sprintf("%s (%d分後)", nextTime, minutes)
	}
	if note != "" {
		return fmt.Sprintf("%s  [%s]", info, note)
	}
	return info
}

func busView() *View {
	v := newView(LayoutBus)
	v.Text["bus_title"] = busTitle
	v.Click["widget_container"] = Intent{OpenSchedule: false}
	v.Click["btn_refresh"] = Intent{}
	return v
}

func emptyBus() *View {
	v := busView()
	v.Empty = true
	v.Visible["route_1_container"] = false
	v.Visible["route_2_container"] = false
	v.Text["bus_footer"] = busNoData
	return v
}

func stringOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func intOr(n *float64, def int) int {
	if n == nil {
		return def
	}
	return int(*n)
}

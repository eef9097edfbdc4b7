// internal/widget/view.go
package widget

// Intent is what tapping a view opens in the app.
type Intent struct {
	OpenSchedule bool   `json:"openSchedule"`
	OpenDay      string `json:"openDay,omitempty"`
	OpenPeriod   int    `json:"openPeriod,omitempty"`
}

// Row is one inflated list item.
type Row struct {
	Layout     string            `json:"layout"`
	Text       map[string]string `json:"text"`
	Visible    map[string]bool   `json:"visible,omitempty"`
	Background map[string]string `json:"background,omitempty"`
	Click      *Intent           `json:"click,omitempty"`
}

// View is the projection of one cache blob onto a widget layout's slots.
// Slot names are the layout's view ids.
type View struct {
	Layout  string            `json:"layout"`
	Text    map[string]string `json:"text"`
	Visible map[string]bool   `json:"visible"`
	Lists   map[string][]Row  `json:"lists,omitempty"`
	Click   map[string]Intent `json:"click,omitempty"`
	// Empty marks the fixed empty-state render.
	Empty bool `json:"empty"`
}

func newView(layout string) *View {
	return &View{
		Layout:  layout,
		Text:    make(map[string]string),
		Visible: make(map[string]bool),
		Lists:   make(map[string][]Row),
		Click:   make(map[string]Intent),
	}
}

func newRow(layout string) Row {
	return Row{
		Layout:     layout,
		Text:       make(map[string]string),
		Visible:    make(map[string]bool),
		Background: make(map[string]string),
	}
}

// Shown reports whether slot is visible. Slots never touched default to
// visible, as in the layout XML.
func (v *View) Shown(slot string) bool {
	visible, ok := v.Visible[slot]
	return !ok || visible
}

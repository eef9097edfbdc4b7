// pkg/registry/schema.go
package registry

// Event types a trigger can be bound to.
const (
	EventCreated   = "created"
	EventUpdated   = "updated"
	EventScheduled = "scheduled"
)

// TriggerRegistry is the deployment manifest: which platform event is routed
// to which trigger name.
type TriggerRegistry struct {
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Triggers    []Trigger `json:"triggers"`
}

type Trigger struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Event       string `json:"event"`
	// Document is the Firestore path pattern, e.g. "bulletin_posts/{postId}".
	Document    string `json:"document,omitempty"`
	WebhookKind string `json:"webhookKind,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
}

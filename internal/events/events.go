package events

import "time"

const (
	DatasetChanged = "dataset.changed"
	DatasetRemoved = "dataset.removed"
	WelcomeType    = "welcome"
)

type DatasetEvent struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// Welcome is the first frame a client receives: the datasets available at
// connect time, so it can render without a separate /datasets call.
type Welcome struct {
	Type     string    `json:"type"`
	Datasets []string  `json:"datasets"`
	At       time.Time `json:"at"`
}

package models

// ObjectRef is a managed object reference. Two refs point at the same object
// only when both fields are equal.
type ObjectRef struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (r ObjectRef) String() string {
	return r.Type + ":" + r.Value
}

func (r ObjectRef) IsZero() bool {
	return r.Type == "" && r.Value == ""
}

type Datastore struct {
	Name string    `json:"name"`
	Ref  ObjectRef `json:"ref"`
}

// Datacenter is a grouping node in the inventory tree.
type Datacenter struct {
	Name string    `json:"name"`
	Ref  ObjectRef `json:"ref"`
}

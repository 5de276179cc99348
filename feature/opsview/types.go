package opsview

// The Opsview config API represents nearly everything as strings:
// object ids, page numbers and booleans ("0"/"1") alike. The wire
// types below keep that representation instead of fighting it.

// Ref names a linked config object.
type Ref struct {
	Name string `json:"name"`
}

// HostGroupRef addresses a host group by its materialized path, which
// creates missing intermediate groups on write.
type HostGroupRef struct {
	MatPath string `json:"matpath,omitempty"`
}

// HostAttribute is one variable instance attached to a host.
type HostAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hashtag is an Opsview keyword.
type Hashtag struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	AllServiceChecks string `json:"all_servicechecks,omitempty"`
	Enabled          string `json:"enabled,omitempty"`
	Hosts            []Ref  `json:"hosts,omitempty"`
	ServiceChecks    []Ref  `json:"servicechecks,omitempty"`
}

// Host is the wire form of a monitored host. Reads return more fields
// than this; writes send exactly this shape.
type Host struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name"`
	IP             string          `json:"ip"`
	CheckCommand   Ref             `json:"check_command"`
	HostGroup      HostGroupRef    `json:"hostgroup"`
	HostTemplates  []Ref           `json:"hosttemplates"`
	HostAttributes []HostAttribute `json:"hostattributes"`
	MonitoredBy    Ref             `json:"monitored_by"`
	Keywords       []Hashtag       `json:"keywords"`
}

// Attribute returns the value of the named host attribute and whether
// it was present.
func (h Host) Attribute(name string) (string, bool) {
	for _, a := range h.HostAttributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Cluster is a collector monitoring cluster.
type Cluster struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

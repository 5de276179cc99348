package reconcile

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Key identifies a host across the CMDB and the monitoring target.
// It is the CMDB sys_id when known, otherwise a normalized host name.
type Key string

// RawCI is a configuration item as fetched from the CMDB, before any
// interpretation of its attributes field.
type RawCI struct {
	// SysID is the CMDB-side unique identifier.
	SysID string

	// Name is the CI display name.
	Name string

	// Attributes is the raw free-text attributes field.
	Attributes string

	// IP is the CI's IP address, possibly empty.
	IP string

	// FQDN is the CI's fully qualified domain name, possibly empty.
	FQDN string

	// AssetTag is the asset tag, possibly empty.
	AssetTag string

	// ClassName is the CMDB class, e.g. "cmdb_ci_linux_server".
	ClassName string
}

// Address returns the monitoring address for the CI. The IP wins when
// both IP and FQDN are set.
func (c RawCI) Address() string {
	if c.IP != "" {
		return c.IP
	}
	return c.FQDN
}

// Variable is a single host variable pushed to the monitoring target.
type Variable struct {
	Name  string
	Value string
}

// DesiredHost is the target-shaped host derived from one CMDB record.
// All slices are normalized: Hashtags is deduplicated and sorted,
// HostTemplates is deduplicated keeping first-seen order.
type DesiredHost struct {
	ExternalID    string
	Name          string
	Address       string
	Cluster       string
	Hashtags      []string
	HostTemplates []string
	Variables     []Variable
	HostGroup     string
}

// Key returns the reconciliation identity of the host.
func (d DesiredHost) Key() Key {
	k, _ := IdentityKey(d.ExternalID, d.Name)
	return k
}

// ExistingHost is the reconciliation-relevant subset of a host already
// present in the monitoring target.
type ExistingHost struct {
	Key              Key
	Name             string
	Cluster          string
	Hashtags         []string
	HostTemplates    []string
	TargetInternalID string
}

// ClusterCatalog is the set of collector cluster names known to the
// monitoring target.
type ClusterCatalog map[string]struct{}

// NewClusterCatalog builds a catalog from cluster names.
func NewClusterCatalog(names ...string) ClusterCatalog {
	c := make(ClusterCatalog, len(names))
	for _, n := range names {
		c[n] = struct{}{}
	}
	return c
}

// Contains reports whether the catalog knows the given cluster name.
func (c ClusterCatalog) Contains(name string) bool {
	_, ok := c[name]
	return ok
}

// Names returns the cluster names in sorted order.
func (c ClusterCatalog) Names() []string {
	out := make([]string, 0, len(c))
	for n := range c {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ActionType classifies a planned sync action.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionNoop   ActionType = "noop"
)

// SyncAction is one planned step against the monitoring target.
type SyncAction struct {
	// Type specifies the action to perform.
	Type ActionType

	// Key is the host identity the action applies to.
	Key Key

	// Desired is the host state to converge to. Nil for noops is never
	// the case: every action carries its desired state.
	Desired *DesiredHost

	// Existing is the current target state. Nil for creates.
	Existing *ExistingHost

	// Diff details the changed fields. Only set for updates.
	Diff *FieldDiff

	// Reason explains why this action was planned.
	Reason string
}

// FieldDiff records which fields differ between a desired host and its
// existing counterpart.
type FieldDiff struct {
	ClusterChanged     bool
	ClusterFrom        string
	ClusterTo          string
	HashtagsAdded      []string
	HashtagsRemoved    []string
	TemplatesAdded     []string
	TemplatesRemoved   []string
	TemplatesReordered bool
}

// Empty reports whether the diff carries no changes.
func (d FieldDiff) Empty() bool {
	return !d.ClusterChanged &&
		len(d.HashtagsAdded) == 0 && len(d.HashtagsRemoved) == 0 &&
		len(d.TemplatesAdded) == 0 && len(d.TemplatesRemoved) == 0 &&
		!d.TemplatesReordered
}

// Fields lists the names of the changed fields, for reasons and logs.
func (d FieldDiff) Fields() []string {
	var out []string
	if d.ClusterChanged {
		out = append(out, "cluster")
	}
	if len(d.HashtagsAdded) > 0 || len(d.HashtagsRemoved) > 0 {
		out = append(out, "hashtags")
	}
	if len(d.TemplatesAdded) > 0 || len(d.TemplatesRemoved) > 0 || d.TemplatesReordered {
		out = append(out, "templates")
	}
	return out
}

// SyncPlan is the full outcome of planning one run: the actions to
// take, the hosts that could not be planned, and the target hosts no
// CMDB record claimed.
type SyncPlan struct {
	// Actions contains one entry per desired host that planned cleanly,
	// including noops.
	Actions []SyncAction

	// Errors contains per-host planning failures. A failed host never
	// blocks the rest of the plan.
	Errors []error

	// Unmatched lists target host keys absent from the desired state.
	// They are reported, never deleted.
	Unmatched []Key
}

// PlanSummary provides aggregate counts for a sync plan.
type PlanSummary struct {
	Creates   int `json:"creates" yaml:"creates"`
	Updates   int `json:"updates" yaml:"updates"`
	Noops     int `json:"noops" yaml:"noops"`
	Errors    int `json:"errors" yaml:"errors"`
	Unmatched int `json:"unmatched" yaml:"unmatched"`
}

// Summary counts the plan's actions by type.
func (p *SyncPlan) Summary() PlanSummary {
	s := PlanSummary{
		Errors:    len(p.Errors),
		Unmatched: len(p.Unmatched),
	}
	for _, a := range p.Actions {
		switch a.Type {
		case ActionCreate:
			s.Creates++
		case ActionUpdate:
			s.Updates++
		case ActionNoop:
			s.Noops++
		}
	}
	return s
}

// Stage names the pipeline stage where a failure occurred.
type Stage string

const (
	StageParse   Stage = "parse"
	StageBuild   Stage = "build"
	StagePlan    Stage = "plan"
	StageExecute Stage = "execute"
	StageReload  Stage = "reload"
)

// Failure is one host-level failure recorded in a run report.
type Failure struct {
	Key   Key    `json:"key" yaml:"key"`
	Stage Stage  `json:"stage" yaml:"stage"`
	Cause string `json:"cause" yaml:"cause"`
}

// ActionRecord is the report-friendly projection of a planned action.
type ActionRecord struct {
	Type   ActionType `json:"type" yaml:"type"`
	Key    Key        `json:"key" yaml:"key"`
	Name   string     `json:"name" yaml:"name"`
	Reason string     `json:"reason" yaml:"reason"`
}

// RunReport is the complete outcome of one sync run. It is populated
// exclusively by the run that owns it and read-only afterwards.
type RunReport struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Instance   string    `json:"instance" yaml:"instance"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`

	// Created and Updated count executed actions; in a dry run they
	// stay zero and Planned carries the would-be work.
	Created        int `json:"created" yaml:"created"`
	Updated        int `json:"updated" yaml:"updated"`
	Noops          int `json:"noops" yaml:"noops"`
	SkippedInvalid int `json:"skipped_invalid" yaml:"skipped_invalid"`
	Failed         int `json:"failed" yaml:"failed"`
	Warnings       int `json:"warnings" yaml:"warnings"`

	// Failures holds one entry per skipped or failed host: build-stage
	// entries correspond to SkippedInvalid, plan and execute entries
	// to Failed.
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`

	UnmatchedKeys []Key `json:"unmatched_keys,omitempty" yaml:"unmatched_keys,omitempty"`

	ReloadIssued bool `json:"reload_issued" yaml:"reload_issued"`

	Planned PlanSummary    `json:"planned" yaml:"planned"`
	Actions []ActionRecord `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Duration returns the wall-clock time the run took.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Source fetches configuration items from the CMDB.
type Source interface {
	// FetchCIs returns every CMDB record carrying sync directives.
	FetchCIs(ctx context.Context) ([]RawCI, error)

	// Instance identifies the CMDB instance, e.g. its hostname.
	Instance() string
}

// Target is the monitoring system being reconciled against.
type Target interface {
	FetchState(ctx context.Context) ([]ExistingHost, error)
	FetchClusters(ctx context.Context) (ClusterCatalog, error)
	CreateHost(ctx context.Context, host DesiredHost) error
	UpdateHost(ctx context.Context, internalID string, host DesiredHost, diff FieldDiff) error
	Reload(ctx context.Context) error
}

// PendingChecker is an optional Target capability: it reports whether
// the target has configuration changes pending from outside this sync.
type PendingChecker interface {
	PendingChanges(ctx context.Context) (bool, error)
}

// NormalizeName converts a CMDB host name to the form the monitoring
// target stores, replacing spaces with underscores.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// IdentityKey derives the reconciliation key for a host. The external
// CMDB id is preferred; when it is empty the normalized name is used
// and the second return value reports that fallback.
func IdentityKey(externalID, name string) (Key, bool) {
	if externalID != "" {
		return Key(externalID), false
	}
	return Key(NormalizeName(name)), true
}

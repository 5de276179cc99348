package opsview

import (
	"context"

	"cmdb-sync/core/reconcile"

	"go.uber.org/zap"
)

// Target adapts the REST client to the reconciler's write side for one
// CMDB instance. Hosts from other instances, or created by hand, are
// invisible to the reconciliation.
type Target struct {
	client   *Client
	instance string
	logger   *zap.Logger
}

// NewTarget wraps a client for use as a reconcile.Target.
func NewTarget(client *Client, instance string, logger *zap.Logger) *Target {
	return &Target{client: client, instance: instance, logger: logger}
}

// FetchState returns the hosts this sync manages for its instance.
func (t *Target) FetchState(ctx context.Context) ([]reconcile.ExistingHost, error) {
	hosts, err := t.client.ListHosts(ctx)
	if err != nil {
		return nil, err
	}

	var out []reconcile.ExistingHost
	for _, h := range hosts {
		if instance, ok := h.Attribute(reconcile.VarInstance); !ok || instance != t.instance {
			continue
		}

		sysID, _ := h.Attribute(reconcile.VarSysID)
		key, byName := reconcile.IdentityKey(sysID, h.Name)
		if byName {
			// Identity falls back to the name; a rename in the CMDB
			// would orphan this host.
			t.logger.Warn("target host has no sys_id attribute, keyed by name",
				zap.String("host", h.Name))
		}

		out = append(out, reconcile.ExistingHost{
			Key:              key,
			Name:             h.Name,
			Cluster:          h.MonitoredBy.Name,
			Hashtags:         refNames(h.Keywords),
			HostTemplates:    templateNames(h.HostTemplates),
			TargetInternalID: h.ID,
		})
	}
	return out, nil
}

// FetchClusters returns the collector cluster catalog.
func (t *Target) FetchClusters(ctx context.Context) (reconcile.ClusterCatalog, error) {
	clusters, err := t.client.ListClusters(ctx)
	if err != nil {
		return nil, err
	}

	catalog := make(reconcile.ClusterCatalog, len(clusters))
	for _, c := range clusters {
		catalog[c.Name] = struct{}{}
	}
	return catalog, nil
}

// CreateHost creates the host on the target.
func (t *Target) CreateHost(ctx context.Context, host reconcile.DesiredHost) error {
	return t.client.CreateHost(ctx, wireHost(host, ""))
}

// UpdateHost converges the host with the given internal id. The full
// desired state is sent; a partial payload could leave removed list
// members behind. The diff only drives logging.
func (t *Target) UpdateHost(ctx context.Context, internalID string, host reconcile.DesiredHost, diff reconcile.FieldDiff) error {
	t.logger.Debug("updating host",
		zap.String("host", host.Name),
		zap.String("internal_id", internalID),
		zap.Strings("fields", diff.Fields()))
	return t.client.UpdateHost(ctx, internalID, wireHost(host, internalID))
}

// Reload applies the accumulated configuration changes.
func (t *Target) Reload(ctx context.Context) error {
	return t.client.Reload(ctx)
}

// PendingChanges reports whether the target has configuration changes
// staged from outside this sync.
func (t *Target) PendingChanges(ctx context.Context) (bool, error) {
	return t.client.ReloadStatus(ctx)
}

// wireHost maps a desired host to the API's host shape.
func wireHost(d reconcile.DesiredHost, internalID string) Host {
	templates := make([]Ref, 0, len(d.HostTemplates))
	for _, name := range d.HostTemplates {
		templates = append(templates, Ref{Name: name})
	}

	attrs := make([]HostAttribute, 0, len(d.Variables))
	for _, v := range d.Variables {
		attrs = append(attrs, HostAttribute{Name: v.Name, Value: v.Value})
	}

	keywords := make([]Hashtag, 0, len(d.Hashtags))
	for _, name := range d.Hashtags {
		keywords = append(keywords, Hashtag{
			Name:             name,
			Description:      hashtagDescription,
			AllServiceChecks: "1",
			Enabled:          "1",
		})
	}

	return Host{
		ID:             internalID,
		Name:           d.Name,
		IP:             d.Address,
		CheckCommand:   Ref{Name: defaultCheckCommand},
		HostGroup:      HostGroupRef{MatPath: d.HostGroup},
		HostTemplates:  templates,
		HostAttributes: attrs,
		MonitoredBy:    Ref{Name: d.Cluster},
		Keywords:       keywords,
	}
}

func refNames(tags []Hashtag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}

func templateNames(refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}

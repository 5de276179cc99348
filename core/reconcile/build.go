package reconcile

import (
	"fmt"
	"regexp"
	"sort"

	"cmdb-sync/core/attributes"
)

// Variable names attached to every synced host.
const (
	VarSysID    = "SERVICENOW_SYS_ID"
	VarAssetTag = "SERVICENOW_ASSET_TAG"
	VarInstance = "SERVICENOW_INSTANCE"
)

// maxVariableLen is the longest variable value the target accepts.
const maxVariableLen = 63

var (
	clusterPattern = regexp.MustCompile(`^[A-Za-z0-9 ._-]+$`)
	hashtagPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	hashtagRewrite = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// BuildPolicy carries the run-wide inputs of desired-state building.
type BuildPolicy struct {
	// Instance is the CMDB instance identifier, e.g. its hostname.
	Instance string

	// DefaultTemplate is assigned to hosts that request no templates.
	DefaultTemplate string
}

// HashtagForName converts an arbitrary name into a valid hashtag by
// replacing every disallowed character with an underscore.
func HashtagForName(name string) string {
	return hashtagRewrite.ReplaceAllString(name, "_")
}

// BuildDesiredHost derives the desired target state for one CMDB record
// from its parsed directive set.
//
// A record without a collector cluster directive is not in scope for
// syncing: the result is (nil, nil). A record whose directives are
// present but invalid returns a ValidationError.
func BuildDesiredHost(ci RawCI, set attributes.Set, policy BuildPolicy) (*DesiredHost, error) {
	cluster, ok := set.Get(attributes.DirectiveCluster)
	if !ok {
		return nil, nil
	}

	key, _ := IdentityKey(ci.SysID, ci.Name)

	if cluster.Value == "" {
		return nil, &ValidationError{Key: key, Field: "cluster", Reason: "directive present but value is empty"}
	}
	if !clusterPattern.MatchString(cluster.Value) {
		return nil, &ValidationError{Key: key, Field: "cluster", Reason: fmt.Sprintf("name %q contains disallowed characters", cluster.Value)}
	}
	if ci.Name == "" {
		return nil, &ValidationError{Key: key, Field: "name", Reason: "record has no name"}
	}
	if ci.Address() == "" {
		return nil, &ValidationError{Key: key, Field: "address", Reason: "record has neither ip address nor fqdn"}
	}

	host := &DesiredHost{
		ExternalID: ci.SysID,
		Name:       NormalizeName(ci.Name),
		Address:    ci.Address(),
		Cluster:    cluster.Value,
		HostGroup:  fmt.Sprintf("Opsview,ServiceNow,%s,%s,", policy.Instance, ci.ClassName),
	}

	hashtags := map[string]struct{}{}
	if d, ok := set.Get(attributes.DirectiveHashtags); ok {
		for _, tag := range d.Values {
			if !hashtagPattern.MatchString(tag) {
				return nil, &ValidationError{Key: key, Field: "hashtag", Reason: fmt.Sprintf("%q contains disallowed characters", tag)}
			}
			hashtags[tag] = struct{}{}
		}
	}

	// The cluster and instance hashtags are always present so every
	// synced host can be found by where it came from and where it is
	// monitored.
	hashtags[HashtagForName(cluster.Value)] = struct{}{}
	hashtags[HashtagForName(policy.Instance)] = struct{}{}

	host.Hashtags = make([]string, 0, len(hashtags))
	for tag := range hashtags {
		host.Hashtags = append(host.Hashtags, tag)
	}
	sort.Strings(host.Hashtags)

	if d, ok := set.Get(attributes.DirectiveTemplates); ok {
		seen := map[string]struct{}{}
		for _, tpl := range d.Values {
			if _, dup := seen[tpl]; dup {
				continue
			}
			seen[tpl] = struct{}{}
			host.HostTemplates = append(host.HostTemplates, tpl)
		}
	}
	if len(host.HostTemplates) == 0 && policy.DefaultTemplate != "" {
		host.HostTemplates = []string{policy.DefaultTemplate}
	}

	host.Variables = []Variable{{Name: VarSysID, Value: ci.SysID}}
	if ci.AssetTag != "" {
		host.Variables = append(host.Variables, Variable{Name: VarAssetTag, Value: ci.AssetTag})
	}
	host.Variables = append(host.Variables, Variable{Name: VarInstance, Value: policy.Instance})

	for _, v := range host.Variables {
		if len(v.Value) > maxVariableLen {
			return nil, &ValidationError{Key: key, Field: "variable", Reason: fmt.Sprintf("%s value exceeds %d characters", v.Name, maxVariableLen)}
		}
	}

	return host, nil
}

package opsview

import (
	"context"
	"errors"
	"strings"

	"cmdb-sync/core/reconcile"

	"go.uber.org/zap"
)

// PurgeResult summarizes what a purge removed.
type PurgeResult struct {
	HostsDeleted   int      `json:"hosts_deleted" yaml:"hosts_deleted"`
	HostNames      []string `json:"host_names,omitempty" yaml:"host_names,omitempty"`
	HashtagsPruned int      `json:"hashtags_pruned" yaml:"hashtags_pruned"`
	ReloadIssued   bool     `json:"reload_issued" yaml:"reload_issued"`
}

// PurgeInstance removes every host that came from the given CMDB
// instance, then prunes sync-created hashtags left without any host or
// service check, and reloads once when anything was removed.
//
// This is an operator action. A sync run never deletes; an empty CMDB
// plans zero actions and leaves the target alone.
func PurgeInstance(ctx context.Context, client *Client, instance string, logger *zap.Logger) (*PurgeResult, error) {
	if instance == "" {
		return nil, errors.New("instance is required")
	}

	hosts, err := client.ListHosts(ctx)
	if err != nil {
		return nil, err
	}

	var ids, names []string
	for _, h := range hosts {
		if value, ok := h.Attribute(reconcile.VarInstance); ok && value == instance {
			ids = append(ids, h.ID)
			names = append(names, h.Name)
		}
	}

	result := &PurgeResult{HostNames: names}

	if len(ids) > 0 {
		for _, name := range names {
			logger.Info("deleting host", zap.String("host", name))
		}
		if err := client.DeleteHosts(ctx, ids); err != nil {
			return nil, err
		}
		result.HostsDeleted = len(ids)
	} else {
		logger.Info("no hosts to delete", zap.String("instance", instance))
	}

	pruned, err := pruneHashtags(ctx, client, logger)
	if err != nil {
		return nil, err
	}
	result.HashtagsPruned = pruned

	if result.HostsDeleted > 0 || result.HashtagsPruned > 0 {
		if err := client.Reload(ctx); err != nil {
			return nil, err
		}
		result.ReloadIssued = true
	}

	return result, nil
}

// pruneHashtags deletes sync-created keywords that tag nothing anymore.
// The keyword list is re-read after the host deletion so membership
// reflects it.
func pruneHashtags(ctx context.Context, client *Client, logger *zap.Logger) (int, error) {
	tags, err := client.ListHashtags(ctx)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, tag := range tags {
		if !strings.HasPrefix(tag.Description, hashtagDescription) {
			continue
		}
		if len(tag.Hosts) > 0 || len(tag.ServiceChecks) > 0 {
			continue
		}

		logger.Info("pruning hashtag", zap.String("hashtag", tag.Name))
		if err := client.DeleteHashtag(ctx, tag.ID); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

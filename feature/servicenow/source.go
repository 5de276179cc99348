package servicenow

import (
	"context"

	"cmdb-sync/core/reconcile"

	"go.uber.org/zap"
)

// Source adapts the Table API client to the reconciler's CMDB side.
type Source struct {
	client *Client
	logger *zap.Logger
}

// NewSource wraps a client for use as a reconcile.Source.
func NewSource(client *Client, logger *zap.Logger) *Source {
	return &Source{client: client, logger: logger}
}

// Instance returns the CMDB instance name.
func (s *Source) Instance() string {
	return s.client.Instance()
}

// FetchCIs returns all in-scope configuration items. Records map 1:1;
// whether a record is usable is decided later, where skips are counted.
func (s *Source) FetchCIs(ctx context.Context) ([]reconcile.RawCI, error) {
	records, err := s.client.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetched cmdb records",
		zap.String("instance", s.client.Instance()),
		zap.Int("count", len(records)))

	cis := make([]reconcile.RawCI, 0, len(records))
	for _, rec := range records {
		cis = append(cis, reconcile.RawCI{
			SysID:      rec.SysID,
			Name:       rec.Name,
			Attributes: rec.Attributes,
			IP:         rec.IPAddress,
			FQDN:       rec.FQDN,
			AssetTag:   rec.AssetTag,
			ClassName:  rec.SysClassName,
		})
	}
	return cis, nil
}

package servicenow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func TestSourceFetchCIs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tableResponse{Result: []Record{
			{
				SysID:        "0a1b2c",
				Name:         "db server 01",
				Attributes:   "OpsviewCollectorCluster=Cluster-01",
				IPAddress:    "10.0.0.5",
				FQDN:         "db01.example.com",
				AssetTag:     "P100200",
				SysClassName: "cmdb_ci_linux_server",
			},
		}})
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	src := NewSource(client, zap.NewNop())

	cis, err := src.FetchCIs(context.Background())
	require.NoError(t, err)
	require.Len(t, cis, 1)

	ci := cis[0]
	assert.Equal(t, "0a1b2c", ci.SysID)
	assert.Equal(t, "db server 01", ci.Name)
	assert.Equal(t, "OpsviewCollectorCluster=Cluster-01", ci.Attributes)
	assert.Equal(t, "10.0.0.5", ci.IP)
	assert.Equal(t, "db01.example.com", ci.FQDN)
	assert.Equal(t, "P100200", ci.AssetTag)
	assert.Equal(t, "cmdb_ci_linux_server", ci.ClassName)
}

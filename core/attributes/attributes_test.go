package attributes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantCluster  string
		wantHashtags []string
		wantTpls     []string
		wantWarnings int
	}{
		{
			name:         "full directive set",
			raw:          `OpsviewCollectorCluster=Cluster-01;OpsviewHashtags=lab,snow;OpsviewHostTemplates="OS - Unix Base",Custom`,
			wantCluster:  "Cluster-01",
			wantHashtags: []string{"lab", "snow"},
			wantTpls:     []string{"OS - Unix Base", "Custom"},
		},
		{
			name:        "cluster only",
			raw:         "OpsviewCollectorCluster=Production",
			wantCluster: "Production",
		},
		{
			name:         "whitespace around separators",
			raw:          " OpsviewCollectorCluster = Cluster-01 ; OpsviewHashtags = a , b ",
			wantCluster:  "Cluster-01",
			wantHashtags: []string{"a", "b"},
		},
		{
			name:         "quoted element containing separators",
			raw:          `OpsviewHashtags="one,two;three",plain`,
			wantHashtags: []string{"one,two;three", "plain"},
		},
		{
			name:         "empty list elements dropped",
			raw:          "OpsviewHashtags=a,,b,",
			wantHashtags: []string{"a", "b"},
		},
		{
			name:         "unterminated quote fails only that directive",
			raw:          `OpsviewHostTemplates="OS - Unix;OpsviewCollectorCluster=Cluster-01`,
			wantWarnings: 1,
		},
		{
			name:         "quote inside bare token fails the directive",
			raw:          `OpsviewCollectorCluster=C1;OpsviewHashtags=ab"cd`,
			wantCluster:  "C1",
			wantWarnings: 1,
		},
		{
			name:         "text after closing quote fails the directive",
			raw:          `OpsviewCollectorCluster=C1;OpsviewHostTemplates="Base"x,Other`,
			wantCluster:  "C1",
			wantWarnings: 1,
		},
		{
			name:         "missing equals sign",
			raw:          "OpsviewCollectorCluster=C1;bogus clause",
			wantCluster:  "C1",
			wantWarnings: 1,
		},
		{
			name:         "duplicate directive keeps first value",
			raw:          "OpsviewCollectorCluster=First;OpsviewCollectorCluster=Second",
			wantCluster:  "First",
			wantWarnings: 1,
		},
		{
			name: "empty string",
			raw:  "",
		},
		{
			name: "only separators",
			raw:  ";;;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, warnings := Parse(tt.raw)

			assert.Len(t, warnings, tt.wantWarnings)

			cluster, ok := set.Get(DirectiveCluster)
			if tt.wantCluster != "" {
				require.True(t, ok)
				assert.Equal(t, tt.wantCluster, cluster.Value)
			}
			if tt.wantHashtags != nil {
				d, ok := set.Get(DirectiveHashtags)
				require.True(t, ok)
				assert.Equal(t, tt.wantHashtags, d.Values)
			}
			if tt.wantTpls != nil {
				d, ok := set.Get(DirectiveTemplates)
				require.True(t, ok)
				assert.Equal(t, tt.wantTpls, d.Values)
			}
		})
	}
}

func TestParseEmptyClusterValueIsPreserved(t *testing.T) {
	set, warnings := Parse("OpsviewCollectorCluster=")

	assert.Empty(t, warnings)
	d, ok := set.Get(DirectiveCluster)
	require.True(t, ok, "an explicit empty value still registers the directive")
	assert.Equal(t, "", d.Value)
}

func TestParseUnknownDirectivePassThrough(t *testing.T) {
	set, warnings := Parse("CustomField=anything goes, even commas;OpsviewCollectorCluster=C1")

	assert.Empty(t, warnings)
	d, ok := set.Get("CustomField")
	require.True(t, ok)
	assert.Equal(t, "anything goes, even commas", d.Value)
	assert.Nil(t, d.Values, "unrecognized directives keep their raw value only")
}

func TestParseOrderAndAccessors(t *testing.T) {
	set, warnings := Parse("B=2;A=1;C=3")

	assert.Empty(t, warnings)
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Has("A"))
	assert.False(t, set.Has("a"), "directive names are case-sensitive")

	var names []string
	for _, d := range set.Directives() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"B", "A", "C"}, names)
}

func TestParseQuotedElementPreservesInnerSpaces(t *testing.T) {
	set, warnings := Parse(`OpsviewHostTemplates="  padded  ",bare`)

	assert.Empty(t, warnings)
	d, ok := set.Get(DirectiveTemplates)
	require.True(t, ok)
	assert.Equal(t, []string{"  padded  ", "bare"}, d.Values)
}

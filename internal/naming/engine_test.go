package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itechkenya/address-router/internal/router"
)

func TestNamerDefaultTemplate(t *testing.T) {
	engine := NewEngine()

	namer, err := engine.Namer(DefaultTemplate)
	require.NoError(t, err)

	assert.Equal(t, "ke_go_health_county1", namer("ke.go.health.county1"))
	assert.Equal(t, router.ChannelName("ke.go.health.county1.facility1"),
		namer("ke.go.health.county1.facility1"))
}

func TestNamerCustomTemplates(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		template string
		address  string
		channel  string
	}{
		{"hie.{{underscore address}}", "ke.go.health.county1", "hie.ke_go_health_county1"},
		{"{{uppercase underscored}}", "ke.go.health", "KE_GO_HEALTH"},
		{"{{join tokens \"-\"}}", "ke.go.health.county1", "ke-go-health-county1"},
		{"{{leaf}}_{{underscored}}", "ke.go.health.emr", "emr_ke_go_health_emr"},
	}
	for _, tt := range tests {
		namer, err := engine.Namer(tt.template)
		require.NoError(t, err, "template %q", tt.template)
		assert.Equal(t, tt.channel, namer(tt.address), "template %q", tt.template)
	}
}

func TestNamerInvalidTemplate(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Namer("{{#if}}")
	require.Error(t, err)
}

func TestNamerSatisfiesRouterSeam(t *testing.T) {
	engine := NewEngine()

	namer, err := engine.Namer("{{underscore address}}")
	require.NoError(t, err)

	r, err := router.New("ke.go.health.county1", router.WithNamer(namer))
	require.NoError(t, err)

	channel, err := r.DispatchTo("ke.go.health.county1.facility2.emr")
	require.NoError(t, err)
	assert.Equal(t, "ke_go_health_county1_facility2", channel)
}

func TestValidateTemplate(t *testing.T) {
	engine := NewEngine()

	assert.NoError(t, engine.ValidateTemplate(DefaultTemplate))
	assert.Error(t, engine.ValidateTemplate("{{#each"))
}

func TestTemplateCacheReuse(t *testing.T) {
	engine := NewEngine()

	first, err := engine.getTemplate(DefaultTemplate)
	require.NoError(t, err)
	second, err := engine.getTemplate(DefaultTemplate)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

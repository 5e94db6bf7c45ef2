package router

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	r, err := New("ke.go.health.county1.facility1")
	require.NoError(t, err)
	assert.Equal(t, "ke.go.health.county1.facility1", r.RouterAddress())
	assert.Equal(t, DefaultRootAddress, r.RootAddress())
}

func TestNewEmptyAddress(t *testing.T) {
	_, err := New("")
	require.ErrorIs(t, err, ErrEmptyRouterAddress)
}

func TestNewInvalidAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{"not rooted", "us.gov.health.county1"},
		{"shorter than root", "ke.go"},
		{"literal prefix without dot boundary", "ke.go.healthcare"},
		{"empty token", "ke.go.health..facility1"},
		{"illegal character", "ke.go.health.county-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.address)
			var invalid *InvalidAddressError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.address, invalid.Address)
			assert.Equal(t, DefaultRootAddress, invalid.Root)
		})
	}
}

func TestNewCustomRoot(t *testing.T) {
	r, err := New("org.example.hub.site1", WithRootAddress("org.example.hub"))
	require.NoError(t, err)
	assert.Equal(t, "org.example.hub", r.RootAddress())

	_, err = New("ke.go.health.county1", WithRootAddress("org.example.hub"))
	var invalid *InvalidAddressError
	require.ErrorAs(t, err, &invalid)
}

func TestDispatchTo(t *testing.T) {
	tests := []struct {
		router      string
		destination string
		channel     string
	}{
		{"ke.go.health.county1.facility1", "ke.go.health.county1.facility1.emr", "ke_go_health_county1_facility1_emr"},
		{"ke.go.health.county1.facility1", "ke.go.health.county1.repository", "ke_go_health_county1"},
		{"ke.go.health.county1", "ke.go.health.county1.repository", "ke_go_health_county1_repository"},
		{"ke.go.health.county1", "ke.go.health.county1.facility2.emr", "ke_go_health_county1_facility2"},
		{"ke.go.health.county1", "ke.go.health.repository", "ke_go_health"},
		{"ke.go.health.county1", "ke.go.health.county2.facility4.pis", "ke_go_health"},
		{"ke.go.health", "ke.go.health.repository", "ke_go_health_repository"},
		{"ke.go.health", "ke.go.health.county2.facility4.pis", "ke_go_health_county2"},
	}
	for _, tt := range tests {
		t.Run(tt.router+"->"+tt.destination, func(t *testing.T) {
			r, err := New(tt.router, WithLogger(zap.NewNop()))
			require.NoError(t, err)

			channel, err := r.DispatchTo(tt.destination)
			require.NoError(t, err)
			assert.Equal(t, tt.channel, channel)
		})
	}
}

func TestDispatchToSelf(t *testing.T) {
	r, err := New("ke.go.health")
	require.NoError(t, err)

	_, err = r.DispatchTo("ke.go.health")
	var selfRoute *SelfRouteError
	require.ErrorAs(t, err, &selfRoute)
	assert.Equal(t, "ke.go.health", selfRoute.Address)
}

func TestGatewayAddress(t *testing.T) {
	r, err := New("ke.go.health.county1.facility1")
	require.NoError(t, err)

	gateway, err := r.gatewayAddress("ke.go.health.county2")
	require.NoError(t, err)
	assert.Equal(t, "ke.go.health.county1", gateway)
}

// The top-level router has no gateway: any escalation past it is a
// terminal routing failure for the message.
func TestGatewayAddressTopLevel(t *testing.T) {
	r, err := New("ke.go.health")
	require.NoError(t, err)

	_, err = r.gatewayAddress("ke.go.health.county1")
	var topLevel *TopLevelRouterError
	require.ErrorAs(t, err, &topLevel)
	assert.Equal(t, "ke.go.health", topLevel.Root)
	assert.Equal(t, "ke.go.health.county1", topLevel.Destination)
}

func TestDispatchToInvalidDestination(t *testing.T) {
	r, err := New("ke.go.health.county1")
	require.NoError(t, err)

	for _, destination := range []string{
		"",
		"ke.go",
		"us.gov.health.place",
		"ke.go.health.county1.fac ility",
		"ke.go.health.county1..emr",
	} {
		_, err := r.DispatchTo(destination)
		var invalid *InvalidAddressError
		require.ErrorAs(t, err, &invalid, "destination %q", destination)
	}
}

// The subtree membership test is a raw character-prefix comparison, not a
// dot-boundary-aware one. A destination that shares the router address as a
// literal string prefix is treated as inside the subtree even when it does
// not continue at a dot.
func TestDispatchToRawPrefixComparison(t *testing.T) {
	r, err := New("ke.go.health.cou")
	require.NoError(t, err)

	channel, err := r.DispatchTo("ke.go.health.county1.emr")
	require.NoError(t, err)
	assert.Equal(t, "ke_go_health_cou_ty1", channel)
}

func TestDispatchToCustomNamer(t *testing.T) {
	upper := NamerFunc(func(address string) string {
		return strings.ToUpper(ChannelName(address))
	})
	r, err := New("ke.go.health.county1", WithNamer(upper))
	require.NoError(t, err)

	channel, err := r.DispatchTo("ke.go.health.county1.facility1.emr")
	require.NoError(t, err)
	assert.Equal(t, "KE_GO_HEALTH_COUNTY1_FACILITY1", channel)
}

func TestValidateDestination(t *testing.T) {
	r, err := New("ke.go.health.county1")
	require.NoError(t, err)

	assert.NoError(t, r.ValidateDestination("ke.go.health.county2"))

	err = r.ValidateDestination("ke.go.health.county1")
	var selfRoute *SelfRouteError
	assert.ErrorAs(t, err, &selfRoute)

	err = r.ValidateDestination("ke.go.wealth.county1")
	var invalid *InvalidAddressError
	assert.ErrorAs(t, err, &invalid)
}

func TestErrorsCarryDiagnostics(t *testing.T) {
	err := error(&InvalidAddressError{Address: "a.b", Root: "ke.go.health"})
	assert.Contains(t, err.Error(), "a.b")
	assert.Contains(t, err.Error(), "ke.go.health")

	err = &SelfRouteError{Address: "ke.go.health"}
	assert.Contains(t, err.Error(), "ke.go.health")

	err = &TopLevelRouterError{Root: "ke.go.health", Destination: "ke.go.health2"}
	assert.Contains(t, err.Error(), "ke.go.health")
	assert.False(t, errors.Is(err, ErrEmptyRouterAddress))
}

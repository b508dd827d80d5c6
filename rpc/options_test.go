package rpc

import (
	"testing"

	"github.com/pion/webrtc/v3"
	"go.viam.com/test"
)

func TestDialOptionsDefaults(t *testing.T) {
	o := newDialOptions()
	test.That(t, o.insecure, test.ShouldBeFalse)
	test.That(t, o.allowInsecureDowngrade, test.ShouldBeFalse)
	test.That(t, o.disableMDNS, test.ShouldBeFalse)
	test.That(t, o.disableWebRTC, test.ShouldBeFalse)
	test.That(t, o.creds, test.ShouldBeNil)
}

func TestDialOptionsCompose(t *testing.T) {
	o := newDialOptions(
		WithInsecure(),
		WithAllowInsecureDowngrade(),
		WithDisableMDNS(),
		WithDisableWebRTC(),
		WithEntityCredentials("my-entity", Credentials{Type: "api-key", Payload: "secret"}),
		WithDisableTrickleICE(),
		WithWebRTCConfiguration(webrtc.Configuration{
			ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.example.com:19302"}}},
		}),
	)

	test.That(t, o.insecure, test.ShouldBeTrue)
	test.That(t, o.allowInsecureDowngrade, test.ShouldBeTrue)
	test.That(t, o.disableMDNS, test.ShouldBeTrue)
	test.That(t, o.disableWebRTC, test.ShouldBeTrue)
	test.That(t, o.disableTrickleICE, test.ShouldBeTrue)
	test.That(t, o.creds, test.ShouldNotBeNil)
	test.That(t, o.creds.Entity, test.ShouldEqual, "my-entity")
	test.That(t, o.creds.Credentials.Type, test.ShouldEqual, "api-key")
	test.That(t, len(o.webrtcConfig.ICEServers), test.ShouldEqual, 1)
}

func TestWithCredentialsDefaultsEntityEmpty(t *testing.T) {
	o := newDialOptions(WithCredentials(Credentials{Type: "api-key", Payload: "secret"}))
	test.That(t, o.creds, test.ShouldNotBeNil)
	test.That(t, o.creds.Entity, test.ShouldEqual, "")
}

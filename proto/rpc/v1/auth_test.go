package rpcv1

import (
	"testing"

	"go.viam.com/test"
)

func TestAuthenticateRequestRoundTrip(t *testing.T) {
	orig := &AuthenticateRequest{
		Entity: "myrobot.example.com",
		Credentials: &Credentials{
			Type:    "api-key",
			Payload: "secret-value",
		},
	}
	data, err := orig.Marshal()
	test.That(t, err, test.ShouldBeNil)

	got := &AuthenticateRequest{}
	test.That(t, got.Unmarshal(data), test.ShouldBeNil)
	test.That(t, got.Entity, test.ShouldEqual, orig.Entity)
	test.That(t, got.Credentials.Type, test.ShouldEqual, orig.Credentials.Type)
	test.That(t, got.Credentials.Payload, test.ShouldEqual, orig.Credentials.Payload)
}

func TestAuthenticateResponseRoundTrip(t *testing.T) {
	orig := &AuthenticateResponse{AccessToken: "abc.def.ghi"}
	data, err := orig.Marshal()
	test.That(t, err, test.ShouldBeNil)

	got := &AuthenticateResponse{}
	test.That(t, got.Unmarshal(data), test.ShouldBeNil)
	test.That(t, got.AccessToken, test.ShouldEqual, orig.AccessToken)
}

func TestNilCredentialsMarshalToEmpty(t *testing.T) {
	var c *Credentials
	data, err := c.Marshal()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data, test.ShouldBeNil)
}

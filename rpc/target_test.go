package rpc

import (
	"testing"

	"go.viam.com/test"
)

func TestParseTargetDefaultsToSecure(t *testing.T) {
	target, err := parseTarget("myrobot.local:8080")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, target.Scheme, test.ShouldEqual, SchemeSecure)
	test.That(t, target.Authority, test.ShouldEqual, "myrobot.local:8080")
	test.That(t, target.Path, test.ShouldEqual, "")
}

func TestParseTargetExplicitSchemes(t *testing.T) {
	secure, err := parseTarget("https://myrobot.example.com")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, secure.Scheme, test.ShouldEqual, SchemeSecure)

	plain, err := parseTarget("http://myrobot.example.com")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plain.Scheme, test.ShouldEqual, SchemePlain)
}

func TestParseTargetWithPath(t *testing.T) {
	target, err := parseTarget("https://myrobot.example.com/signaling")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, target.Authority, test.ShouldEqual, "myrobot.example.com")
	test.That(t, target.Path, test.ShouldEqual, "/signaling")
}

func TestParseTargetEmptyFails(t *testing.T) {
	_, err := parseTarget("")
	test.That(t, err, test.ShouldEqual, ErrNoURI)
}

func TestParseTargetEmptyAuthorityFails(t *testing.T) {
	_, err := parseTarget("https://")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTargetIsLocal(t *testing.T) {
	local, err := parseTarget("myrobot.local:8080")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, local.IsLocal(), test.ShouldBeTrue)

	localhost, err := parseTarget("localhost:8080")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, localhost.IsLocal(), test.ShouldBeTrue)

	remote, err := parseTarget("myrobot.example.com:8080")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, remote.IsLocal(), test.ShouldBeFalse)
}

func TestTargetString(t *testing.T) {
	secure, err := parseTarget("myrobot.example.com:8080")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, secure.String(), test.ShouldEqual, "https://myrobot.example.com:8080")

	plain, err := parseTarget("http://myrobot.example.com:8080")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plain.String(), test.ShouldEqual, "http://myrobot.example.com:8080")
}

func TestRPCHostForRewritesLocalhost(t *testing.T) {
	test.That(t, rpcHostFor("127.0.0.1:8080"), test.ShouldEqual, "localhost:8080")
	test.That(t, rpcHostFor("localhost:9000"), test.ShouldEqual, "localhost:8080")
	test.That(t, rpcHostFor("myrobot.example.com:8080"), test.ShouldEqual, "myrobot.example.com:8080")
}

func TestMDNSCandidatesDotToDash(t *testing.T) {
	candidates := mdnsCandidates("foo.bar.local")
	test.That(t, candidates, test.ShouldResemble, []string{"foo.bar", "foo-bar"})

	candidates = mdnsCandidates("foo.local")
	test.That(t, candidates, test.ShouldResemble, []string{"foo"})
}

// Package rpcv1 contains the wire messages for the authentication service
// (proto.rpc.v1.AuthService). The .proto schema this package implements is
// treated as an external collaborator (see spec.md §1); these are
// hand-maintained stand-ins for protoc-gen-go/protoc-gen-go-grpc output,
// wire-compatible via the Codec in proto/wire.
package rpcv1

import (
	"go.viam.com/rpc/proto/wire"
)

// Credentials carries a typed secret payload, e.g. an API key.
type Credentials struct {
	Type    string
	Payload string
}

func (c *Credentials) Marshal() ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	var b []byte
	b = wire.AppendString(b, 1, c.Type)
	b = wire.AppendString(b, 2, c.Payload)
	return b, nil
}

func (c *Credentials) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			c.Type = wire.String(f)
		case 2:
			c.Payload = wire.String(f)
		}
		return nil
	})
}

// AuthenticateRequest is the unary request for AuthService/Authenticate.
type AuthenticateRequest struct {
	Entity      string
	Credentials *Credentials
}

func (r *AuthenticateRequest) Marshal() ([]byte, error) {
	var b []byte
	b = wire.AppendString(b, 1, r.Entity)
	var err error
	if b, err = wire.AppendMessageField(b, 2, r.Credentials); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *AuthenticateRequest) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			r.Entity = wire.String(f)
		case 2:
			r.Credentials = &Credentials{}
			return r.Credentials.Unmarshal(f.Raw)
		}
		return nil
	})
}

// AuthenticateResponse carries the issued bearer token.
type AuthenticateResponse struct {
	AccessToken string
}

func (r *AuthenticateResponse) Marshal() ([]byte, error) {
	var b []byte
	b = wire.AppendString(b, 1, r.AccessToken)
	return b, nil
}

func (r *AuthenticateResponse) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			r.AccessToken = wire.String(f)
		}
		return nil
	})
}

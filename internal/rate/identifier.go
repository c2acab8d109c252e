package rate

import "strings"

// Source identifies which input contributed the principal segment of a
// rate-limit identifier.
type Source uint8

const (
	SourceNone Source = iota
	// SourceIdentity: the id of a verified client identity.
	SourceIdentity
	// SourceClientRef: a client id supplied in the request payload.
	SourceClientRef
	// SourceAddress: the caller's network address.
	SourceAddress
)

func (s Source) String() string {
	switch s {
	case SourceIdentity:
		return "identity"
	case SourceClientRef:
		return "client_ref"
	case SourceAddress:
		return "address"
	default:
		return "none"
	}
}

// Principal is the entity a quota is scoped to. Exactly one source
// contributes; sources are never combined.
type Principal struct {
	Source Source
	Value  string
}

// IdentifierInput carries the optional inputs the resolver chooses
// between. All fields may be empty except that at least one of
// IdentityID, ClientRef, or Address must be present.
type IdentifierInput struct {
	IdentityID string
	ClientRef  string
	Address    string
	Route      string
}

// ResolvePrincipal picks the principal by fixed precedence: verified
// identity, then explicit client reference, then address. A verified
// identity always wins outright; the address is ignored entirely in
// that case rather than combined, so address-changing clients keep one
// quota bucket.
func ResolvePrincipal(in IdentifierInput) (Principal, error) {
	switch {
	case strings.TrimSpace(in.IdentityID) != "":
		return Principal{Source: SourceIdentity, Value: strings.TrimSpace(in.IdentityID)}, nil
	case strings.TrimSpace(in.ClientRef) != "":
		return Principal{Source: SourceClientRef, Value: strings.TrimSpace(in.ClientRef)}, nil
	case strings.TrimSpace(in.Address) != "":
		return Principal{Source: SourceAddress, Value: strings.TrimSpace(in.Address)}, nil
	default:
		return Principal{}, ErrNoIdentifier
	}
}

// ResolveIdentifier derives the bucket key for the given inputs. Two
// calls with the same inputs always produce the same identifier. When a
// route is present it is appended as a suffix segment so the same
// principal has independent quotas per route.
func ResolveIdentifier(in IdentifierInput) (string, error) {
	principal, err := ResolvePrincipal(in)
	if err != nil {
		return "", err
	}
	return Identifier(principal.Value, in.Route), nil
}

// Identifier joins a principal value and an optional route into the
// canonical bucket-key form "principal[:route]".
func Identifier(principal, route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return principal
	}
	return principal + ":" + route
}

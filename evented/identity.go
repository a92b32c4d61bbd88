package evented

import "github.com/google/uuid"

// ComputeRoot derives a deterministic UUID v5 from a domain and business key.
//
// The UUID is derived from: hash("storefront" + domain + business_key)
// using the OID namespace.
func ComputeRoot(domain, businessKey string) uuid.UUID {
	seed := "storefront" + domain + businessKey
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

// CartRoot computes a deterministic root UUID for a session's cart aggregate.
func CartRoot(sessionID string) uuid.UUID {
	return ComputeRoot("cart", sessionID)
}

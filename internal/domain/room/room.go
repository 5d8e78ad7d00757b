// Package room defines the canonical room identifiers used to address
// realtime events. A room is a named group of websocket connections; events
// are always published to rooms, never to individual connections, so the
// join side (session establishment) and the emit side (mutation services)
// only have to agree on these strings.
package room

// Separator is the reserved delimiter inside room identifiers.
const Separator = ":"

// Tenant returns the tenant-wide broadcast room.
// Every connection for a tenant joins this room.
func Tenant(tenantID string) string {
	return "tenant" + Separator + tenantID
}

// Kitchen returns the kitchen display room for a tenant.
func Kitchen(tenantID string) string {
	return Tenant(tenantID) + Separator + "kitchen"
}

// Dashboard returns the operator dashboard room for a tenant.
func Dashboard(tenantID string) string {
	return Tenant(tenantID) + Separator + "dashboard"
}

// Customer returns the private room for a single customer of a tenant.
func Customer(tenantID, customerID string) string {
	return Tenant(tenantID) + Separator + "customer" + Separator + customerID
}

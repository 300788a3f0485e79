// Package identity works out which tenant an inbound request belongs to.
//
// A bearer access token is authoritative: when one is present its tenant
// claim wins and a bad token fails the request, even if the host names a
// valid tenant. Without a token the first label of the Host header is looked
// up as a tenant subdomain. A request carrying neither resolves to no
// identity, which is fine for public routes and an error for tenant routes;
// that decision belongs to the caller.
package identity

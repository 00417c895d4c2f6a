// Package targets expands discovery requests into concrete target addresses.
package targets

import (
	"fmt"
	"net/netip"
	"sort"
)

// DefaultLimit caps how many addresses a single request may expand to.
const DefaultLimit = 65536

// Expand turns explicit addresses and an optional CIDR block into the union
// of their target addresses: deduplicated and sorted lexicographically.
// Any invalid input fails the whole expansion. limit <= 0 uses DefaultLimit.
func Expand(ips []string, cidr string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	set := make(map[string]struct{})
	for _, raw := range ips {
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", raw, err)
		}
		set[addr.String()] = struct{}{}
	}

	if cidr != "" {
		hosts, err := hostAddrs(cidr, limit)
		if err != nil {
			return nil, err
		}
		for _, h := range hosts {
			set[h.String()] = struct{}{}
		}
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no targets provided (ips or cidr)")
	}
	if len(set) > limit {
		return nil, fmt.Errorf("request expands to %d targets, limit is %d", len(set), limit)
	}

	out := make([]string, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out, nil
}

// hostAddrs enumerates the usable host addresses of a CIDR block. Host bits
// in the input are tolerated and masked off. IPv4 blocks of /30 or wider
// exclude the network and broadcast addresses; /31 yields both addresses
// (RFC 3021 point-to-point) and /32 the single host. IPv6 blocks exclude
// only the subnet-router anycast (network) address, with /127 and /128
// treated analogously.
func hostAddrs(cidr string, limit int) ([]netip.Addr, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	prefix = prefix.Masked()

	hostBits := prefix.Addr().BitLen() - prefix.Bits()
	if hostBits > 30 || (1<<hostBits) > limit+2 {
		return nil, fmt.Errorf("CIDR %q expands beyond the %d target limit", cidr, limit)
	}

	// IPv6 has no broadcast address, so only IPv4 trims the top of the block.
	skipBroadcast := prefix.Addr().Is4() && hostBits >= 2

	var hosts []netip.Addr
	first := prefix.Addr()
	for addr := first; prefix.Contains(addr); addr = addr.Next() {
		if addr == first && hostBits >= 2 {
			continue // network address
		}
		hosts = append(hosts, addr)
	}

	if skipBroadcast && len(hosts) > 0 {
		hosts = hosts[:len(hosts)-1] // broadcast address
	}
	return hosts, nil
}

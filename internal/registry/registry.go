package registry

// AddressRegistry is a per-run, append-only set of auxiliary addresses
// (escrow and staking accounts) discovered while scanning a wallet's
// history. Later transactions in the same run consult it to attribute
// accounts that are not the primary wallet but are economically owned by it.
//
// The registry is an explicit object threaded through the pipeline rather
// than process-wide state, so concurrent runs stay isolated.
type AddressRegistry struct {
	addresses map[string]struct{}
	order     []string
}

func New() *AddressRegistry {
	return &AddressRegistry{addresses: make(map[string]struct{})}
}

// Add registers an address. Re-adding an existing address is a no-op, so
// processing the same transaction group twice is harmless.
func (r *AddressRegistry) Add(address string) {
	if address == "" {
		return
	}
	if _, ok := r.addresses[address]; ok {
		return
	}
	r.addresses[address] = struct{}{}
	r.order = append(r.order, address)
}

// Contains reports whether an address has been registered
func (r *AddressRegistry) Contains(address string) bool {
	_, ok := r.addresses[address]
	return ok
}

// Addresses returns the registered addresses in discovery order
func (r *AddressRegistry) Addresses() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered addresses
func (r *AddressRegistry) Len() int {
	return len(r.order)
}

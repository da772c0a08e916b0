package workerpool

import "runtime"

// Sizes is the split of logical processors between the HTTP layer and the
// two worker pools.
type Sizes struct {
	Server int
	DB     int
	Auth   int
}

// SizeFor splits cpu logical processors. Half go to the HTTP layer, 70% of
// the rest to database workers and the remainder to auth workers. Each share
// is at least one.
func SizeFor(cpu int) Sizes {
	server := max(cpu/2, 1)
	remaining := cpu - server
	db := max(remaining*7/10, 1)
	auth := max(remaining-db, 1)
	return Sizes{Server: server, DB: db, Auth: auth}
}

// DefaultSizes sizes the pools for the processors usable by this process.
func DefaultSizes() Sizes {
	return SizeFor(runtime.GOMAXPROCS(0))
}

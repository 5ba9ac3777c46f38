package records

import (
	"context"

	"payportal/internal/core"
)

// Source is the outbound port for loading the payments table. A fetch is
// wholesale: the returned Table replaces any previous one, there are no
// row-level updates. Implementations must honor ctx cancellation; callers
// bound every fetch with a timeout and treat failure as fail-fast.
type Source interface {
	Fetch(ctx context.Context) (core.Table, error)
}

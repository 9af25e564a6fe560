package source

import (
	"context"

	"github.com/msys2/msys2-web/pkg/types"
)

// A Refresher yields recipe sections, typically a *Checkout.
type Refresher interface {
	Refresh(ctx context.Context) ([]*types.SrcInfoPackage, error)
}

// Multi concatenates several checkouts into one source.  Any member
// failing fails the whole refresh.
type Multi []Refresher

func (m Multi) Refresh(ctx context.Context) ([]*types.SrcInfoPackage, error) {
	var out []*types.SrcInfoPackage
	for _, s := range m {
		sections, err := s.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, sections...)
	}
	return out, nil
}

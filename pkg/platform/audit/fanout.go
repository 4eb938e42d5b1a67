package audit

import (
	"context"
	"errors"
)

// Fanout appends every event to each appender in order and joins their errors.
// A failing appender does not stop later ones.
type Fanout []Appender

func (f Fanout) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, a := range f {
		if err := a.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package present

import (
	"context"
	"fmt"
	"io"

	"github.com/alnah/go-tex2pdf/internal/tree"
)

var _ Presenter = JSON{}

// JSON writes the node tree with kinds, spans and math results.
type JSON struct{}

// Present implements Presenter.
func (JSON) Present(ctx context.Context, w io.Writer, nodes []tree.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := tree.MarshalJSON(nodes)
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing json: %w", err)
	}
	return nil
}

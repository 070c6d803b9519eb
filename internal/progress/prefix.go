package progress

import "fmt"

type prefixed struct {
	Reporter
	prefix string
}

// WithPrefix returns a Reporter that prepends prefix to every phase name.
func WithPrefix(r Reporter, prefix string) Reporter {
	if r == nil {
		r = Nop{}
	}
	return &prefixed{Reporter: r, prefix: prefix}
}

// Item is the prefix used for the i-th of n items in a batch.
func Item(i, n int, name string) string {
	return fmt.Sprintf("[%d/%d] %s", i, n, name)
}

func (p *prefixed) Phase(index int, name string, substeps int, bytes bool) {
	p.Reporter.Phase(index, p.prefix+" "+name, substeps, bytes)
}

// Close is a no-op: the wrapped reporter outlives the item.
func (p *prefixed) Close() {}

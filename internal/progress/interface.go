// Package progress reports pipeline phases and their sub-steps.
package progress

// Reporter receives progress from a running pipeline. Implementations must be
// safe for concurrent SubphaseStep calls.
type Reporter interface {
	// Phase starts phase index (1-based) with the given number of sub-steps.
	// bytes marks sub-steps that count bytes rather than items.
	Phase(index int, name string, substeps int, bytes bool)
	SubphaseStep()
	SubphaseStepTo(v int)
	SetSubsteps(n int)
	Close()
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Phase(int, string, int, bool) {}
func (Nop) SubphaseStep()                {}
func (Nop) SubphaseStepTo(int)           {}
func (Nop) SetSubsteps(int)              {}
func (Nop) Close()                       {}

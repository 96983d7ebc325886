//go:build !interopdebug

package interop

// debugAssertions makes internal-consistency faults panic. Enable with the "interopdebug" build tag.
const debugAssertions = false

//go:build interopdebug

package interop

const debugAssertions = true

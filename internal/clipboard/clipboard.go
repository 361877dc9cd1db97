// Package clipboard is the live input source and output sink for executions.
package clipboard

import "github.com/atotto/clipboard"

// Board reads and writes the shared text clipboard. Implementations must be
// safe for concurrent use; writes from concurrent executions are last-wins.
type Board interface {
	Read() (string, error)
	Write(text string) error
}

// System is the OS clipboard.
type System struct{}

func (System) Read() (string, error) { return clipboard.ReadAll() }

func (System) Write(text string) error { return clipboard.WriteAll(text) }

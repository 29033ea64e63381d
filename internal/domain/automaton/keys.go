package automaton

import (
	"fmt"
	"strings"
)

// MaxNameLen bounds an instance name in bytes.
const MaxNameLen = 255

// keyspace derives collection names from an instance name.
type keyspace string

func (k keyspace) keywords() string { return string(k) + ":keyword" }
func (k keyspace) prefix() string   { return string(k) + ":prefix" }
func (k keyspace) suffix() string   { return string(k) + ":suffix" }

// output names the output set of node.
func (k keyspace) output(node string) string { return string(k) + ":output:" + node }

// refs names the set of nodes whose output holds keyword.
func (k keyspace) refs(keyword string) string { return string(k) + ":node:" + keyword }

// ValidateName reports whether name can namespace an instance. The name must
// not contain ':', the separator of collection names; otherwise instance
// "a:node" would own the keyword set "a:node:keyword", which is instance
// "a"'s back-reference set for the keyword "keyword".
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty instance name", ErrInvalidInput)
	case strings.Contains(name, ":"):
		return fmt.Errorf("%w: instance name %q contains ':'", ErrInvalidInput, name)
	case len(name) > MaxNameLen:
		return fmt.Errorf("%w: instance name longer than %d bytes", ErrInvalidInput, MaxNameLen)
	}
	return nil
}

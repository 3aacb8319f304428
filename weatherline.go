// Package weatherline contains core domain types shared by the environment
// bootstrap stack: the commands it runs and the toolchains that produce them.
package weatherline

import "strings"

// Command describes a single external tool invocation. Instances are built
// by a [Toolchain] and executed by a runner; they carry everything the
// child process needs so execution stays a dumb hand-off.
type Command struct {
	Name string   // binary name, resolved via PATH when not absolute
	Args []string // arguments, excluding the binary name itself
	Env  []string // full child environment; nil inherits the parent's
	Dir  string   // working directory; empty means the current one
}

// String renders the invocation the way a shell trace line would show it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

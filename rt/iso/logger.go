package iso

import "github.com/bsegovia/miniq-rt/rt/rtlog"

// logger receives the BudgetExceeded warning from creaseSharpEdges (spec
// §7). SetLogger lets the driver route it through its own rtlog.Logger;
// by default it is silent until SetLogger installs a real one.
var logger rtlog.Logger = rtlog.NewNop()

// SetLogger installs the logger this package reports budget overruns to.
func SetLogger(l rtlog.Logger) {
	if l == nil {
		l = rtlog.NewNop()
	}
	logger = l
}

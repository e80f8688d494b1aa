package smh

import (
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("smh")

// Library callers see warnings only, unless they install their own backend
// or raise the "smh" module level.
func init() {
	logging.SetLevel(logging.WARNING, "smh")
}

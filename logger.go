package wsrpc

import (
	"io/ioutil"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
)

var logger log.Logger

// SetLogger overrides the diagnostic logger for this package. Decode
// failures and unroutable messages are reported through it.
func SetLogger(l log.Logger) {
	logger = l
}

func init() {
	// Set a default null logger
	SetLogger(golog.New(ioutil.Discard, log.Debug))
}

package internal

import (
	"log"
	"os"
)

// InitLogging sends the standard logger to stdout with microsecond
// timestamps, prefixed with the component name.
func InitLogging(component string) {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lmsgprefix)
	if component != "" {
		log.SetPrefix(component + " ")
	}
}

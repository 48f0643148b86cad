/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	FeedServer = "feed_server"
)

var (
	IsDevelopment bool
	ServiceName   string
	DataDir       string
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", FeedServer, "name used to tag log entries emitted by this process")
	flag.StringVar(&DataDir, "data_dir", "data", "directory holding the device-local post list and migration flag")
}

// Parse must be called once from main, after all packages registered their
// flags. Calling it from init breaks test binaries.
func Parse() {
	flag.Parse()
}

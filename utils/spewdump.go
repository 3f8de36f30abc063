package utils

import (
	"log"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.MaxDepth = 4
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

func LogDump(prefix string, a ...interface{}) {
	log.Printf("%s\n%s", prefix, SDump(a...))
}

package utils

import (
	"math/rand"
	"sync"

	"github.com/Pallinder/go-randomdata"
)

var randomdataLock sync.Mutex

// RandomNameGenerator produces unique, reproducible names for unnamed
// meshes. The sequence restarts for every new generator.
type RandomNameGenerator map[string]struct{}

func (rng *RandomNameGenerator) RandomName() string {
	randomdataLock.Lock()
	defer randomdataLock.Unlock()

	if *rng == nil {
		*rng = make(map[string]struct{})
	}
	// randomdata keeps global generator, so reseed it from generator state
	randomdata.CustomRand(rand.New(rand.NewSource(int64(len(*rng)))))
	for {
		name := randomdata.SillyName()
		if _, exists := (*rng)[name]; !exists {
			(*rng)[name] = struct{}{}
			return name
		}
	}
}

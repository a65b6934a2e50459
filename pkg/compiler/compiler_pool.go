package compiler

import "sync"

// Generator pool for reusing generator buffers and tables across runs
var generatorPool = sync.Pool{
	New: func() interface{} {
		return New(Options{})
	},
}

// GetGenerator retrieves a generator from the pool and applies opts
func GetGenerator(opts Options) *Generator {
	g := generatorPool.Get().(*Generator)
	g.opts = opts.withDefaults()
	return g
}

// PutGenerator returns a generator to the pool after use
func PutGenerator(g *Generator) {
	g.Reset()
	generatorPool.Put(g)
}

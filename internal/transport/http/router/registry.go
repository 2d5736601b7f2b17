package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// Module mounts one group of routes.
type Module interface{ Mount(*gin.RouterGroup) }

// Modules implementing prioritizer mount in ascending order; others default to 100.
type prioritizer interface{ Priority() int }

type Registry struct {
	mods []Module
}

func (r *Registry) Register(mods ...Module) { r.mods = append(r.mods, mods...) }

func (r *Registry) MountAll(g *gin.RouterGroup) {
	mods := append([]Module(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}

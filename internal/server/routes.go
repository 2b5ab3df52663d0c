package server

import (
	"math"
	"net/http"
	"time"

	"github.com/danmuck/collectdin/internal/protocol/schema"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TypeInfo is the JSON view of one registered data set. Unbounded limits
// are omitted.
type TypeInfo struct {
	Name    string       `json:"name"`
	Sources []SourceInfo `json:"sources"`
}

type SourceInfo struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
}

func (a *Admin) registerRoutes() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(a.Started).String(),
			"node":    a.ID,
			"version": Version,
		})
	})

	a.router.GET("/ready", func(c *gin.Context) {
		ready := a.ready()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":   ready,
			"types":   a.typeCount(),
			"node":    a.ID,
			"version": Version,
		})
	})

	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.router.GET("/types", func(c *gin.Context) {
		var names []string
		if a.types != nil {
			names = a.types.Names()
		}
		list := make([]TypeInfo, 0, len(names))
		for _, name := range names {
			if ds, ok := a.types.Lookup(name); ok {
				list = append(list, typeInfo(ds))
			}
		}
		c.JSON(http.StatusOK, gin.H{"types": list})
	})

	a.router.GET("/types/:name", func(c *gin.Context) {
		name := c.Param("name")
		if a.types == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "type not found", "type": name})
			return
		}
		ds, ok := a.types.Lookup(name)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "type not found", "type": name})
			return
		}
		c.JSON(http.StatusOK, typeInfo(ds))
	})
}

func (a *Admin) typeCount() int {
	if a.types == nil {
		return 0
	}
	return len(a.types.Names())
}

func typeInfo(ds schema.DataSet) TypeInfo {
	info := TypeInfo{Name: ds.Name, Sources: make([]SourceInfo, 0, len(ds.Sources))}
	for _, src := range ds.Sources {
		info.Sources = append(info.Sources, SourceInfo{
			Name: src.Name,
			Type: src.Type.String(),
			Min:  limit(src.Min),
			Max:  limit(src.Max),
		})
	}
	return info
}

func limit(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

package node

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Node is a process surface that serves HTTP until its context ends.
type Node interface {
	NodeID() string
	Kind() string
	HTTPRouter() *gin.Engine
	Serve(ctx context.Context) error
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Run(router *gin.Engine, port string, log *zap.Logger) {
	addr := ":8080"
	if port != "" {
		addr = ":" + port
	}
	log.Info("http server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
}

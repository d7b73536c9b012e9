package server

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

const indexFile = "/index.html"

type spaFS struct {
	base http.FileSystem
}

// NewSPAFileSystem 包装前端构建目录：不存在且没有扩展名的路径回落到 index.html，
// 交给前端路由处理；带扩展名的缺失资源仍然 404。
func NewSPAFileSystem(dir string) http.FileSystem {
	return &spaFS{base: gin.Dir(dir, false)}
}

func (s *spaFS) Open(name string) (http.File, error) {
	f, err := s.base.Open(name)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) && path.Ext(name) == "" {
		return s.base.Open(indexFile)
	}
	return nil, err
}

// frontendHandler 只服务非 /api 路径，API 的未知路径交给 apiNotFound。
func frontendHandler(files http.FileSystem) gin.HandlerFunc {
	server := http.FileServer(files)
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			apiNotFound(c)
			return
		}
		server.ServeHTTP(c.Writer, c.Request)
	}
}

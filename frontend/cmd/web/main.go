// Command web 是站点的 go-app 前端。浏览器里以 wasm 运行；在服务端运行时把静态站点生成到 -out 目录，
// 后端通过 FRONTEND_DIST 托管该目录。
package main

import (
	"flag"
	"log"

	"weekend-at-joes/frontend/api"
	"weekend-at-joes/frontend/components"
	"weekend-at-joes/pkg/wire"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

func main() {
	client := api.NewHTTPClient("", nil)

	app.Route("/", func() app.Composer {
		return &components.ArticleList{Client: client, PageSize: components.DefaultArticlePageSize}
	})
	app.Route("/login", func() app.Composer {
		return &components.Auth{
			Client: client,
			OnAuthenticated: func(resp wire.LoginResponse) {
				client.SetToken(resp.Tokens.AccessToken)
			},
		}
	})
	app.RouteWithRegexp(`^/buckets/[^/]+$`, func() app.Composer {
		return &components.BucketParticipants{Client: client}
	})
	app.RunWhenOnBrowser()

	out := flag.String("out", "dist", "静态站点输出目录")
	flag.Parse()

	err := app.GenerateStaticWebsite(*out, &app.Handler{
		Name:        "Weekend at Joe's",
		ShortName:   "Joe's",
		Title:       "Weekend at Joe's",
		Description: "Forums, articles and chat.",
		Styles:      []string{"/web/app.css"},
	})
	if err != nil {
		log.Fatalf("generate static website: %v", err)
	}
	log.Printf("static website written to %s", *out)
}

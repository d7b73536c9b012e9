package components

import (
	"context"

	"weekend-at-joes/frontend/api"
	"weekend-at-joes/frontend/loadable"
	"weekend-at-joes/frontend/loop"
	"weekend-at-joes/pkg/wire"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// DefaultArticlePageSize 文章列表每页条数。
const DefaultArticlePageSize = 10

type ArticlePage = wire.Page[wire.ArticlePreviewResponse]

type ArticleListModel struct {
	Index    int
	Size     int
	Articles loadable.Loadable[ArticlePage]
}

func NewArticleListModel(size int) ArticleListModel {
	if size <= 0 {
		size = DefaultArticlePageSize
	}
	return ArticleListModel{Size: size}
}

type ArticleListMsg interface{ articleListMsg() }

// FetchArticles 请求第 Index 页（从 0 开始）。
type FetchArticles struct{ Index int }

type ArticlesLoaded struct {
	Page ArticlePage
	Err  error
}

func (FetchArticles) articleListMsg()  {}
func (ArticlesLoaded) articleListMsg() {}

// ArticleListUpdate 翻页时直接发起新请求，前一个请求不取消。
func ArticleListUpdate(client api.Client) loop.Update[ArticleListModel, ArticleListMsg] {
	return func(m ArticleListModel, msg ArticleListMsg) (ArticleListModel, []loop.Effect[ArticleListMsg]) {
		switch msg := msg.(type) {
		case FetchArticles:
			index := max(msg.Index, 0)
			size := m.Size
			m.Index = index
			m.Articles = loadable.Loading[ArticlePage](loadable.NewHandle())
			return m, []loop.Effect[ArticleListMsg]{func(ctx context.Context) *ArticleListMsg {
				page, err := client.PublishedArticles(ctx, index, size)
				return loop.Emit[ArticleListMsg](ArticlesLoaded{Page: page, Err: err})
			}}
		case ArticlesLoaded:
			m.Articles = loadable.FromResult(msg.Page, msg.Err)
		}
		return m, nil
	}
}

// ArticleList 分页展示已发布文章。
type ArticleList struct {
	app.Compo

	Client   api.Client
	PageSize int

	model  ArticleListModel
	runner *runner[ArticleListModel, ArticleListMsg]
}

func (c *ArticleList) OnMount(ctx app.Context) {
	c.model = NewArticleListModel(c.PageSize)
	c.runner = startLoop(ctx, c.model, ArticleListUpdate(c.Client), func(m ArticleListModel) { c.model = m })
	c.runner.send(FetchArticles{Index: 0})
}

func (c *ArticleList) OnDismount() {
	c.runner.stop()
}

func (c *ArticleList) Render() app.UI {
	return ArticleListView(c.model, func(index int) app.EventHandler {
		return func(app.Context, app.Event) { c.runner.send(FetchArticles{Index: index}) }
	})
}

// ArticleListView 渲染列表与翻页按钮，goTo 生成跳转到指定页的事件处理。
func ArticleListView(m ArticleListModel, goTo func(index int) app.EventHandler) app.UI {
	page, loaded := m.Articles.Value()
	prev := app.Button().Class("pager-prev").Text("Previous").Disabled(!loaded || !page.HasPrev())
	next := app.Button().Class("pager-next").Text("Next").Disabled(!loaded || !page.HasNext())
	if goTo != nil {
		prev = prev.OnClick(goTo(m.Index - 1))
		next = next.OnClick(goTo(m.Index + 1))
	}

	return app.Section().Class("article-list").Body(
		m.Articles.DefaultView(renderArticlePage, nil),
		app.Nav().Class("pager").Body(prev, next),
	)
}

func renderArticlePage(page ArticlePage) app.UI {
	if len(page.Items) == 0 {
		return app.P().Class("empty").Text("No articles yet.")
	}
	items := make([]app.UI, 0, len(page.Items))
	for _, a := range page.Items {
		byline := a.Author.DisplayName
		if a.PublishDate != nil {
			byline += " · " + a.PublishDate.Format("2006-01-02")
		}
		items = append(items, app.Article().Class("article-preview").Body(
			app.H2().Body(app.A().Href("/article/"+a.UUID.String()).Text(a.Title)),
			app.P().Class("byline").Text(byline),
			app.P().Text(a.BodyPreview),
		))
	}
	return app.Div().Body(items...)
}

package loadable

import "github.com/maxence-charriere/go-app/v10/pkg/app"

// SpinnerSize 默认视图加载图标的尺寸。
const SpinnerSize = "100px"

// ErrorView 渲染失败状态，参数是已经回落过默认文本的消息。
type ErrorView func(msg string) app.UI

// DefaultView 渲染完整尺寸的视图：加载中显示 100px 的旋转图标。
// onErr 为 nil 时使用默认错误视图。
func (l Loadable[T]) DefaultView(render func(T) app.UI, onErr ErrorView) app.UI {
	switch l.state {
	case StateLoading:
		return app.I().
			Class("loadable-spinner", "fa", "fa-spinner", "fa-spin").
			Style("font-size", SpinnerSize).
			Style("width", SpinnerSize).
			Style("height", SpinnerSize)
	case StateLoaded:
		return render(l.value)
	case StateFailed:
		return errorView(l.ErrorText(), onErr)
	default:
		return emptyView()
	}
}

// SmallView 用于行内位置：加载中只占一个空文本。
func (l Loadable[T]) SmallView(render func(T) app.UI, onErr ErrorView) app.UI {
	switch l.state {
	case StateLoading:
		return app.Text("")
	case StateLoaded:
		return render(l.value)
	case StateFailed:
		return errorView(l.ErrorText(), onErr)
	default:
		return emptyView()
	}
}

func (u Uploadable[T]) DefaultView(render func(T) app.UI, onErr ErrorView) app.UI {
	return u.inner.DefaultView(render, onErr)
}

func (u Uploadable[T]) SmallView(render func(T) app.UI, onErr ErrorView) app.UI {
	return u.inner.SmallView(render, onErr)
}

func emptyView() app.UI {
	return app.Span().Class("loadable-empty")
}

func errorView(msg string, onErr ErrorView) app.UI {
	if onErr != nil {
		return onErr(msg)
	}
	return app.Div().Class("loadable-error").Text(msg)
}

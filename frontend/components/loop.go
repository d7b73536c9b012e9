// Package components 是站点的 go-app 组件。每个组件的状态迁移写成纯函数 Update，
// 由 loop.Loop 驱动；组件本身只负责渲染与把 DOM 事件转成消息。
package components

import (
	"context"

	"weekend-at-joes/frontend/loop"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// runner 把 loop 挂到组件生命周期上：状态变化经 Dispatch 回到 UI goroutine 并触发重绘。
type runner[S, M any] struct {
	loop   *loop.Loop[S, M]
	ctx    context.Context
	cancel context.CancelFunc
}

func startLoop[S, M any](ctx app.Context, initial S, update loop.Update[S, M], apply func(S)) *runner[S, M] {
	runCtx, cancel := context.WithCancel(context.Background())
	l := loop.New(initial, update, loop.WithOnChange[S, M](func(s S) {
		ctx.Dispatch(func(app.Context) { apply(s) })
	}))
	ctx.Async(func() { l.Run(runCtx) })
	return &runner[S, M]{loop: l, ctx: runCtx, cancel: cancel}
}

func (r *runner[S, M]) send(msg M) {
	if r == nil {
		return
	}
	r.loop.Send(r.ctx, msg)
}

func (r *runner[S, M]) stop() {
	if r != nil {
		r.cancel()
	}
}

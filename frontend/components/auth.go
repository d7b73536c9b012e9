package components

import (
	"context"

	"weekend-at-joes/frontend/api"
	"weekend-at-joes/frontend/loadable"
	"weekend-at-joes/frontend/loop"
	"weekend-at-joes/pkg/wire"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

type AuthMode int

const (
	AuthModeLogin AuthMode = iota
	AuthModeCreate
)

type AuthModel struct {
	Mode   AuthMode
	Submit loadable.Uploadable[wire.LoginResponse]
}

type AuthMsg interface{ authMsg() }

type SwitchAuthMode struct{ Mode AuthMode }

type SubmitLogin struct{ Req wire.LoginRequest }

type SubmitRegister struct{ Req wire.NewUserRequest }

type AuthFinished struct {
	Resp wire.LoginResponse
	Err  error
}

func (SwitchAuthMode) authMsg() {}
func (SubmitLogin) authMsg()    {}
func (SubmitRegister) authMsg() {}
func (AuthFinished) authMsg()   {}

// AuthUpdate 登录与注册共用一个提交槽；成功后通过副作用调用 onAuth。
func AuthUpdate(client api.Client, onAuth func(wire.LoginResponse)) loop.Update[AuthModel, AuthMsg] {
	return func(m AuthModel, msg AuthMsg) (AuthModel, []loop.Effect[AuthMsg]) {
		switch msg := msg.(type) {
		case SwitchAuthMode:
			if m.Submit.IsLoading() || m.Mode == msg.Mode {
				return m, nil
			}
			m.Mode = msg.Mode
			m.Submit = loadable.Idle[wire.LoginResponse]()

		case SubmitLogin:
			m.Submit = loadable.Uploading[wire.LoginResponse](loadable.NewHandle())
			req := msg.Req
			return m, []loop.Effect[AuthMsg]{func(ctx context.Context) *AuthMsg {
				resp, err := client.Login(ctx, req)
				return loop.Emit[AuthMsg](AuthFinished{Resp: resp, Err: err})
			}}

		case SubmitRegister:
			m.Submit = loadable.Uploading[wire.LoginResponse](loadable.NewHandle())
			req := msg.Req
			return m, []loop.Effect[AuthMsg]{func(ctx context.Context) *AuthMsg {
				resp, err := client.Register(ctx, req)
				return loop.Emit[AuthMsg](AuthFinished{Resp: resp, Err: err})
			}}

		case AuthFinished:
			m.Submit = loadable.UploadResult(msg.Resp, msg.Err)
			if msg.Err == nil && onAuth != nil {
				resp := msg.Resp
				return m, []loop.Effect[AuthMsg]{func(context.Context) *AuthMsg {
					onAuth(resp)
					return nil
				}}
			}
		}
		return m, nil
	}
}

// Auth 在 Login 与 Create 两个子视图之间切换。
type Auth struct {
	app.Compo

	Client api.Client
	// OnAuthenticated 登录或注册成功后调用。
	OnAuthenticated func(wire.LoginResponse)

	model  AuthModel
	runner *runner[AuthModel, AuthMsg]
}

func (c *Auth) OnMount(ctx app.Context) {
	c.runner = startLoop(ctx, c.model, AuthUpdate(c.Client, c.OnAuthenticated), func(m AuthModel) { c.model = m })
}

func (c *Auth) OnDismount() {
	c.runner.stop()
}

func (c *Auth) Render() app.UI {
	var form app.UI
	if c.model.Mode == AuthModeCreate {
		form = &Create{OnSubmit: func(req wire.NewUserRequest) { c.runner.send(SubmitRegister{Req: req}) }}
	} else {
		form = &Login{OnSubmit: func(req wire.LoginRequest) { c.runner.send(SubmitLogin{Req: req}) }}
	}

	return app.Section().Class("auth").Body(
		app.Div().Class("auth-tabs").Body(
			c.tab("Log in", AuthModeLogin),
			c.tab("Create account", AuthModeCreate),
		),
		form,
		c.model.Submit.SmallView(func(resp wire.LoginResponse) app.UI {
			return app.P().Class("auth-ok").Text("Signed in as " + resp.User.DisplayName)
		}, nil),
	)
}

func (c *Auth) tab(label string, mode AuthMode) app.UI {
	class := "auth-tab"
	if c.model.Mode == mode {
		class += " active"
	}
	return app.Button().Class(class).Text(label).OnClick(func(app.Context, app.Event) {
		c.runner.send(SwitchAuthMode{Mode: mode})
	})
}

// Login 登录表单。
type Login struct {
	app.Compo

	OnSubmit func(wire.LoginRequest)

	userName string
	password string
}

func (c *Login) Render() app.UI {
	return app.Form().Class("login").OnSubmit(c.submit).Body(
		textInput("text", "User name", c.userName, func(v string) { c.userName = v }),
		textInput("password", "Password", c.password, func(v string) { c.password = v }),
		app.Button().Type("submit").Text("Log in"),
	)
}

func (c *Login) submit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if c.OnSubmit != nil {
		c.OnSubmit(wire.LoginRequest{UserName: c.userName, Password: c.password})
	}
}

// Create 注册表单。
type Create struct {
	app.Compo

	OnSubmit func(wire.NewUserRequest)

	userName    string
	displayName string
	password    string
}

func (c *Create) Render() app.UI {
	return app.Form().Class("create-account").OnSubmit(c.submit).Body(
		textInput("text", "User name", c.userName, func(v string) { c.userName = v }),
		textInput("text", "Display name", c.displayName, func(v string) { c.displayName = v }),
		textInput("password", "Password", c.password, func(v string) { c.password = v }),
		app.Button().Type("submit").Text("Create account"),
	)
}

func (c *Create) submit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if c.OnSubmit != nil {
		c.OnSubmit(wire.NewUserRequest{
			UserName:          c.userName,
			DisplayName:       c.displayName,
			PlaintextPassword: c.password,
		})
	}
}

func textInput(kind, placeholder, value string, set func(string)) app.UI {
	return app.Input().
		Type(kind).
		Placeholder(placeholder).
		Value(value).
		OnInput(func(ctx app.Context, e app.Event) {
			set(ctx.JSSrc().Get("value").String())
		})
}

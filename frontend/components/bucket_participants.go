package components

import (
	"context"
	"strings"

	"weekend-at-joes/frontend/api"
	"weekend-at-joes/frontend/loadable"
	"weekend-at-joes/frontend/loop"
	"weekend-at-joes/pkg/ident"
	"weekend-at-joes/pkg/wire"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

type BucketParticipantsModel struct {
	Bucket     ident.BucketUUID
	Users      loadable.Loadable[[]wire.UserResponse]
	IsOwner    loadable.Loadable[bool]
	RemoveUser loadable.Uploadable[struct{}]
}

type BucketMsg interface{ bucketMsg() }

// LoadBucket 同时拉取参与者列表与当前用户是否为桶主。
type LoadBucket struct{ Bucket ident.BucketUUID }

type ParticipantsLoaded struct {
	Users []wire.UserResponse
	Err   error
}

type OwnershipLoaded struct {
	Owner bool
	Err   error
}

type RemoveParticipant struct{ User ident.UserUUID }

type ParticipantRemoved struct{ Err error }

// BucketPathInvalid 表示地址里没有合法的桶 uuid。
type BucketPathInvalid struct{ Path string }

func (LoadBucket) bucketMsg()         {}
func (ParticipantsLoaded) bucketMsg() {}
func (OwnershipLoaded) bucketMsg()    {}
func (RemoveParticipant) bucketMsg()  {}
func (ParticipantRemoved) bucketMsg() {}
func (BucketPathInvalid) bucketMsg()  {}

// BucketParticipantsUpdate 是参与者面板的状态迁移。
// 查询桶主失败按“不是桶主”处理；移除成员无论成败都会重新拉取列表。
func BucketParticipantsUpdate(client api.Client) loop.Update[BucketParticipantsModel, BucketMsg] {
	fetchUsers := func(bucket ident.BucketUUID) loop.Effect[BucketMsg] {
		return func(ctx context.Context) *BucketMsg {
			users, err := client.BucketParticipants(ctx, bucket)
			return loop.Emit[BucketMsg](ParticipantsLoaded{Users: users, Err: err})
		}
	}

	return func(m BucketParticipantsModel, msg BucketMsg) (BucketParticipantsModel, []loop.Effect[BucketMsg]) {
		switch msg := msg.(type) {
		case LoadBucket:
			bucket := msg.Bucket
			m.Bucket = bucket
			m.Users = loadable.Loading[[]wire.UserResponse](loadable.NewHandle())
			m.IsOwner = loadable.Loading[bool](loadable.NewHandle())
			return m, []loop.Effect[BucketMsg]{
				fetchUsers(bucket),
				func(ctx context.Context) *BucketMsg {
					owner, err := client.IsBucketOwner(ctx, bucket)
					return loop.Emit[BucketMsg](OwnershipLoaded{Owner: owner, Err: err})
				},
			}

		case ParticipantsLoaded:
			m.Users = loadable.FromResult(msg.Users, msg.Err)

		case OwnershipLoaded:
			m.IsOwner = loadable.Loaded(msg.Err == nil && msg.Owner)

		case RemoveParticipant:
			bucket, target := m.Bucket, msg.User
			m.RemoveUser = loadable.Uploading[struct{}](loadable.NewHandle())
			return m, []loop.Effect[BucketMsg]{func(ctx context.Context) *BucketMsg {
				err := client.RemoveBucketUser(ctx, bucket, target)
				return loop.Emit[BucketMsg](ParticipantRemoved{Err: err})
			}}

		case ParticipantRemoved:
			m.RemoveUser = loadable.UploadResult(struct{}{}, msg.Err)
			m.Users = loadable.Loading[[]wire.UserResponse](loadable.NewHandle())
			return m, []loop.Effect[BucketMsg]{fetchUsers(m.Bucket)}

		case BucketPathInvalid:
			m.Bucket = ident.BucketUUID{}
			m.Users = loadable.FailedWith[[]wire.UserResponse]("invalid bucket")
			m.IsOwner = loadable.Loaded(false)
		}
		return m, nil
	}
}

// BucketParticipants 展示桶的参与者，桶主可以移除成员。路由为 /buckets/<uuid>。
type BucketParticipants struct {
	app.Compo

	Client api.Client

	model  BucketParticipantsModel
	runner *runner[BucketParticipantsModel, BucketMsg]
}

func (c *BucketParticipants) OnMount(ctx app.Context) {
	c.runner = startLoop(ctx, c.model, BucketParticipantsUpdate(c.Client), func(m BucketParticipantsModel) { c.model = m })
}

// OnNav 在首次进入和之后每次导航时触发，是唯一的加载入口。
func (c *BucketParticipants) OnNav(ctx app.Context) {
	path := ctx.Page().URL().Path
	id, ok := BucketFromPath(path)
	if !ok {
		c.runner.send(BucketPathInvalid{Path: path})
		return
	}
	c.runner.send(LoadBucket{Bucket: id})
}

func (c *BucketParticipants) OnDismount() {
	c.runner.stop()
}

func (c *BucketParticipants) Render() app.UI {
	return BucketParticipantsView(c.model, func(id ident.UserUUID) app.EventHandler {
		return func(app.Context, app.Event) { c.runner.send(RemoveParticipant{User: id}) }
	})
}

// BucketFromPath 解析 /buckets/<uuid>。
func BucketFromPath(path string) (ident.BucketUUID, bool) {
	rest, ok := strings.CutPrefix(path, "/buckets/")
	if !ok {
		return ident.BucketUUID{}, false
	}
	id, err := ident.Parse[ident.BucketUUID](strings.Trim(rest, "/"))
	return id, err == nil
}

// BucketParticipantsView 只有确认是桶主时才渲染移除按钮。
func BucketParticipantsView(m BucketParticipantsModel, remove func(ident.UserUUID) app.EventHandler) app.UI {
	owner, _ := m.IsOwner.Value()

	list := m.Users.DefaultView(func(users []wire.UserResponse) app.UI {
		if len(users) == 0 {
			return app.P().Class("empty").Text("No participants.")
		}
		rows := make([]app.UI, 0, len(users))
		for _, u := range users {
			row := []app.UI{app.Span().Class("participant-name").Text(u.DisplayName)}
			if owner {
				btn := app.Button().Class("participant-remove").Text("Remove").Disabled(m.RemoveUser.IsLoading())
				if remove != nil {
					btn = btn.OnClick(remove(u.UUID))
				}
				row = append(row, btn)
			}
			rows = append(rows, app.Li().Body(row...))
		}
		return app.Ul().Class("participants").Body(rows...)
	}, nil)

	return app.Section().Class("bucket-participants").Body(
		app.H3().Text("Participants"),
		list,
		m.RemoveUser.SmallView(func(struct{}) app.UI { return app.Text("") }, nil),
	)
}

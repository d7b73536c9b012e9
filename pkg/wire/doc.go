// Package wire 定义前后端共享的请求/响应结构。
//
// 约定：
//   - NewXRequest 只包含创建所需字段；
//   - UpdateXRequest 使用指针字段，nil 表示保持原值；
//   - XResponse / MinimalXResponse / FullXResponse 是不同粒度的投影；
//   - 所有字段以 snake_case JSON 传输。
package wire

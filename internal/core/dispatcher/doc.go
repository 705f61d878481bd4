// Package dispatcher 处理链路上收到的消息
//
// 入站处理流程：
//
//	负载 → 解码头部 → 记录上一跳 → 路由判定
//	  FORWARD     → Router.Forward
//	  DROP        → 对请求回复错误应答
//	  DROP_SILENT → 只记录日志
//	  HANDLE      → 解码内容；应答交给 Router.HandleAnswer，
//	                请求交给按内容类型注册的处理器，在有界的工作池中运行
//
// 处理器返回的内容沿逆途经路由作为应答发回。
package dispatcher

// Package mocks 提供统一的测试 Mock 实现
//
// # 核心 Mock
//
//   - MockConnection: 模拟 interfaces.Connection，可注入写入结果并记录写入的消息
//   - MockRoutingTable: 模拟 interfaces.RoutingTable 与 interfaces.ResponsibilityChecker
//   - MockVerifier: 模拟 interfaces.SignatureVerifier
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 关键 Mock 记录调用历史，便于验证测试行为
//
// # 使用示例
//
//	conn := mocks.NewMockConnection("neighbor-1")
//	conn.WriteErr = errors.New("link down")
//
//	table := mocks.NewMockRoutingTable(conn)
//	r, _ := router.New(router.DefaultConfig(), "local", table, router.WithClock(clock.NewMock()))
//	fut := r.SendMessage(msg)
//	<-fut.Done()
//	if len(conn.Written()) != 1 { ... }
package mocks

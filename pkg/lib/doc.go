// Package lib 包含与架构组件无关的线路格式库
//
//   - codec: 定长、长度前缀字段的读写原语
//   - header: 转发头部编解码
//   - frame: 链路层 DATA/ACK 帧编解码
//   - message: 内容与安全块，消息编解码
//
// # 与 pkg/ 其他目录的关系
//
//   - interfaces/: 组件公共接口
//   - types/: 公共类型定义（节点标识、资源标识）
//   - lib/: 编解码库（本目录）
//
// # 使用示例
//
//	import (
//	    "github.com/dep2p/go-reload/pkg/lib/header"
//	    "github.com/dep2p/go-reload/pkg/lib/message"
//	)
package lib

package routetable

import "errors"

var (
	// ErrNilConnection 连接为空
	ErrNilConnection = errors.New("routetable: nil connection")

	// ErrSelfNeighbor 不能把本节点加入邻居表
	ErrSelfNeighbor = errors.New("routetable: cannot add local node as neighbor")

	// ErrEmptyAlias 别名为空
	ErrEmptyAlias = errors.New("routetable: empty alias")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("routetable: invalid config")
)

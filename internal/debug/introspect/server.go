package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-reload/internal/core/link"
	"github.com/dep2p/go-reload/internal/util/logger"
	"github.com/dep2p/go-reload/pkg/types"
)

var log = logger.Logger("introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = "127.0.0.1:9184"

// ============================================================================
//                              配置
// ============================================================================

// NodeSource 提供节点与链路状态，*host.Host 实现该接口
type NodeSource interface {
	Local() types.NodeID
	ListenAddrs() []string
	Links() []*link.Link
}

// PendingCounter 返回等待应答的请求数，*router.PendingRequestCache 实现该接口
type PendingCounter interface {
	Len() int
}

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:9184"
	Addr string

	// EnablePprof 是否挂载 /debug/pprof
	EnablePprof bool

	// Node 可选的节点状态来源
	Node NodeSource

	// Pending 可选的待应答请求计数
	Pending PendingCounter

	// Gatherer 指标来源，为空时不挂载 /metrics
	Gatherer prometheus.Gatherer
}

// ============================================================================
//                              Server
// ============================================================================

// Server 本地诊断 HTTP 服务
type Server struct {
	config Config

	server   *http.Server
	listener net.Listener

	running   bool
	startTime time.Time

	mu sync.Mutex
}

// New 创建诊断服务
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{config: cfg}
}

// Handler 返回服务的路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/introspect", s.handleIntrospect)
	mux.HandleFunc("/debug/introspect/links", s.handleLinks)
	mux.HandleFunc("/debug/introspect/runtime", s.handleRuntime)
	mux.HandleFunc("/health", s.handleHealth)

	if s.config.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	if s.config.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return mux
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("诊断服务异常退出", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	log.Info("诊断服务已启动", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.Error("关闭诊断服务失败", "error", err)
		return err
	}

	s.running = false
	log.Info("诊断服务已停止")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// ============================================================================
//                              响应结构
// ============================================================================

// IntrospectResponse 完整诊断响应
type IntrospectResponse struct {
	Timestamp       time.Time    `json:"timestamp"`
	Uptime          string       `json:"uptime"`
	Node            *NodeInfo    `json:"node,omitempty"`
	Links           []LinkInfo   `json:"links"`
	PendingRequests int          `json:"pending_requests"`
	Runtime         *RuntimeInfo `json:"runtime,omitempty"`
}

// NodeInfo 节点信息
type NodeInfo struct {
	ID          string   `json:"id"`
	ListenAddrs []string `json:"listen_addrs"`
}

// LinkInfo 链路统计
type LinkInfo struct {
	Neighbor       string `json:"neighbor"`
	FramesSent     uint64 `json:"frames_sent"`
	FramesReceived uint64 `json:"frames_received"`
	AcksSent       uint64 `json:"acks_sent"`
	AcksReceived   uint64 `json:"acks_received"`
	AcksDropped    uint64 `json:"acks_dropped"`
	BytesSent      uint64 `json:"bytes_sent"`
	BytesReceived  uint64 `json:"bytes_received"`
	InFlight       int    `json:"in_flight"`
}

// RuntimeInfo 运行时信息
type RuntimeInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc"`
	MemSys       uint64 `json:"mem_sys"`
	NumGC        uint32 `json:"num_gc"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
	Neighbors int       `json:"neighbors"`
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := IntrospectResponse{
		Timestamp: time.Now(),
		Uptime:    s.uptime(),
		Node:      s.collectNodeInfo(),
		Links:     s.collectLinks(),
		Runtime:   collectRuntimeInfo(),
	}
	if s.config.Pending != nil {
		response.PendingRequests = s.config.Pending.Len()
	}
	s.writeJSON(w, response)
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.config.Node == nil {
		http.Error(w, "Link info not available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, s.collectLinks())
}

func (s *Server) handleRuntime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, collectRuntimeInfo())
}

// handleHealth 没有节点状态来源时报告 degraded
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    s.uptime(),
	}
	if s.config.Node == nil {
		health.Status = "degraded"
	} else {
		health.Neighbors = len(s.config.Node.Links())
	}
	s.writeJSON(w, health)
}

// ============================================================================
//                              数据收集
// ============================================================================

func (s *Server) collectNodeInfo() *NodeInfo {
	if s.config.Node == nil {
		return nil
	}
	return &NodeInfo{
		ID:          s.config.Node.Local().String(),
		ListenAddrs: s.config.Node.ListenAddrs(),
	}
}

func (s *Server) collectLinks() []LinkInfo {
	out := make([]LinkInfo, 0)
	if s.config.Node == nil {
		return out
	}
	for _, l := range s.config.Node.Links() {
		st := l.Stats()
		out = append(out, LinkInfo{
			Neighbor:       l.NodeID().String(),
			FramesSent:     st.FramesSent,
			FramesReceived: st.FramesReceived,
			AcksSent:       st.AcksSent,
			AcksReceived:   st.AcksReceived,
			AcksDropped:    st.AcksDropped,
			BytesSent:      st.BytesSent,
			BytesReceived:  st.BytesReceived,
			InFlight:       st.InFlight,
		})
	}
	return out
}

func collectRuntimeInfo() *RuntimeInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &RuntimeInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

// ============================================================================
//                              辅助方法
// ============================================================================

func (s *Server) uptime() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return "0s"
	}
	return time.Since(s.startTime).Round(time.Millisecond).String()
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		log.Error("JSON 编码失败", "error", err)
	}
}

// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供 visiondesc HTTP/HTTPS 服务的生命周期管理，支持非阻塞启动、
优雅关闭与基于 context 的停机。

# 核心类型

  - Manager：HTTP 服务器管理器，持有 http.Server、net.Listener
    与异步错误通道，提供 Start/StartTLS/Run/Shutdown 等生命周期方法。
  - Config：监听地址、读写超时、空闲超时、最大请求头大小与优雅关闭超时，
    可由 config.ServerConfig 通过 FromServerConfig 构造。

# 主要能力

  - 非阻塞启动：Start/StartTLS 在后台 goroutine 中运行服务。
  - 优雅关闭：Shutdown 在配置的超时内排空进行中的批量描述请求。
  - 停机驱动：Run 在 ctx 取消或服务异常时关闭；WaitForShutdown
    监听 SIGINT/SIGTERM。
  - TLS：证书通过 tlsutil.ServerTLSConfig 加载，使用加固的密码套件。
*/
package server

// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 multimodal 负责图片获取，为视觉 Provider 提供统一的图片字节与媒体类型。

# 概述

图片标识可以是 http(s) URL、data: URL 或本地文件路径。Loader 根据标识
选择下载（resty）、解码或读盘，并按以下顺序确定媒体类型：

 1. 响应头 Content-Type（或 data: URL 声明的类型）
 2. URL / 文件扩展名
 3. 内容嗅探（mimetype）
 4. 默认 image/jpeg

所有媒体类型都会被规范化：小写、去掉参数、image/jpg 统一为 image/jpeg。

# 核心类型

  - Loader：图片加载器，持有加固 TLS 的 resty 客户端与大小上限。
  - Image：已加载的图片，提供 Base64 与 DataURL 编码。
  - ImageFormat：Anthropic 接受的四种图片格式。

# 错误语义

  - IMAGE_LOAD_FAILED：URL 返回非 200 或本地文件读取失败。
  - UNSUPPORTED_MEDIA：图片超过 MaxImageSize（默认 20MB）。
  - INVALID_REQUEST：标识为空或 data: URL 格式错误。
*/
package multimodal

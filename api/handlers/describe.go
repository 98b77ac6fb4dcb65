package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/api"
	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/batch"
	llmfactory "github.com/BaSui01/visiondesc/llm/factory"
	"github.com/BaSui01/visiondesc/llm/multimodal"
	"github.com/BaSui01/visiondesc/types"
)

// =============================================================================
// 🖼️ 图片描述 Handler
// =============================================================================

// DescribeHandler 图片描述接口处理器
type DescribeHandler struct {
	registry     *llm.Registry
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewDescribeHandler 创建描述处理器
func NewDescribeHandler(registry *llm.Registry, maxBodyBytes int64, logger *zap.Logger) *DescribeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DescribeHandler{
		registry:     registry,
		logger:       logger.With(zap.String("handler", "describe")),
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleDescribe 处理单张图片描述请求
// @Summary 图片描述
// @Description 生成单张图片的文字描述
// @Tags 描述
// @Accept json
// @Produce json
// @Param request body api.DescribeRequest true "描述请求"
// @Success 200 {object} api.DescribeResponse "描述结果"
// @Failure 400 {object} Response "无效请求"
// @Failure 502 {object} Response "上游错误"
// @Router /v1/describe [post]
func (h *DescribeHandler) HandleDescribe(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.DescribeRequest
	if err := DecodeJSONBody(w, r, &req, h.maxBodyBytes, h.logger); err != nil {
		return
	}

	if err := validateOptions(req.DescribeOptions); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	if strings.TrimSpace(req.Identifier) == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "identifier is required"), h.logger)
		return
	}
	if err := validateIdentifier("identifier", req.Identifier); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	svc, err := h.registry.Resolve(llmfactory.NormalizeName(req.Provider))
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	start := time.Now()
	description, err := svc.GetDescription(r.Context(), req.Identifier, req.LLMOptions())
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("describe completed",
		zap.String("provider", svc.Provider().Name()),
		zap.String("request_id", requestIDFrom(r)),
		zap.Duration("duration", time.Since(start)),
	)

	WriteSuccess(w, r, api.DescribeResponse{
		Identifier:  req.Identifier,
		Description: description,
		Provider:    svc.Provider().Name(),
	})
}

// HandleBatch 处理批量描述请求
// @Summary 批量图片描述
// @Description 以有界并发描述多张图片，单张失败不影响整批
// @Tags 描述
// @Accept json
// @Produce json
// @Param request body api.BatchDescribeRequest true "批量描述请求"
// @Success 200 {object} api.BatchDescribeResponse "批量结果"
// @Failure 400 {object} Response "无效请求或批次过大"
// @Router /v1/describe/batch [post]
func (h *DescribeHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.BatchDescribeRequest
	if err := DecodeJSONBody(w, r, &req, h.maxBodyBytes, h.logger); err != nil {
		return
	}

	if err := validateOptions(req.DescribeOptions); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	if req.Concurrency < 0 {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "concurrency must not be negative"), h.logger)
		return
	}
	for i, id := range req.Identifiers {
		if err := validateIdentifier(fmt.Sprintf("identifiers[%d]", i), id); err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
	}

	svc, err := h.registry.Resolve(llmfactory.NormalizeName(req.Provider))
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	batchID := uuid.NewString()
	ctx := types.WithBatchID(r.Context(), batchID)

	results, err := svc.GetDescriptionBatch(ctx, req.Identifiers, req.LLMOptions())
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	WriteSuccess(w, r, api.BatchDescribeResponse{
		BatchID:  batchID,
		Provider: svc.Provider().Name(),
		Results:  results,
		Summary:  batch.Summarize(results),
	})
}

// HandleProviders 列出已配置的服务商
// @Summary 服务商列表
// @Tags 描述
// @Produce json
// @Success 200 {object} api.ProvidersResponse "服务商列表"
// @Router /v1/providers [get]
func (h *DescribeHandler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	resp := api.ProvidersResponse{Providers: h.registry.List()}
	if svc, err := h.registry.Default(); err == nil {
		resp.Default = svc.Provider().Name()
	}
	WriteSuccess(w, r, resp)
}

// validateOptions 校验可选参数
func validateOptions(o api.DescribeOptions) *types.Error {
	if o.MaxTokens < 0 {
		return types.NewError(types.ErrInvalidRequest, "max_tokens must not be negative")
	}
	return nil
}

// validateIdentifier 只接受 http(s) URL 与 data URL，服务端本地路径一律拒绝
func validateIdentifier(field, id string) *types.Error {
	if multimodal.IsRemote(id) || multimodal.IsDataURL(id) {
		return nil
	}
	return types.NewError(types.ErrInvalidRequest, field+" must be an http(s) URL or a data URL")
}

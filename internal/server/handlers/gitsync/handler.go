package gitsync

import (
	"errors"
	"fmt"

	"github.com/gitsyncd/gitsyncd/internal/gitsync"
	"github.com/gitsyncd/gitsyncd/internal/server/validation"
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Handler struct {
	syncSvc *gitsync.Service

	validator *validator.Validate
	logger    *zap.Logger
}

func NewHandler(syncSvc *gitsync.Service, validator *validator.Validate, logger *zap.Logger) handler.Handler {
	return &Handler{
		syncSvc: syncSvc,

		validator: validator,
		logger:    logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	r = r.Group("/git")

	r.Use(h.errorsHandler)
	r.Get("/installed", h.getInstalled)
	r.Get("/is-repo", validation.DecorateWithQueryEx(h.validator, h.getIsRepo))
	r.Post("/init", validation.DecorateWithBodyEx(h.validator, h.postInit))
	r.Get("/status", validation.DecorateWithQueryEx(h.validator, h.getStatus))
	r.Post("/stage-all", validation.DecorateWithBodyEx(h.validator, h.postStageAll))
	r.Post("/stage-file", validation.DecorateWithBodyEx(h.validator, h.postStageFile))
	r.Post("/unstage-file", validation.DecorateWithBodyEx(h.validator, h.postUnstageFile))
	r.Post("/commit", validation.DecorateWithBodyEx(h.validator, h.postCommit))
	r.Post("/push", validation.DecorateWithBodyEx(h.validator, h.postPush))
	r.Post("/pull", validation.DecorateWithBodyEx(h.validator, h.postPull))
	r.Post("/commit-and-push", validation.DecorateWithBodyEx(h.validator, h.postCommitAndPush))
	r.Post("/set-remote", validation.DecorateWithBodyEx(h.validator, h.postSetRemote))
	r.Get("/remote", validation.DecorateWithQueryEx(h.validator, h.getRemote))
	r.Get("/history", validation.DecorateWithQueryEx(h.validator, h.getHistory))
	r.Get("/config", validation.DecorateWithQueryEx(h.validator, h.getConfig))
	r.Patch("/config", validation.DecorateWithBodyEx(h.validator, h.patchConfig))
}

func (h *Handler) getInstalled(c *fiber.Ctx) error {
	return c.JSON(InstalledResponse{SuccessResponse: ok, Installed: h.syncSvc.CheckInstalled(c.Context())})
}

func (h *Handler) getIsRepo(c *fiber.Ctx, req *PathQuery) error {
	isRepo, err := h.syncSvc.IsRepository(c.Context(), req.Path)
	if err != nil {
		return fmt.Errorf("failed to check repository: %w", err)
	}

	return c.JSON(IsRepoResponse{SuccessResponse: ok, IsRepo: isRepo})
}

func (h *Handler) postInit(c *fiber.Ctx, req *InitRequest) error {
	if err := h.syncSvc.Initialize(c.Context(), req.Path, req.RemoteURL); err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}

	return c.JSON(ok)
}

func (h *Handler) getStatus(c *fiber.Ctx, req *PathQuery) error {
	snapshot, err := h.syncSvc.FetchStatus(c.Context(), req.Path)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	return c.JSON(StatusResponse{SuccessResponse: ok, Status: newStatusDTO(snapshot)})
}

func (h *Handler) postStageAll(c *fiber.Ctx, req *PathRequest) error {
	if err := h.syncSvc.StageAll(c.Context(), req.Path); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	return c.JSON(ok)
}

func (h *Handler) postStageFile(c *fiber.Ctx, req *FileRequest) error {
	if err := h.syncSvc.StageFile(c.Context(), req.Path, req.File); err != nil {
		return fmt.Errorf("failed to stage file: %w", err)
	}

	return c.JSON(ok)
}

func (h *Handler) postUnstageFile(c *fiber.Ctx, req *FileRequest) error {
	if err := h.syncSvc.UnstageFile(c.Context(), req.Path, req.File); err != nil {
		return fmt.Errorf("failed to unstage file: %w", err)
	}

	return c.JSON(ok)
}

func (h *Handler) postCommit(c *fiber.Ctx, req *CommitRequest) error {
	res, err := h.syncSvc.Commit(c.Context(), req.Path, req.Message)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return c.JSON(CommitResponse{SuccessResponse: ok, CommitDTO: newCommitDTO(res)})
}

func (h *Handler) postPush(c *fiber.Ctx, req *SyncRequest) error {
	res, err := h.syncSvc.Push(c.Context(), req.Path, req.Remote, req.Branch)
	if err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}

	return c.JSON(PushResponse{SuccessResponse: ok, PushDTO: newPushDTO(res)})
}

func (h *Handler) postPull(c *fiber.Ctx, req *SyncRequest) error {
	res, err := h.syncSvc.Pull(c.Context(), req.Path, req.Remote, req.Branch)
	if err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}

	return c.JSON(PullResponse{
		SuccessResponse: ok,
		Summary:         newSummaryDTO(res.Summary),
		Files:           lo.Ternary(res.Files == nil, []string{}, res.Files),
		Insertions:      res.Summary.Insertions,
		Deletions:       res.Summary.Deletions,
	})
}

func (h *Handler) postCommitAndPush(c *fiber.Ctx, req *CommitAndPushRequest) error {
	res, err := h.syncSvc.CommitAndPush(c.Context(), req.Path, req.Message, req.Remote, req.Branch)
	if err != nil {
		return fmt.Errorf("failed to commit and push: %w", err)
	}

	response := CommitAndPushResponse{
		SuccessResponse: ok,
		CommitSkipped:   res.CommitSkipped,
		Push:            newPushDTO(res.Push),
	}
	if res.Commit != nil {
		commit := newCommitDTO(*res.Commit)
		response.Commit = &commit
	}

	return c.JSON(response)
}

func (h *Handler) postSetRemote(c *fiber.Ctx, req *SetRemoteRequest) error {
	if err := h.syncSvc.SetRemote(c.Context(), req.Path, req.Name, req.URL); err != nil {
		return fmt.Errorf("failed to set remote: %w", err)
	}

	return c.JSON(ok)
}

func (h *Handler) getRemote(c *fiber.Ctx, req *RemoteQuery) error {
	url, found, err := h.syncSvc.GetRemote(c.Context(), req.Path, req.Name)
	if err != nil {
		return fmt.Errorf("failed to get remote: %w", err)
	}

	response := RemoteResponse{SuccessResponse: ok}
	if found {
		response.URL = &url
	}

	return c.JSON(response)
}

func (h *Handler) getHistory(c *fiber.Ctx, req *HistoryQuery) error {
	entries, err := h.syncSvc.History(c.Context(), req.Path, req.Limit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	return c.JSON(HistoryResponse{SuccessResponse: ok, History: lo.Map(entries, newLogEntryDTO)})
}

func (h *Handler) getConfig(c *fiber.Ctx, req *PathQuery) error {
	cfg, err := h.syncSvc.Config(c.Context(), req.Path)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	return c.JSON(ConfigResponse{SuccessResponse: ok, Config: newConfigDTO(cfg)})
}

func (h *Handler) patchConfig(c *fiber.Ctx, req *ConfigPatchRequest) error {
	cfg, err := h.syncSvc.Configure(c.Context(), req.Path, gitsync.ConfigUpdate{
		Enabled:   req.Enabled,
		AutoStage: req.AutoStage,
	})
	if err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}

	return c.JSON(ConfigResponse{SuccessResponse: ok, Config: newConfigDTO(cfg)})
}

// errorsHandler renders every failure of the group as an ErrorResponse.
func (h *Handler) errorsHandler(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}

	response := ErrorResponse{Error: err.Error()}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		response.Error = fiberErr.Message
		response.Kind = string(gitsync.KindInternal)
		if fiberErr.Code == fiber.StatusBadRequest {
			response.Kind = string(gitsync.KindInvalidInput)
		}
		return c.Status(fiberErr.Code).JSON(response)
	}

	kind := gitsync.KindOf(err)
	response.Kind = string(kind)

	var secretsErr *gitsync.SecretsError
	if errors.As(err, &secretsErr) {
		response.Error = secretsErr.Error()
		response.Warnings = lo.Map(secretsErr.Warnings, newWarningDTO)
	}

	var partialErr *gitsync.PartialError
	if errors.As(err, &partialErr) {
		response.Error = partialErr.Error()
		if partialErr.Commit != nil {
			commit := newCommitDTO(*partialErr.Commit)
			response.Commit = &commit
		}
	}

	status := statusOf(kind)
	if status == fiber.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(status).JSON(response)
}

func statusOf(kind gitsync.Kind) int {
	switch kind {
	case gitsync.KindNotARepository:
		return fiber.StatusNotFound
	case gitsync.KindInvalidInput:
		return fiber.StatusBadRequest
	case gitsync.KindSecretsDetected:
		return fiber.StatusUnprocessableEntity
	case gitsync.KindCommandFailed:
		return fiber.StatusBadGateway
	case gitsync.KindNetwork:
		return fiber.StatusGatewayTimeout
	case gitsync.KindPartialSuccess:
		return fiber.StatusMultiStatus
	case gitsync.KindLockTimeout:
		return fiber.StatusConflict
	case gitsync.KindCancelled:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

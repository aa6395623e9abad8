package gitsync

import (
	"time"

	"github.com/gitsyncd/gitsyncd/internal/git"
	"github.com/gitsyncd/gitsyncd/internal/gitsync"
	"github.com/gitsyncd/gitsyncd/internal/repositories"
	"github.com/gitsyncd/gitsyncd/internal/secrets"
	"github.com/samber/lo"
)

// Requests

type PathRequest struct {
	Path string `json:"path" validate:"required"`
}

type InitRequest struct {
	Path      string `json:"path"                 validate:"required"`
	RemoteURL string `json:"remote_url,omitempty"`
}

type FileRequest struct {
	Path string `json:"path" validate:"required"`
	File string `json:"file" validate:"required"`
}

type CommitRequest struct {
	Path    string `json:"path"    validate:"required"`
	Message string `json:"message" validate:"required"`
}

type SyncRequest struct {
	Path   string `json:"path"             validate:"required"`
	Remote string `json:"remote,omitempty" validate:"omitempty,max=255"`
	Branch string `json:"branch,omitempty" validate:"omitempty,max=255"`
}

type CommitAndPushRequest struct {
	Path    string `json:"path"             validate:"required"`
	Message string `json:"message"          validate:"required"`
	Remote  string `json:"remote,omitempty" validate:"omitempty,max=255"`
	Branch  string `json:"branch,omitempty" validate:"omitempty,max=255"`
}

type SetRemoteRequest struct {
	Path string `json:"path" validate:"required"`
	Name string `json:"name" validate:"required,max=255"`
	URL  string `json:"url"  validate:"required"`
}

type ConfigPatchRequest struct {
	Path      string `json:"path"                 validate:"required"`
	Enabled   *bool  `json:"enabled,omitempty"`
	AutoStage *bool  `json:"auto_stage,omitempty"`
}

type PathQuery struct {
	Path string `query:"path" validate:"required"`
}

type RemoteQuery struct {
	Path string `query:"path" validate:"required"`
	Name string `query:"name" validate:"omitempty,max=255"`
}

type HistoryQuery struct {
	Path  string `query:"path"  validate:"required"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// Responses

type SuccessResponse struct {
	Success bool `json:"success"`
}

type InstalledResponse struct {
	SuccessResponse
	Installed bool `json:"installed"`
}

type IsRepoResponse struct {
	SuccessResponse
	IsRepo bool `json:"is_repo"`
}

type RenameDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type StatusDTO struct {
	Branch         string      `json:"branch"`
	Staged         []string    `json:"staged"`
	Modified       []string    `json:"modified"`
	Created        []string    `json:"created"`
	Deleted        []string    `json:"deleted"`
	Renamed        []RenameDTO `json:"renamed"`
	Conflicted     []string    `json:"conflicted"`
	Ahead          int         `json:"ahead"`
	Behind         int         `json:"behind"`
	Clean          bool        `json:"clean"`
	Remote         *string     `json:"remote"`
	PendingChanges int         `json:"pending_changes"`
}

type StatusResponse struct {
	SuccessResponse
	Status StatusDTO `json:"status"`
}

type SummaryDTO struct {
	Changes    int `json:"changes"`
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
}

type CommitDTO struct {
	Commit  string     `json:"commit"`
	Branch  string     `json:"branch"`
	Summary SummaryDTO `json:"summary"`
}

type CommitResponse struct {
	SuccessResponse
	CommitDTO
}

type PushedRefDTO struct {
	Local   string `json:"local"`
	Remote  string `json:"remote"`
	Flag    string `json:"flag"`
	Summary string `json:"summary"`
}

type PushDTO struct {
	Pushed         []PushedRefDTO `json:"pushed"`
	RemoteMessages []string       `json:"remote_messages"`
}

type PushResponse struct {
	SuccessResponse
	PushDTO
}

type PullResponse struct {
	SuccessResponse
	Summary    SummaryDTO `json:"summary"`
	Files      []string   `json:"files"`
	Insertions int        `json:"insertions"`
	Deletions  int        `json:"deletions"`
}

type CommitAndPushResponse struct {
	SuccessResponse
	Commit        *CommitDTO `json:"commit"`
	CommitSkipped bool       `json:"commit_skipped"`
	Push          PushDTO    `json:"push"`
}

type RemoteResponse struct {
	SuccessResponse
	URL *string `json:"url"`
}

type LogEntryDTO struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Email   string    `json:"email"`
	Date    time.Time `json:"date"`
}

type HistoryResponse struct {
	SuccessResponse
	History []LogEntryDTO `json:"history"`
}

type ConfigDTO struct {
	Path        string     `json:"path"`
	Enabled     bool       `json:"enabled"`
	Initialized bool       `json:"initialized"`
	AutoStage   bool       `json:"auto_stage"`
	Remote      *string    `json:"remote"`
	LastSync    *time.Time `json:"last_sync"`
}

type ConfigResponse struct {
	SuccessResponse
	Config ConfigDTO `json:"config"`
}

type WarningDTO struct {
	File  string `json:"file"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

type ErrorResponse struct {
	SuccessResponse
	Error    string       `json:"error"`
	Kind     string       `json:"kind"`
	Warnings []WarningDTO `json:"warnings,omitempty"`
	Commit   *CommitDTO   `json:"commit,omitempty"`
}

var ok = SuccessResponse{Success: true}

func newStatusDTO(s gitsync.StatusSnapshot) StatusDTO {
	return StatusDTO{
		Branch:     s.Branch,
		Staged:     s.Staged,
		Modified:   s.Modified,
		Created:    s.Created,
		Deleted:    s.Deleted,
		Renamed:    lo.Map(s.Renamed, func(r git.Rename, _ int) RenameDTO { return RenameDTO{From: r.From, To: r.To} }),
		Conflicted: s.Conflicted,
		Ahead:      s.Ahead,
		Behind:     s.Behind,
		Clean:      s.Clean,
		Remote:     s.Remote,

		PendingChanges: s.PendingChanges(),
	}
}

func newSummaryDTO(s git.ChangeSummary) SummaryDTO {
	return SummaryDTO{Changes: s.Changes, Insertions: s.Insertions, Deletions: s.Deletions}
}

func newCommitDTO(c git.CommitResult) CommitDTO {
	return CommitDTO{Commit: c.Hash, Branch: c.Branch, Summary: newSummaryDTO(c.Summary)}
}

func newPushDTO(p git.PushResult) PushDTO {
	return PushDTO{
		Pushed: lo.Map(p.Pushed, func(r git.PushedRef, _ int) PushedRefDTO {
			return PushedRefDTO{Local: r.Local, Remote: r.Remote, Flag: r.Flag, Summary: r.Summary}
		}),
		RemoteMessages: lo.Ternary(p.RemoteMessages == nil, []string{}, p.RemoteMessages),
	}
}

func newLogEntryDTO(e git.LogEntry, _ int) LogEntryDTO {
	return LogEntryDTO{Hash: e.Hash, Message: e.Message, Author: e.Author, Email: e.Email, Date: e.Date}
}

func newConfigDTO(c *repositories.RepositoryConfig) ConfigDTO {
	return ConfigDTO{
		Path:        c.Path,
		Enabled:     c.Enabled,
		Initialized: c.Initialized,
		AutoStage:   c.AutoStage,
		Remote:      c.Remote,
		LastSync:    c.LastSync,
	}
}

func newWarningDTO(w secrets.Warning, _ int) WarningDTO {
	return WarningDTO{File: w.File, Kind: string(w.Kind), Label: w.Kind.Label()}
}
